// Package metrics provides in-memory operational metrics for the
// orchestration engine. This file contains atom-level type definitions with
// no behavior.
package metrics

import "time"

// TaskRecord represents a single settled generation task.
type TaskRecord struct {
	// ID is the generation task id
	ID string `json:"id"`

	// Kind identifies the output kind: "image" or "video"
	Kind string `json:"kind"`

	// BatchKey groups tasks issued together
	BatchKey string `json:"batch_key"`

	// Status is the terminal state: "success", "error", "canceled"
	Status string `json:"status"`

	// ErrorKind is the classified failure for error records
	ErrorKind string `json:"error_kind,omitempty"`

	// StartTime is when the task was accepted
	StartTime time.Time `json:"start_time"`

	// EndTime is when the task settled
	EndTime time.Time `json:"end_time,omitempty"`

	// Duration is the total time from acceptance to settlement
	Duration time.Duration `json:"duration"`
}

// QuotaMetrics aggregates reservation activity since startup.
type QuotaMetrics struct {
	// Reserved is the total number of units successfully reserved
	Reserved int64 `json:"reserved"`

	// Refunded is the total number of units given back
	Refunded int64 `json:"refunded"`

	// Exceeded is the count of reservations rejected over the limit
	Exceeded int64 `json:"exceeded"`
}

// TaskMetrics represents aggregated settlement statistics.
type TaskMetrics struct {
	// TotalSettled is the total number of settled tasks
	TotalSettled int64 `json:"total_settled"`

	// TotalSuccess is the count of tasks settled cleanly
	TotalSuccess int64 `json:"total_success"`

	// TotalErrors is the count of tasks settled with an error overlay
	TotalErrors int64 `json:"total_errors"`

	// ActiveTasks is the current in-flight gauge
	ActiveTasks int64 `json:"active_tasks"`

	// BatchesCompleted counts batch-complete signals
	BatchesCompleted int64 `json:"batches_completed"`

	// ByKind contains per-kind statistics
	ByKind map[string]*TaskKindMetrics `json:"by_kind"`
}

// TaskKindMetrics represents statistics for one output kind.
type TaskKindMetrics struct {
	// Count is the total number of settled tasks of this kind
	Count int64 `json:"count"`

	// SuccessRate is the percentage of clean settlements (0-100)
	SuccessRate float64 `json:"success_rate"`

	// AvgDuration is the average time from acceptance to settlement
	AvgDuration time.Duration `json:"avg_duration"`
}

// SystemStatus represents overall engine health.
type SystemStatus struct {
	// Health indicates the engine state: "running", "stopped"
	Health string `json:"health"`

	// Version is the application version string
	Version string `json:"version"`

	// Uptime is the duration since the engine started
	Uptime time.Duration `json:"uptime"`

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time `json:"last_check"`
}

// Status constants for TaskRecord
const (
	TaskStatusSuccess  = "success"
	TaskStatusError    = "error"
	TaskStatusCanceled = "canceled"
)

// Health constants for SystemStatus
const (
	SystemHealthRunning = "running"
	SystemHealthStopped = "stopped"
)

// Kind constants for TaskRecord
const (
	TaskKindImage = "image"
	TaskKindVideo = "video"
)
