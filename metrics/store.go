// Package metrics provides the MetricsStore organism for in-memory metrics
// storage. This file contains the MetricsStore which implements the
// MetricsCollector interface.
package metrics

import (
	"sync"
	"time"
)

// MetricsStore is an in-memory storage organism for engine metrics.
//
// This is an organism-level component that composes:
// - a circular buffer for settled-task history
// - sync.RWMutex for thread-safety
// - metrics types (TaskRecord, TaskMetrics, QuotaMetrics)
//
// Usage:
//
//	store := NewMetricsStore(DefaultStoreConfig(), time.Now())
//	store.RecordTask(task)
//	metrics := store.GetTaskMetrics()
type MetricsStore struct {
	mu sync.RWMutex

	// Task tracking
	taskHistory []TaskRecord // Circular buffer of recent settlements
	taskCap     int          // Maximum tasks to retain
	taskHead    int          // Write index
	taskSize    int          // Current number of tasks

	// Task aggregation
	totalSettled int64
	totalSuccess int64
	totalErrors  int64
	activeTasks  int64
	batches      int64
	taskByKind   map[string]*taskKindStats

	// Quota aggregation
	quota QuotaMetrics

	// System metadata
	startTime time.Time
	version   string
}

// taskKindStats holds per-kind aggregation data
type taskKindStats struct {
	count         int64
	successCount  int64
	totalDuration time.Duration
}

// StoreConfig configures the MetricsStore behavior.
type StoreConfig struct {
	// TaskHistoryCapacity is the max number of settlements to retain
	TaskHistoryCapacity int
	// Version is the application version string
	Version string
}

// DefaultStoreConfig returns a default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		TaskHistoryCapacity: 100,
		Version:             "0.0.0",
	}
}

// NewMetricsStore creates a new MetricsStore with the specified
// configuration. The startTime is used to calculate uptime.
func NewMetricsStore(config StoreConfig, startTime time.Time) *MetricsStore {
	cap := config.TaskHistoryCapacity
	if cap < 1 {
		cap = 100
	}

	return &MetricsStore{
		taskHistory: make([]TaskRecord, cap),
		taskCap:     cap,
		taskByKind:  make(map[string]*taskKindStats),
		startTime:   startTime,
		version:     config.Version,
	}
}

// RecordTask logs a settled generation task.
func (s *MetricsStore) RecordTask(task TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add to circular buffer
	s.taskHistory[s.taskHead] = task
	s.taskHead = (s.taskHead + 1) % s.taskCap
	if s.taskSize < s.taskCap {
		s.taskSize++
	}

	s.totalSettled++
	switch task.Status {
	case TaskStatusSuccess:
		s.totalSuccess++
	case TaskStatusError:
		s.totalErrors++
	}

	stats, ok := s.taskByKind[task.Kind]
	if !ok {
		stats = &taskKindStats{}
		s.taskByKind[task.Kind] = stats
	}
	stats.count++
	if task.Status == TaskStatusSuccess {
		stats.successCount++
	}
	stats.totalDuration += task.Duration
}

// TaskStarted increments the in-flight gauge.
func (s *MetricsStore) TaskStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTasks++
}

// TaskFinished decrements the in-flight gauge, clamped at zero.
func (s *MetricsStore) TaskFinished() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeTasks > 0 {
		s.activeTasks--
	}
}

// BatchCompleted counts one batch-complete signal.
func (s *MetricsStore) BatchCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches++
}

// RecordReservation tracks successfully reserved units.
func (s *MetricsStore) RecordReservation(units int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota.Reserved += int64(units)
}

// RecordRefund tracks refunded units.
func (s *MetricsStore) RecordRefund(units int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota.Refunded += int64(units)
}

// RecordExceeded counts a reservation rejected over the limit.
func (s *MetricsStore) RecordExceeded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota.Exceeded++
}

// GetQuotaMetrics returns aggregated reservation activity.
func (s *MetricsStore) GetQuotaMetrics() QuotaMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota
}

// GetTaskMetrics returns aggregated settlement statistics.
func (s *MetricsStore) GetTaskMetrics() TaskMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metrics := TaskMetrics{
		TotalSettled:     s.totalSettled,
		TotalSuccess:     s.totalSuccess,
		TotalErrors:      s.totalErrors,
		ActiveTasks:      s.activeTasks,
		BatchesCompleted: s.batches,
		ByKind:           make(map[string]*TaskKindMetrics),
	}

	for kind, stats := range s.taskByKind {
		var successRate float64
		if stats.count > 0 {
			successRate = float64(stats.successCount) / float64(stats.count) * 100
		}
		var avgDuration time.Duration
		if stats.count > 0 {
			avgDuration = stats.totalDuration / time.Duration(stats.count)
		}
		metrics.ByKind[kind] = &TaskKindMetrics{
			Count:       stats.count,
			SuccessRate: successRate,
			AvgDuration: avgDuration,
		}
	}

	return metrics
}

// GetRecentTasks returns the N most recent task records.
// If limit exceeds available tasks, all available are returned.
func (s *MetricsStore) GetRecentTasks(limit int) []TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || s.taskSize == 0 {
		return []TaskRecord{}
	}
	if limit > s.taskSize {
		limit = s.taskSize
	}

	result := make([]TaskRecord, limit)
	for i := 0; i < limit; i++ {
		// Work backwards from head to get the most recent 'limit' items
		idx := (s.taskHead - limit + i + s.taskCap) % s.taskCap
		result[i] = s.taskHistory[idx]
	}
	return result
}

// GetSystemStatus returns the overall engine health.
func (s *MetricsStore) GetSystemStatus() SystemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SystemStatus{
		Health:    SystemHealthRunning,
		Version:   s.version,
		Uptime:    time.Since(s.startTime),
		LastCheck: time.Now(),
	}
}

// Verify MetricsStore implements MetricsCollector interface
var _ MetricsCollector = (*MetricsStore)(nil)
