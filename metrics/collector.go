// Package metrics provides the MetricsCollector interface for aggregating
// engine metrics. This is a molecule that composes the atom-level types from
// types.go.
package metrics

// MetricsCollector defines the interface for collecting engine metrics.
//
// Implementation strategy:
// - Methods must be concurrency-safe; the orchestrator feeds them from
//   multiple task goroutines
// - Zero values are returned for unavailable metrics
type MetricsCollector interface {
	// RecordTask logs a settled generation task.
	RecordTask(task TaskRecord)

	// GetTaskMetrics returns aggregated settlement statistics.
	GetTaskMetrics() TaskMetrics

	// GetRecentTasks returns the N most recent task records, newest last.
	GetRecentTasks(limit int) []TaskRecord

	// TaskStarted / TaskFinished move the in-flight gauge.
	TaskStarted()
	TaskFinished()

	// BatchCompleted counts one batch-complete signal.
	BatchCompleted()

	// RecordReservation / RecordRefund / RecordExceeded track quota traffic.
	RecordReservation(units int)
	RecordRefund(units int)
	RecordExceeded()

	// GetQuotaMetrics returns aggregated reservation activity.
	GetQuotaMetrics() QuotaMetrics

	// GetSystemStatus returns the overall engine health.
	GetSystemStatus() SystemStatus
}
