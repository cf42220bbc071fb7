package metrics

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordTaskAggregation(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.RecordTask(TaskRecord{ID: "a", Kind: TaskKindImage, Status: TaskStatusSuccess, Duration: 2 * time.Second})
	store.RecordTask(TaskRecord{ID: "b", Kind: TaskKindImage, Status: TaskStatusSuccess, Duration: 4 * time.Second})
	store.RecordTask(TaskRecord{ID: "c", Kind: TaskKindImage, Status: TaskStatusError, ErrorKind: "server", Duration: 1 * time.Second})
	store.RecordTask(TaskRecord{ID: "d", Kind: TaskKindVideo, Status: TaskStatusSuccess, Duration: 10 * time.Second})

	m := store.GetTaskMetrics()
	if m.TotalSettled != 4 || m.TotalSuccess != 3 || m.TotalErrors != 1 {
		t.Errorf("totals = %d/%d/%d, want 4/3/1", m.TotalSettled, m.TotalSuccess, m.TotalErrors)
	}

	images := m.ByKind[TaskKindImage]
	if images == nil {
		t.Fatal("no image kind stats")
	}
	if images.Count != 3 {
		t.Errorf("image count = %d, want 3", images.Count)
	}
	wantRate := float64(2) / 3 * 100
	if images.SuccessRate < wantRate-0.01 || images.SuccessRate > wantRate+0.01 {
		t.Errorf("image success rate = %.2f, want %.2f", images.SuccessRate, wantRate)
	}
	if got := images.AvgDuration; got != 7*time.Second/3 {
		t.Errorf("image avg duration = %v", got)
	}

	videos := m.ByKind[TaskKindVideo]
	if videos == nil || videos.Count != 1 || videos.SuccessRate != 100 {
		t.Errorf("video stats = %+v", videos)
	}
}

func TestRecentTasksCircularBuffer(t *testing.T) {
	store := NewMetricsStore(StoreConfig{TaskHistoryCapacity: 3}, time.Now())

	for i := 0; i < 5; i++ {
		store.RecordTask(TaskRecord{ID: fmt.Sprintf("task-%d", i), Kind: TaskKindImage, Status: TaskStatusSuccess})
	}

	recent := store.GetRecentTasks(10)
	if len(recent) != 3 {
		t.Fatalf("got %d records, want 3 (capacity)", len(recent))
	}
	// Oldest retained first, newest last.
	want := []string{"task-2", "task-3", "task-4"}
	for i, record := range recent {
		if record.ID != want[i] {
			t.Errorf("recent[%d] = %s, want %s", i, record.ID, want[i])
		}
	}

	if got := store.GetRecentTasks(0); len(got) != 0 {
		t.Errorf("limit 0 returned %d records", len(got))
	}
}

func TestActiveTaskGauge(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.TaskStarted()
	store.TaskStarted()
	store.TaskFinished()
	if got := store.GetTaskMetrics().ActiveTasks; got != 1 {
		t.Errorf("active = %d, want 1", got)
	}

	store.TaskFinished()
	store.TaskFinished() // extra finish must not go negative
	if got := store.GetTaskMetrics().ActiveTasks; got != 0 {
		t.Errorf("active = %d, want 0", got)
	}
}

func TestQuotaCounters(t *testing.T) {
	store := NewMetricsStore(DefaultStoreConfig(), time.Now())

	store.RecordReservation(4)
	store.RecordReservation(2)
	store.RecordRefund(1)
	store.RecordExceeded()

	q := store.GetQuotaMetrics()
	if q.Reserved != 6 || q.Refunded != 1 || q.Exceeded != 1 {
		t.Errorf("quota = %+v", q)
	}
}

func TestSystemStatus(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	store := NewMetricsStore(StoreConfig{TaskHistoryCapacity: 10, Version: "1.2.3"}, start)

	status := store.GetSystemStatus()
	if status.Health != SystemHealthRunning {
		t.Errorf("health = %q", status.Health)
	}
	if status.Version != "1.2.3" {
		t.Errorf("version = %q", status.Version)
	}
	if status.Uptime < time.Minute {
		t.Errorf("uptime = %v, want >= 1m", status.Uptime)
	}
}
