package metrics

import (
	"strings"
	"sync"
	"time"

	"canvas_backend/generation"
)

// Recorder subscribes to orchestrator events and feeds them into a
// MetricsCollector. It owns its subscription channel and goroutine.
type Recorder struct {
	collector MetricsCollector
	notifier  *generation.Notifier
	events    chan generation.Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	done      chan struct{}

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewRecorder wires a collector to a notifier and starts consuming events.
func NewRecorder(collector MetricsCollector, notifier *generation.Notifier) *Recorder {
	r := &Recorder{
		collector: collector,
		notifier:  notifier,
		events:    make(chan generation.Event, 256),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
		starts:    make(map[string]time.Time),
	}
	notifier.Subscribe(r.events)
	go r.loop()
	return r
}

// Stop unsubscribes and waits for the consumer goroutine to exit.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() {
		r.notifier.Unsubscribe(r.events)
		close(r.stopChan)
	})
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.stopChan:
			return
		case event := <-r.events:
			r.handle(event)
		}
	}
}

func (r *Recorder) handle(event generation.Event) {
	switch event.Type {
	case generation.EventTaskStarted:
		r.mu.Lock()
		r.starts[event.TaskID] = time.Now()
		r.mu.Unlock()
		r.collector.TaskStarted()

	case generation.EventTaskSettled:
		r.mu.Lock()
		start := r.starts[event.TaskID]
		delete(r.starts, event.TaskID)
		r.mu.Unlock()

		now := time.Now()
		record := TaskRecord{
			ID:        event.TaskID,
			Kind:      kindOf(event.TaskID),
			BatchKey:  event.BatchKey,
			Status:    TaskStatusSuccess,
			StartTime: start,
			EndTime:   now,
		}
		if !start.IsZero() {
			record.Duration = now.Sub(start)
		}
		if event.ErrKind != "" {
			record.Status = TaskStatusError
			record.ErrorKind = string(event.ErrKind)
		}
		r.collector.RecordTask(record)
		r.collector.TaskFinished()

	case generation.EventBatchComplete:
		r.collector.BatchCompleted()

	case generation.EventQuotaChanged:
		switch {
		case event.Units > 0:
			r.collector.RecordReservation(event.Units)
		case event.Units < 0:
			r.collector.RecordRefund(-event.Units)
		}
	}
}

// kindOf recovers the output kind from a task id prefix.
func kindOf(taskID string) string {
	if strings.HasPrefix(taskID, string(generation.KindVideo)+"-") {
		return TaskKindVideo
	}
	return TaskKindImage
}
