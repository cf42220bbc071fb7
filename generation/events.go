package generation

import (
	"sync"

	"canvas_backend/provider"
	"canvas_backend/quota"
)

// EventType identifies an orchestrator event.
type EventType string

const (
	// EventTaskStarted: a placeholder was inserted and the provider call began
	EventTaskStarted EventType = "task_started"
	// EventTaskProgress: a streaming frame or percentage update was applied
	EventTaskProgress EventType = "task_progress"
	// EventTaskSettled: a task reached a terminal state, success or error
	EventTaskSettled EventType = "task_settled"
	// EventBatchComplete: the last task of a batch settled; fires exactly once
	EventBatchComplete EventType = "batch_complete"
	// EventQuotaChanged: usage moved after a reserve or refund
	EventQuotaChanged EventType = "quota_changed"
	// EventAssetPersisted: the durable upload for a settled task finished
	EventAssetPersisted EventType = "asset_persisted"
)

// Event is one orchestrator state change. The UI layer observes these
// instead of watching the canvas document for mutations.
type Event struct {
	Type     EventType
	TaskID   string
	BatchKey string

	// Percent is set on progress events for video tasks
	Percent float64
	// ErrKind is set on settlement events when the task failed
	ErrKind provider.ErrorKind
	// Usage is set on quota events
	Usage *quota.Usage
	// Units is the quota delta on quota events: positive for a
	// reservation, negative for a refund
	Units int
}

// Notifier fans orchestrator events out to subscriber channels. Sends never
// block: a subscriber that cannot keep up loses events rather than stalling
// the orchestrator.
type Notifier struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a channel to receive events.
func (n *Notifier) Subscribe(ch chan<- Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, ch)
}

// Unsubscribe removes a previously registered channel.
func (n *Notifier) Unsubscribe(ch chan<- Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, sub := range n.subscribers {
		if sub == ch {
			n.subscribers = append(n.subscribers[:i], n.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends the event to all subscribers, dropping it for any whose
// channel is full.
func (n *Notifier) Publish(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}
