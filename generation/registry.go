package generation

import (
	"strings"
	"sync"
)

// Registry tracks in-flight generation tasks keyed by task id. It is an
// explicitly constructed, injectable object owned by the orchestrator, never
// a package-level global, so sessions and tests stay isolated.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Register adds a task. Registering an id twice overwrites the earlier
// entry; ids are unique by construction.
func (r *Registry) Register(task *Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
}

// Get returns the task with the given id, or nil.
func (r *Registry) Get(id string) *Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks[id]
}

// Settle removes a task and reports how many tasks sharing its batch prefix
// remain. The removal and the scan happen under one lock, so exactly one
// settlement per batch observes remaining == 0 regardless of order.
func (r *Registry) Settle(id, batchPrefix string) (remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	for taskID := range r.tasks {
		if strings.HasPrefix(taskID, batchPrefix) {
			remaining++
		}
	}
	return remaining
}

// Remove deletes a task without batch accounting.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
}

// Count returns the number of in-flight tasks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// CountPrefix returns the number of in-flight tasks in a batch.
func (r *Registry) CountPrefix(batchPrefix string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for id := range r.tasks {
		if strings.HasPrefix(id, batchPrefix) {
			n++
		}
	}
	return n
}

// ActiveIDs returns the ids of all in-flight tasks.
func (r *Registry) ActiveIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	return ids
}
