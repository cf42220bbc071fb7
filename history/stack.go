// Package history implements a bounded linear undo/redo stack of canvas
// snapshots. No branching: pushing after an undo discards the redo tail.
package history

import (
	"sync"

	"canvas_backend/canvas"
)

// DefaultLimit caps the stack length when no limit is configured.
const DefaultLimit = 50

// Stack is a linear undo/redo log. Snapshots are cloned on the way in and on
// the way out, so entries never share mutable state with the live canvas.
//
// Callers push once per settled, user-visible mutation (one entry per
// generation batch, never per streaming frame).
type Stack struct {
	mu      sync.Mutex
	entries []canvas.Snapshot
	index   int
	limit   int
}

// NewStack creates a history stack seeded with an initial snapshot (the
// terminal state that undo bottoms out on). Limits below 1 fall back to
// DefaultLimit.
func NewStack(initial canvas.Snapshot, limit int) *Stack {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Stack{
		entries: []canvas.Snapshot{initial.Clone()},
		index:   0,
		limit:   limit,
	}
}

// Push appends a snapshot after the current index, discarding any redo
// branch, and evicts the oldest entry when the cap is exceeded.
func (s *Stack) Push(snap canvas.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Truncate the redo branch
	s.entries = s.entries[:s.index+1]
	s.entries = append(s.entries, snap.Clone())
	s.index++

	if len(s.entries) > s.limit {
		over := len(s.entries) - s.limit
		s.entries = s.entries[over:]
		s.index -= over
	}
}

// Undo moves back one entry and returns it. Returns nil at the initial
// entry (no-op).
func (s *Stack) Undo() *canvas.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == 0 {
		return nil
	}
	s.index--
	snap := s.entries[s.index].Clone()
	return &snap
}

// Redo moves forward one entry and returns it. Returns nil at the newest
// entry (no-op).
func (s *Stack) Redo() *canvas.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.entries)-1 {
		return nil
	}
	s.index++
	snap := s.entries[s.index].Clone()
	return &snap
}

// CanUndo reports whether Undo would return a snapshot.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

// CanRedo reports whether Redo would return a snapshot.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index < len(s.entries)-1
}

// Len returns the number of stored entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Index returns the current position in the stack.
func (s *Stack) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}
