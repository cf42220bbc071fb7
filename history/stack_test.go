package history

import (
	"testing"

	"canvas_backend/canvas"
)

// snap builds a snapshot whose single image id marks its identity.
func snap(id string) canvas.Snapshot {
	return canvas.Snapshot{
		Images: []canvas.PlacedImage{{ID: id}},
	}
}

func snapID(s *canvas.Snapshot) string {
	if s == nil || len(s.Images) == 0 {
		return ""
	}
	return s.Images[0].ID
}

// Push S1..S3, undo twice, push S4: redo branch is discarded and undo walks
// S1 then S0.
func TestLinearHistoryDiscardsRedoBranch(t *testing.T) {
	stack := NewStack(snap("s0"), 10)
	stack.Push(snap("s1"))
	stack.Push(snap("s2"))
	stack.Push(snap("s3"))

	if got := snapID(stack.Undo()); got != "s2" {
		t.Fatalf("first undo = %q, want s2", got)
	}
	if got := snapID(stack.Undo()); got != "s1" {
		t.Fatalf("second undo = %q, want s1", got)
	}

	stack.Push(snap("s4"))

	if redo := stack.Redo(); redo != nil {
		t.Errorf("redo after push = %q, want nil (branch discarded)", snapID(redo))
	}
	if got := snapID(stack.Undo()); got != "s1" {
		t.Errorf("undo = %q, want s1", got)
	}
	if got := snapID(stack.Undo()); got != "s0" {
		t.Errorf("undo = %q, want s0", got)
	}
	if stack.Undo() != nil {
		t.Error("undo at initial entry should be nil")
	}
}

func TestRedoAfterUndo(t *testing.T) {
	stack := NewStack(snap("s0"), 10)
	stack.Push(snap("s1"))
	stack.Push(snap("s2"))

	stack.Undo()
	stack.Undo()

	if got := snapID(stack.Redo()); got != "s1" {
		t.Errorf("redo = %q, want s1", got)
	}
	if got := snapID(stack.Redo()); got != "s2" {
		t.Errorf("redo = %q, want s2", got)
	}
	if stack.Redo() != nil {
		t.Error("redo at newest entry should be nil")
	}
}

func TestPushEvictsOldestAtCap(t *testing.T) {
	stack := NewStack(snap("s0"), 3)
	stack.Push(snap("s1"))
	stack.Push(snap("s2"))
	stack.Push(snap("s3")) // evicts s0

	if stack.Len() != 3 {
		t.Fatalf("len = %d, want 3", stack.Len())
	}

	// Walk all the way back: bottom entry is now s1.
	stack.Undo()
	if got := snapID(stack.Undo()); got != "s1" {
		t.Errorf("bottom entry = %q, want s1 (s0 evicted)", got)
	}
	if stack.Undo() != nil {
		t.Error("undo past evicted entries should be nil")
	}
}

func TestSnapshotsAreIndependent(t *testing.T) {
	live := snap("s1")
	stack := NewStack(snap("s0"), 10)
	stack.Push(live)

	// Mutating the pushed snapshot must not affect the stored entry.
	live.Images[0].ID = "mutated"

	got := stack.Undo()
	_ = got // back at s0
	redone := stack.Redo()
	if snapID(redone) != "s1" {
		t.Errorf("stored entry was mutated: %q", snapID(redone))
	}

	// Mutating a returned snapshot must not affect the stored entry either.
	redone.Images[0].ID = "mutated-again"
	stack.Undo()
	if got := snapID(stack.Redo()); got != "s1" {
		t.Errorf("returned snapshot shares storage: %q", got)
	}
}

func TestCanUndoRedo(t *testing.T) {
	stack := NewStack(snap("s0"), 10)
	if stack.CanUndo() {
		t.Error("CanUndo at initial entry should be false")
	}
	if stack.CanRedo() {
		t.Error("CanRedo with no forward entries should be false")
	}

	stack.Push(snap("s1"))
	if !stack.CanUndo() {
		t.Error("CanUndo after push should be true")
	}
	stack.Undo()
	if !stack.CanRedo() {
		t.Error("CanRedo after undo should be true")
	}
}
