package generation

import (
	"sync"
	"testing"
)

func newBatchTasks(kind TaskKind, batchKey string, n int) []*Task {
	tasks := make([]*Task, n)
	for i := 0; i < n; i++ {
		tasks[i] = &Task{ID: TaskID(kind, batchKey, i), BatchKey: batchKey, Kind: kind}
	}
	return tasks
}

func TestRegistrySettleCountsBatchRemainder(t *testing.T) {
	reg := NewRegistry()
	key := NewBatchKey()
	prefix := BatchPrefix(KindVariation, key)

	for _, task := range newBatchTasks(KindVariation, key, 4) {
		reg.Register(task)
	}
	// An unrelated batch must not affect the count.
	other := NewBatchKey()
	reg.Register(&Task{ID: TaskID(KindPlain, other, 0), BatchKey: other, Kind: KindPlain})

	wantRemaining := []int{3, 2, 1, 0}
	for i, order := range []int{2, 0, 3, 1} {
		got := reg.Settle(TaskID(KindVariation, key, order), prefix)
		if got != wantRemaining[i] {
			t.Errorf("settlement %d: remaining = %d, want %d", i, got, wantRemaining[i])
		}
	}

	if reg.Count() != 1 {
		t.Errorf("registry count = %d, want 1 (unrelated task)", reg.Count())
	}
}

// Exactly one of N concurrent settlements observes remaining == 0.
func TestRegistrySettleConcurrent(t *testing.T) {
	reg := NewRegistry()
	key := NewBatchKey()
	prefix := BatchPrefix(KindVariation, key)

	const n = 16
	tasks := newBatchTasks(KindVariation, key, n)
	for _, task := range tasks {
		reg.Register(task)
	}

	var wg sync.WaitGroup
	zeroes := make(chan struct{}, n)
	for _, task := range tasks {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if reg.Settle(id, prefix) == 0 {
				zeroes <- struct{}{}
			}
		}(task.ID)
	}
	wg.Wait()
	close(zeroes)

	count := 0
	for range zeroes {
		count++
	}
	if count != 1 {
		t.Errorf("%d settlements observed remaining == 0, want exactly 1", count)
	}
}

func TestRegistryCountPrefix(t *testing.T) {
	reg := NewRegistry()
	key := NewBatchKey()
	for _, task := range newBatchTasks(KindVideo, key, 3) {
		reg.Register(task)
	}

	prefix := BatchPrefix(KindVideo, key)
	if got := reg.CountPrefix(prefix); got != 3 {
		t.Errorf("CountPrefix = %d, want 3", got)
	}
	if got := reg.CountPrefix(BatchPrefix(KindVideo, NewBatchKey())); got != 0 {
		t.Errorf("CountPrefix for foreign batch = %d, want 0", got)
	}
}

func TestBatchKeysNeverCollide(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := NewBatchKey()
		if seen[key] {
			t.Fatalf("duplicate batch key %s", key)
		}
		seen[key] = true
	}
}

func TestTaskIDFormat(t *testing.T) {
	id := TaskID(KindVariation, "abc", 7)
	if id != "variation-abc-7" {
		t.Errorf("TaskID = %q", id)
	}
	if !InBatch(id, BatchPrefix(KindVariation, "abc")) {
		t.Error("task id does not match its own batch prefix")
	}
	if InBatch(id, BatchPrefix(KindPlain, "abc")) {
		t.Error("task id matched a foreign batch prefix")
	}
}
