package canvas

import (
	"testing"
)

func placeholder(id string) PlacedImage {
	return PlacedImage{
		ID:        id,
		X:         100,
		Y:         100,
		Width:     512,
		Height:    512,
		Src:       "data:image/png;base64,preview",
		IsLoading: true,
	}
}

func TestUpdateImageMissingIsNoop(t *testing.T) {
	state := NewState()
	state.InsertImage(placeholder("img-1"))
	state.RemoveImage("img-1")

	called := false
	ok := state.UpdateImage("img-1", func(p *PlacedImage) { called = true })
	if ok {
		t.Error("UpdateImage on deleted id should return false")
	}
	if called {
		t.Error("mutation fn must not run for a deleted element")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	state := NewState()
	img := placeholder("img-1")
	img.IsLoading = false
	state.InsertImage(img)
	state.SetSelection([]string{"img-1"})

	snap := state.Snapshot()

	state.UpdateImage("img-1", func(p *PlacedImage) { p.X = 999 })
	state.SetSelection(nil)

	if snap.Images[0].X != 100 {
		t.Errorf("snapshot mutated by later edit: X = %v", snap.Images[0].X)
	}
	if len(snap.SelectedIDs) != 1 {
		t.Errorf("snapshot selection mutated: %v", snap.SelectedIDs)
	}
}

func TestCleanSnapshotExcludesPlaceholders(t *testing.T) {
	state := NewState()

	settled := placeholder("settled")
	settled.IsLoading = false
	state.InsertImage(settled)
	state.InsertImage(placeholder("loading"))

	overlay := placeholder("failed")
	overlay.IsLoading = false
	overlay.HasGenerationError = true
	overlay.ErrorLabel = "Network Error"
	state.InsertImage(overlay)

	snap := state.CleanSnapshot()
	if len(snap.Images) != 2 {
		t.Fatalf("clean snapshot has %d images, want 2", len(snap.Images))
	}
	for _, img := range snap.Images {
		if img.IsLoading {
			t.Errorf("loading placeholder %q leaked into clean snapshot", img.ID)
		}
	}
	// Error overlays are settled layout context and must survive.
	found := false
	for _, img := range snap.Images {
		if img.ID == "failed" {
			found = true
		}
	}
	if !found {
		t.Error("error overlay missing from clean snapshot")
	}
}

func TestRestoreReplacesDocument(t *testing.T) {
	state := NewState()
	state.InsertImage(placeholder("old"))

	snap := Snapshot{
		Images:      []PlacedImage{{ID: "new", Width: 256, Height: 256}},
		SelectedIDs: []string{"new"},
	}
	state.Restore(snap)

	if _, ok := state.GetImage("old"); ok {
		t.Error("restore left stale element in place")
	}
	if _, ok := state.GetImage("new"); !ok {
		t.Error("restored element missing")
	}
	if ids := state.SelectedIDs(); len(ids) != 1 || ids[0] != "new" {
		t.Errorf("selection = %v, want [new]", ids)
	}

	// Mutating the source snapshot afterwards must not affect the state.
	snap.Images[0].Width = 1
	img, _ := state.GetImage("new")
	if img.Width != 256 {
		t.Error("restore did not deep-copy the snapshot")
	}
}

func TestRemoveImageClearsSelection(t *testing.T) {
	state := NewState()
	img := placeholder("img-1")
	img.IsLoading = false
	state.InsertImage(img)
	state.SetSelection([]string{"img-1"})

	state.RemoveImage("img-1")
	if ids := state.SelectedIDs(); len(ids) != 0 {
		t.Errorf("selection not cleared on removal: %v", ids)
	}
}

func TestSettled(t *testing.T) {
	img := PlacedImage{ID: "a"}
	if !img.Settled() {
		t.Error("clean element should be settled")
	}
	img.IsLoading = true
	if img.Settled() {
		t.Error("loading element should not be settled")
	}
	img.IsLoading = false
	img.HasGenerationError = true
	if img.Settled() {
		t.Error("error element should not be settled")
	}
}
