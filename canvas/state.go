package canvas

import (
	"sync"
)

// State is the live canvas document. All mutations happen under a single
// mutex and are value replacements: readers only ever see copies, so an
// observer holding a snapshot is never affected by later edits.
//
// State is an explicitly constructed, injectable object; the orchestrator
// owns one per session.
type State struct {
	mu       sync.RWMutex
	images   []PlacedImage
	videos   []PlacedVideo
	selected []string
}

// NewState creates an empty canvas document.
func NewState() *State {
	return &State{}
}

// InsertImage appends an image element.
func (s *State) InsertImage(img PlacedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
}

// InsertVideo appends a video element.
func (s *State) InsertVideo(vid PlacedVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, vid)
}

// UpdateImage applies fn to a copy of the element with the given id and
// writes the copy back. Returns false without calling fn if the id is gone
// (deleted placeholders make in-flight updates no-ops, not errors).
func (s *State) UpdateImage(id string, fn func(*PlacedImage)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == id {
			updated := s.images[i]
			fn(&updated)
			s.images[i] = updated
			return true
		}
	}
	return false
}

// UpdateVideo is the video counterpart of UpdateImage.
func (s *State) UpdateVideo(id string, fn func(*PlacedVideo)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.videos {
		if s.videos[i].ID == id {
			updated := s.videos[i]
			fn(&updated)
			s.videos[i] = updated
			return true
		}
	}
	return false
}

// RemoveImage deletes the element with the given id. Returns false if absent.
func (s *State) RemoveImage(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.images {
		if s.images[i].ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			s.removeSelectionLocked(id)
			return true
		}
	}
	return false
}

// RemoveVideo deletes the video with the given id. Returns false if absent.
func (s *State) RemoveVideo(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.videos {
		if s.videos[i].ID == id {
			s.videos = append(s.videos[:i], s.videos[i+1:]...)
			s.removeSelectionLocked(id)
			return true
		}
	}
	return false
}

// GetImage returns a copy of the element, or false if absent.
func (s *State) GetImage(id string) (PlacedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.images {
		if s.images[i].ID == id {
			return s.images[i], true
		}
	}
	return PlacedImage{}, false
}

// GetVideo returns a copy of the video element, or false if absent.
func (s *State) GetVideo(id string) (PlacedVideo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.videos {
		if s.videos[i].ID == id {
			return s.videos[i], true
		}
	}
	return PlacedVideo{}, false
}

// SetSelection replaces the selected element ids.
func (s *State) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = append([]string(nil), ids...)
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// SelectedIDs returns a copy of the current selection.
func (s *State) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selected...)
}

// Snapshot returns a deep copy of the full document, including loading
// placeholders. Used for the undo/redo stack restore path.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Images:      append([]PlacedImage(nil), s.images...),
		Videos:      append([]PlacedVideo(nil), s.videos...),
		SelectedIDs: append([]string(nil), s.selected...),
	}
}

// CleanSnapshot returns a deep copy excluding loading placeholders. This is
// the persistable view: placeholders must never reach the durable store or
// quota-relevant accounting. Error overlays are settled elements and stay in.
func (s *State) CleanSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		SelectedIDs: append([]string(nil), s.selected...),
	}
	for _, img := range s.images {
		if !img.IsLoading {
			snap.Images = append(snap.Images, img)
		}
	}
	for _, vid := range s.videos {
		if !vid.IsLoading {
			snap.Videos = append(snap.Videos, vid)
		}
	}
	return snap
}

// Restore atomically replaces the whole document with a snapshot.
func (s *State) Restore(snap Snapshot) {
	clone := snap.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = clone.Images
	s.videos = clone.Videos
	s.selected = clone.SelectedIDs
}

// Counts returns the number of image and video elements.
func (s *State) Counts() (images, videos int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images), len(s.videos)
}

// removeSelectionLocked drops an id from the selection. Caller holds mu.
func (s *State) removeSelectionLocked(id string) {
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i], s.selected[i+1:]...)
			return
		}
	}
}
