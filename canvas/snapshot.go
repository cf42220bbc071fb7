package canvas

// Snapshot is a point-in-time copy of the canvas document. Snapshots are
// deep, independent copies: mutating the live canvas after taking one never
// retroactively changes it.
type Snapshot struct {
	Images      []PlacedImage `json:"images"`
	Videos      []PlacedVideo `json:"videos"`
	SelectedIDs []string      `json:"selectedIds"`
}

// Clone returns an independent copy of the snapshot. Elements are plain
// value types, so copying the slices is a full deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Images:      make([]PlacedImage, len(s.Images)),
		Videos:      make([]PlacedVideo, len(s.Videos)),
		SelectedIDs: make([]string, len(s.SelectedIDs)),
	}
	copy(out.Images, s.Images)
	copy(out.Videos, s.Videos)
	copy(out.SelectedIDs, s.SelectedIDs)
	return out
}

// Empty reports whether the snapshot has no elements and no selection.
func (s Snapshot) Empty() bool {
	return len(s.Images) == 0 && len(s.Videos) == 0 && len(s.SelectedIDs) == 0
}
