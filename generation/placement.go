package generation

import "math"

// DefaultOffsetX is the horizontal gap between a source element and the
// first placeholder column.
const DefaultOffsetX = 60.0

// DefaultOffsetY is the vertical gap between placeholder rows.
const DefaultOffsetY = 60.0

// Rect is the geometry of a canvas element used for placement math.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Position is a computed placeholder location.
type Position struct {
	X float64
	Y float64
}

// PlacementConfig holds configuration for placeholder layout.
type PlacementConfig struct {
	// GapX/GapY separate placeholders from the source and from each other
	GapX float64
	GapY float64
}

// DefaultPlacementConfig returns the default layout configuration.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		GapX: DefaultOffsetX,
		GapY: DefaultOffsetY,
	}
}

// SpreadPlacements computes deterministic positions for a batch of count
// placeholders around a source element. Placeholders fill a near-square grid
// to the right of the source, row-major, so the same inputs always produce
// the same layout.
//
// This molecule composes:
// - grid shape selection (atom)
// - per-cell offset math (atom)
func SpreadPlacements(source Rect, itemW, itemH float64, count int, config PlacementConfig) []Position {
	if count <= 0 {
		return nil
	}

	cols := int(math.Ceil(math.Sqrt(float64(count))))
	startX := source.X + source.Width + config.GapX
	startY := source.Y

	positions := make([]Position, count)
	for i := 0; i < count; i++ {
		row := i / cols
		col := i % cols
		positions[i] = Position{
			X: startX + float64(col)*(itemW+config.GapX),
			Y: startY + float64(row)*(itemH+config.GapY),
		}
	}
	return positions
}

// PlacementOrigin picks the source rectangle for a batch. With no source
// elements the batch anchors at the canvas origin; with several, the
// bounding box of all of them is used so placeholders land beside the group.
func PlacementOrigin(sources []Rect) Rect {
	if len(sources) == 0 {
		return Rect{}
	}

	origin := sources[0]
	minX, minY := origin.X, origin.Y
	maxX, maxY := origin.X+origin.Width, origin.Y+origin.Height
	for _, r := range sources[1:] {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.Width)
		maxY = math.Max(maxY, r.Y+r.Height)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
