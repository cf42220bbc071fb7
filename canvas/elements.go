// Package canvas holds the in-memory canvas document: placed images and
// videos, the current selection, and snapshot semantics used by the history
// stack and the local persistence mirror.
package canvas

import (
	"time"
)

// PlacedImage is an image element on the canvas.
//
// While IsLoading is true the element is a generation placeholder: it must
// not appear in clean snapshots, and it is not yet eligible for history
// capture. Once IsLoading is false and no error flag is set, the element is
// settled.
type PlacedImage struct {
	ID string `json:"id"`

	// Core transform
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"` // degrees

	// Content references. Src is the display-resolution reference and may be
	// a loading placeholder, a pixelated preview, a streaming frame, or the
	// final asset URL. FullSizeSrc is set once the durable upload completes.
	Src          string `json:"src"`
	FullSizeSrc  string `json:"fullSizeSrc,omitempty"`
	ThumbnailSrc string `json:"thumbnailSrc,omitempty"`

	// Durable asset linkage
	AssetID       string    `json:"assetId,omitempty"`
	AssetSyncedAt time.Time `json:"assetSyncedAt,omitempty"`

	// Transient flags
	IsLoading          bool `json:"isLoading,omitempty"`
	HasGenerationError bool `json:"hasGenerationError,omitempty"`
	HasContentError    bool `json:"hasContentError,omitempty"`
	DisplayAsThumbnail bool `json:"displayAsThumbnail,omitempty"`

	// ErrorLabel is the short classified label shown on an error overlay
	// ("Content Blocked", "Network Error"), never a raw exception message.
	ErrorLabel string `json:"errorLabel,omitempty"`
}

// Settled reports whether the image has reached a clean terminal state.
func (p PlacedImage) Settled() bool {
	return !p.IsLoading && !p.HasGenerationError && !p.HasContentError
}

// PlacedVideo is a video element on the canvas. Videos have no streaming
// preview; Progress carries the provider's percentage while loading.
type PlacedVideo struct {
	ID string `json:"id"`

	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`

	Src          string `json:"src"`
	FullSizeSrc  string `json:"fullSizeSrc,omitempty"`
	ThumbnailSrc string `json:"thumbnailSrc,omitempty"`

	AssetID       string    `json:"assetId,omitempty"`
	AssetSyncedAt time.Time `json:"assetSyncedAt,omitempty"`

	IsLoading          bool    `json:"isLoading,omitempty"`
	HasGenerationError bool    `json:"hasGenerationError,omitempty"`
	HasContentError    bool    `json:"hasContentError,omitempty"`
	Progress           float64 `json:"progress,omitempty"` // 0-100 while loading

	ErrorLabel string `json:"errorLabel,omitempty"`
}

// Settled reports whether the video has reached a clean terminal state.
func (p PlacedVideo) Settled() bool {
	return !p.IsLoading && !p.HasGenerationError && !p.HasContentError
}
