// Package assetstore persists generated media in durable storage so canvas
// elements survive the expiry of provider-hosted URLs.
//
// This organism composes:
// - Uploader: the storage contract shared by all backends
// - S3Store: AWS S3 / S3-compatible object storage backend
// - LocalStore: directory-backed storage for development
//
// Uploads are best-effort from the caller's point of view: a failed upload is
// reported through UploadError but never invalidates the element on the
// canvas, which keeps showing the provider's transient URL.
package assetstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Source describes where the media to persist currently lives. Exactly one
// of URL or Bytes is set; when both are present Bytes wins.
type Source struct {
	// URL is a provider-hosted location the store fetches from.
	URL string

	// Bytes is in-memory media data, used when the caller already
	// downloaded the result (for example while probing dimensions).
	Bytes []byte

	// ContentType is the MIME type of the media, e.g. "image/png".
	ContentType string
}

// Metadata carries identifying information stored alongside the asset.
type Metadata struct {
	UserID   string
	TaskID   string
	Kind     string // "image" or "video"
	Prompt   string
	Uploaded time.Time
}

// Asset is the durable record returned by a successful upload.
type Asset struct {
	// ID is the storage key of the persisted object.
	ID string

	// URL is a stable, publicly reachable location for the object.
	URL string
}

// Uploader is the storage contract. Implementations must be safe for
// concurrent use.
type Uploader interface {
	// Upload persists the source media and returns the durable asset.
	Upload(ctx context.Context, src Source, meta Metadata) (*Asset, error)
}

// UploadError reports a failed persistence attempt. Callers log it and move
// on; the element keeps its transient URL.
type UploadError struct {
	TaskID string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("assetstore: upload failed for task %s: %v", e.TaskID, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// extensionFor maps a MIME type to a file extension for the storage key.
func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "mp4"):
		return ".mp4"
	case strings.Contains(contentType, "webm"):
		return ".webm"
	default:
		return ".bin"
	}
}

// objectKey builds the storage key for an asset. Keys are grouped by user
// and kind so retention policies can target them independently.
func objectKey(meta Metadata, contentType string) string {
	kind := meta.Kind
	if kind == "" {
		kind = "media"
	}
	return fmt.Sprintf("%s/%s/%s%s", meta.UserID, kind, meta.TaskID, extensionFor(contentType))
}
