// Package generation implements the orchestration core: it accepts
// generation requests, reserves quota, drives placeholders through streaming
// updates, finalizes them into durable assets, and performs compensating
// actions on failure.
//
// This organism composes:
//   - quota.Ledger: atomic reserve/refund against the account store
//   - canvas.State: the live canvas document
//   - history.Stack: one undo entry per settled batch
//   - provider.Provider: image/video adapters with typed terminal errors
//   - assetstore.Uploader: durable persistence of finished media
//   - identity.Provider: resolves the acting user
package generation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TaskKind tags the id of a generation task. The kind plus the batch key
// form the prefix shared by all tasks in one batch.
type TaskKind string

const (
	// KindPlain is a text-to-image generation
	KindPlain TaskKind = "plain"
	// KindVariation is one item of an image variation batch
	KindVariation TaskKind = "variation"
	// KindVideo is an image-to-video generation
	KindVideo TaskKind = "video"
)

// NewBatchKey returns the correlation key shared by all tasks in a batch.
// Keys are random UUIDs, so two batches started in the same instant never
// collide.
func NewBatchKey() string {
	return uuid.NewString()
}

// TaskID builds the id for one task: "{kind}-{batchKey}-{index}". The id
// doubles as the canvas element id of the task's placeholder.
func TaskID(kind TaskKind, batchKey string, index int) string {
	return fmt.Sprintf("%s-%s-%d", kind, batchKey, index)
}

// BatchPrefix returns the shared id prefix for a batch. Whether a batch has
// fully settled is recovered by scanning the registry for this prefix.
func BatchPrefix(kind TaskKind, batchKey string) string {
	return fmt.Sprintf("%s-%s-", kind, batchKey)
}

// InBatch reports whether a task id belongs to the given batch prefix.
func InBatch(taskID, prefix string) bool {
	return strings.HasPrefix(taskID, prefix)
}

// Task is the ephemeral record of one in-flight generation. It holds its own
// geometry so a task whose source element was deleted mid-flight can still
// place its result.
type Task struct {
	ID       string
	BatchKey string
	Kind     TaskKind

	Prompt string
	// SourceURL is the source element's content for variations and video
	SourceURL string
	// VariationLabel names the style axis for variation tasks
	// (director, lighting, emotion, camera-angle)
	VariationLabel string
	Model          string

	// Placeholder geometry, fixed at insertion time
	X, Y          float64
	Width, Height float64
}
