// Package provider defines the generation provider contract consumed by the
// orchestrator, with a typed terminal error channel instead of message
// sniffing at the call site.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the requested output type.
type Kind string

const (
	// KindImage requests a still image
	KindImage Kind = "image"
	// KindVideo requests a video clip
	KindVideo Kind = "video"
)

// ErrorKind classifies terminal provider failures. Classification happens
// once, inside each adapter at the API boundary; everything downstream does a
// data-driven match on the kind.
type ErrorKind string

const (
	// ErrContentModeration: the prompt or source was blocked by a safety system
	ErrContentModeration ErrorKind = "content_moderation"
	// ErrRateLimit: the provider throttled the request
	ErrRateLimit ErrorKind = "rate_limit"
	// ErrNotFound: the result URL or referenced resource does not exist
	ErrNotFound ErrorKind = "not_found"
	// ErrServer: the provider failed internally (5xx)
	ErrServer ErrorKind = "server"
	// ErrUnknown: anything that did not classify
	ErrUnknown ErrorKind = "unknown"
)

// Error is a classified terminal provider failure.
type Error struct {
	Kind    ErrorKind
	Message string
	// Err is the underlying cause, if any
	Err error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("provider: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify extracts the ErrorKind from any error chain. Unmatched errors
// report ErrUnknown.
func Classify(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrUnknown
}

// Request describes one generation call.
type Request struct {
	// Kind selects image or video output
	Kind Kind
	// Prompt is the generation prompt (required for text-to-image)
	Prompt string
	// SourceURL is the source element reference for variations and
	// image-to-video (optional for plain text-to-image)
	SourceURL string
	// Width/Height are the natural size hint from the source element
	Width  int
	Height int
	// Model overrides the adapter's default model id
	Model string
}

// Event is a non-terminal progress notification. Image adapters may emit
// partial frames; video adapters emit percentages. Zero events is valid.
type Event struct {
	// FrameURL is a partial preview frame, when the adapter streams pixels
	FrameURL string
	// Percent is completion progress 0-100, when the adapter reports it
	Percent float64
}

// EventFunc receives progress events. Called from the adapter's goroutine;
// implementations must be safe for that and cheap.
type EventFunc func(Event)

// Result is the single terminal success payload.
type Result struct {
	// URL is the provider's (typically short-lived) result URL
	URL string
	// Width/Height are the generated media's dimensions, when known
	Width  int
	Height int
}

// Provider generates media. Generate blocks until the terminal event: it
// returns exactly one of a Result or an error (classified as *Error wherever
// the adapter can tell). The context cancels the underlying request; a
// deleted placeholder propagates here as context.Canceled.
type Provider interface {
	Generate(ctx context.Context, req Request, onEvent EventFunc) (*Result, error)
}
