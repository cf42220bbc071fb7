package provider

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"

	// Standard decoders for DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// Extended decoders: providers sometimes return webp or bmp
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Dimensions is the natural size of probed media.
type Dimensions struct {
	Width  int
	Height int
}

// ProbeImageURL verifies that a result URL actually loads and decodes, and
// extracts natural dimensions. A URL that parses but does not load is a
// generation failure, not a success: an HTTP 404 classifies as ErrNotFound
// and an undecodable body as ErrServer.
func ProbeImageURL(ctx context.Context, client *http.Client, url string) (*Dimensions, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrUnknown, Message: fmt.Sprintf("invalid result URL: %v", err), Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrUnknown, Message: fmt.Sprintf("result URL unreachable: %v", err), Err: err}
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode, url); err != nil {
		return nil, err
	}

	// DecodeConfig reads only the header, not the full image.
	cfg, format, err := image.DecodeConfig(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrServer, Message: fmt.Sprintf("result is not decodable media: %v", err), Err: err}
	}
	_ = format

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &Error{Kind: ErrServer, Message: "result has empty dimensions"}
	}

	return &Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// ProbeVideoURL verifies that a video result URL loads and looks like video
// content. Container parsing is out of scope; the provider's own dimension
// report is authoritative for video.
func ProbeVideoURL(ctx context.Context, client *http.Client, url string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{Kind: ErrUnknown, Message: fmt.Sprintf("invalid result URL: %v", err), Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Kind: ErrUnknown, Message: fmt.Sprintf("result URL unreachable: %v", err), Err: err}
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode, url); err != nil {
		return err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "video/") &&
		contentType != "application/octet-stream" {
		return &Error{Kind: ErrServer, Message: fmt.Sprintf("unexpected content type %q", contentType)}
	}

	return nil
}

func statusToError(status int, url string) error {
	switch {
	case status == http.StatusNotFound:
		return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("result URL returned 404: %s", url)}
	case status >= 500:
		return &Error{Kind: ErrServer, Message: fmt.Sprintf("result URL returned %d", status)}
	case status >= 400:
		return &Error{Kind: ErrUnknown, Message: fmt.Sprintf("result URL returned %d", status)}
	}
	return nil
}
