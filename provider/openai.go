package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"canvas_backend/core"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI image generation.
//
// This molecule handles:
//   - OpenAI client configuration with the shared HTTP transport
//   - Model selection and size mapping
//   - Classification of SDK errors into typed provider errors
//
// Thread safety: safe for concurrent use; the underlying client pools
// connections.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an image provider from the engine config.
//
// Returns an error if the API key is empty. A custom endpoint can be set via
// IMAGE_API_URL for OpenAI-compatible gateways.
func NewOpenAIProvider(cfg *core.Config) (*OpenAIProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider: config cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, core.ErrMissingAuth("openai")
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.ImageAPIURL != "" {
		clientConfig.BaseURL = cfg.ImageAPIURL
	}
	clientConfig.HTTPClient = core.GetHTTPClient(cfg, cfg.AITimeout)

	model := cfg.OpenAIImageModel
	if model == "" {
		model = openai.CreateImageModelDallE3
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Generate creates one image and returns its temporary URL. The OpenAI image
// API has no streaming channel, so no progress events are emitted.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request, onEvent EventFunc) (*Result, error) {
	if req.Kind != KindImage {
		return nil, &Error{Kind: ErrUnknown, Message: fmt.Sprintf("unsupported kind %q", req.Kind)}
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, &Error{Kind: ErrUnknown, Message: "prompt cannot be empty"}
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          model,
		N:              1,
		Size:           sizeForHint(req.Width, req.Height),
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, &Error{Kind: ErrServer, Message: "empty image response"}
	}

	return &Result{URL: resp.Data[0].URL}, nil
}

// sizeForHint maps a natural size hint onto the nearest supported DALL-E 3
// size. Square output is the default.
func sizeForHint(width, height int) string {
	switch {
	case width > 0 && height > 0 && width > height*4/3:
		return openai.CreateImageSize1792x1024
	case width > 0 && height > 0 && height > width*4/3:
		return openai.CreateImageSize1024x1792
	default:
		return openai.CreateImageSize1024x1024
	}
}

// classifyOpenAIError maps SDK errors onto the typed taxonomy. The SDK
// surfaces *openai.APIError with status and code; message substrings are the
// fallback for gateways that lose the code field. This is the only place in
// the engine that inspects provider error text.
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "content_policy_violation" {
			return &Error{Kind: ErrContentModeration, Message: apiErr.Message, Err: err}
		}
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &Error{Kind: ErrRateLimit, Message: apiErr.Message, Err: err}
		case apiErr.HTTPStatusCode == 404:
			return &Error{Kind: ErrNotFound, Message: apiErr.Message, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &Error{Kind: ErrServer, Message: apiErr.Message, Err: err}
		}
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "content policy") || strings.Contains(lower, "safety system") {
		return &Error{Kind: ErrContentModeration, Message: err.Error(), Err: err}
	}
	if strings.Contains(lower, "rate limit") {
		return &Error{Kind: ErrRateLimit, Message: err.Error(), Err: err}
	}

	return &Error{Kind: ErrUnknown, Message: err.Error(), Err: err}
}
