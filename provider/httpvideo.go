package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"canvas_backend/core"
)

// HTTPVideoProvider implements Provider against a submit-and-poll video
// generation API: POST the job, then poll a status endpoint until it reports
// a terminal state, emitting progress events along the way.
//
// The wire shape matches the common hosted-video-API pattern:
//
//	POST {base}/jobs           -> {"id": "..."}
//	GET  {base}/jobs/{id}      -> {"status": "queued|running|done|error",
//	                               "progress": 0-100, "url": "...",
//	                               "error": "...", "code": "..."}
type HTTPVideoProvider struct {
	baseURL      string
	apiKey       string
	model        string
	client       *http.Client
	pollInterval time.Duration
}

// NewHTTPVideoProvider creates a video provider from the engine config.
func NewHTTPVideoProvider(cfg *core.Config, baseURL string) (*HTTPVideoProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider: config cannot be nil")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("provider: video API base URL cannot be empty")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, core.ErrMissingAuth("openai")
	}

	return &HTTPVideoProvider{
		baseURL:      baseURL,
		apiKey:       cfg.OpenAIAPIKey,
		model:        cfg.VideoModel,
		client:       core.GetHTTPClient(cfg, cfg.AITimeout),
		pollInterval: 2 * time.Second,
	}, nil
}

type videoJobRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

type videoJobStatus struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	URL      string  `json:"url"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Error    string  `json:"error"`
	Code     string  `json:"code"`
}

// Generate submits the job and polls until terminal. Progress events carry
// percentages only; video has no partial-frame stream.
func (p *HTTPVideoProvider) Generate(ctx context.Context, req Request, onEvent EventFunc) (*Result, error) {
	if req.Kind != KindVideo {
		return nil, &Error{Kind: ErrUnknown, Message: fmt.Sprintf("unsupported kind %q", req.Kind)}
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	job, err := p.submit(ctx, videoJobRequest{
		Model:     model,
		Prompt:    req.Prompt,
		SourceURL: req.SourceURL,
		Width:     req.Width,
		Height:    req.Height,
	})
	if err != nil {
		return nil, err
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		status, err := p.poll(ctx, job.ID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "done":
			if status.URL == "" {
				return nil, &Error{Kind: ErrServer, Message: "job done without result URL"}
			}
			return &Result{URL: status.URL, Width: status.Width, Height: status.Height}, nil
		case "error":
			return nil, classifyJobError(status)
		default:
			if onEvent != nil {
				onEvent(Event{Percent: status.Progress})
			}
		}
	}
}

func (p *HTTPVideoProvider) submit(ctx context.Context, job videoJobRequest) (*videoJobStatus, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to encode job: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("provider: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(httpReq)
}

func (p *HTTPVideoProvider) poll(ctx context.Context, jobID string) (*videoJobStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.do(httpReq)
}

func (p *HTTPVideoProvider) do(req *http.Request) (*videoJobStatus, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrUnknown, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Kind: ErrUnknown, Message: err.Error(), Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: ErrRateLimit, Message: string(body)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{Kind: ErrNotFound, Message: string(body)}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: ErrServer, Message: string(body)}
	case resp.StatusCode >= 400:
		return nil, &Error{Kind: ErrUnknown, Message: string(body)}
	}

	var status videoJobStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, &Error{Kind: ErrServer, Message: "unparseable job status", Err: err}
	}
	return &status, nil
}

// classifyJobError maps a terminal job error onto the typed taxonomy using
// the job's machine code, not its message text.
func classifyJobError(status *videoJobStatus) error {
	kind := ErrUnknown
	switch status.Code {
	case "content_policy_violation", "moderation_blocked":
		kind = ErrContentModeration
	case "rate_limited":
		kind = ErrRateLimit
	case "not_found":
		kind = ErrNotFound
	case "internal_error":
		kind = ErrServer
	}
	return &Error{Kind: kind, Message: status.Error}
}
