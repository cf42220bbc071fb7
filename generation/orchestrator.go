package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"canvas_backend/assetstore"
	"canvas_backend/canvas"
	"canvas_backend/history"
	"canvas_backend/identity"
	"canvas_backend/logging"
	"canvas_backend/provider"
	"canvas_backend/quota"
)

// DefaultMaxBatchSize bounds how many variations one request may ask for.
const DefaultMaxBatchSize = 12

// DefaultPlaceholderSize is the placeholder edge length used when neither
// the request nor the source element supplies dimensions.
const DefaultPlaceholderSize = 512.0

// Config holds orchestrator tuning knobs.
type Config struct {
	// MaxBatchSize caps the batch size of a single request
	MaxBatchSize int

	// Placement controls the placeholder layout spread
	Placement PlacementConfig

	// UploadTimeout bounds the durable upload of one finished asset
	UploadTimeout time.Duration

	// PreviewBlocks is the pixelation grid width for instant previews
	PreviewBlocks int
}

// DefaultConfig returns sensible orchestrator defaults.
func DefaultConfig() Config {
	return Config{
		MaxBatchSize:  DefaultMaxBatchSize,
		Placement:     DefaultPlacementConfig(),
		UploadTimeout: 60 * time.Second,
		PreviewBlocks: DefaultPreviewBlocks,
	}
}

// Deps are the collaborators the orchestrator is assembled from. All of them
// are injected; the orchestrator holds no global state.
type Deps struct {
	Ledger   *quota.Ledger
	State    *canvas.State
	History  *history.Stack
	Images   provider.Provider
	Videos   provider.Provider // optional; video requests fail without it
	Uploader assetstore.Uploader
	Identity identity.Provider
	Logger   *logging.Logger

	// Registry and Notifier are created when nil
	Registry *Registry
	Notifier *Notifier

	// HTTPClient is used for result probing and preview fetches
	HTTPClient *http.Client

	// OnSync receives the clean snapshot after each settled batch and after
	// undo/redo; the local persistence mirror hangs off this hook
	OnSync func(canvas.Snapshot)
}

// BatchSpec describes one generation request.
type BatchSpec struct {
	// Kind selects image or video output
	Kind provider.Kind
	// Prompt is required unless a source element is selected
	Prompt string
	// SourceID is the canvas element variations and video are derived from
	SourceID string
	// Count is the batch size, 1 to MaxBatchSize
	Count int
	// Variations optionally labels each item's style axis; when set its
	// length must equal Count
	Variations []string
	// Model overrides the provider's default model
	Model string
	// Width/Height override the placeholder size
	Width, Height float64
}

// Orchestrator drives generation requests through their lifecycle:
// reserve quota, insert placeholders, stream updates, finalize into durable
// assets, and compensate (refund, error overlay) on failure.
//
// Thread-safety: all canvas access goes through canvas.State's own locking;
// the orchestrator's mutex only guards the cancellation map.
type Orchestrator struct {
	ledger   *quota.Ledger
	state    *canvas.State
	history  *history.Stack
	images   provider.Provider
	videos   provider.Provider
	uploader assetstore.Uploader
	identity identity.Provider
	registry *Registry
	notifier *Notifier
	logger   *logging.Logger
	client   *http.Client
	onSync   func(canvas.Snapshot)
	config   Config

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator assembles an orchestrator. Ledger, State, History, Images,
// Uploader, Identity and Logger are required.
func NewOrchestrator(deps Deps, config Config) (*Orchestrator, error) {
	if deps.Ledger == nil {
		return nil, fmt.Errorf("generation: ledger cannot be nil")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("generation: canvas state cannot be nil")
	}
	if deps.History == nil {
		return nil, fmt.Errorf("generation: history stack cannot be nil")
	}
	if deps.Images == nil {
		return nil, fmt.Errorf("generation: image provider cannot be nil")
	}
	if deps.Uploader == nil {
		return nil, fmt.Errorf("generation: uploader cannot be nil")
	}
	if deps.Identity == nil {
		return nil, fmt.Errorf("generation: identity provider cannot be nil")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("generation: logger cannot be nil")
	}

	if config.MaxBatchSize < 1 {
		config.MaxBatchSize = DefaultMaxBatchSize
	}
	if config.UploadTimeout <= 0 {
		config.UploadTimeout = 60 * time.Second
	}
	if deps.Registry == nil {
		deps.Registry = NewRegistry()
	}
	if deps.Notifier == nil {
		deps.Notifier = NewNotifier()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}

	return &Orchestrator{
		ledger:   deps.Ledger,
		state:    deps.State,
		history:  deps.History,
		images:   deps.Images,
		videos:   deps.Videos,
		uploader: deps.Uploader,
		identity: deps.Identity,
		registry: deps.Registry,
		notifier: deps.Notifier,
		logger:   deps.Logger.Named("orchestrator"),
		client:   deps.HTTPClient,
		onSync:   deps.OnSync,
		config:   config,
		cancels:  make(map[string]context.CancelFunc),
	}, nil
}

// Registry exposes the task registry for observation.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Notifier exposes the event notifier for subscription.
func (o *Orchestrator) Notifier() *Notifier {
	return o.notifier
}

// ActiveTaskCount returns the number of in-flight tasks.
func (o *Orchestrator) ActiveTaskCount() int {
	return o.registry.Count()
}

// RequestGeneration validates and accepts a batch. Authentication, quota and
// validation failures return synchronously before any canvas mutation; once
// the batch key is returned, placeholders exist and the provider calls run
// in the background.
func (o *Orchestrator) RequestGeneration(ctx context.Context, token string, spec BatchSpec) (string, error) {
	userID, err := o.identity.UserIDFromToken(token)
	if err != nil {
		return "", err
	}

	if err := o.validate(spec); err != nil {
		return "", err
	}

	var source *canvas.PlacedImage
	if spec.SourceID != "" {
		img, ok := o.state.GetImage(spec.SourceID)
		if !ok {
			return "", fmt.Errorf("generation: source element %s not found", spec.SourceID)
		}
		source = &img
	}

	quotaKind := quota.KindImage
	if spec.Kind == provider.KindVideo {
		quotaKind = quota.KindVideo
	}

	usage, err := o.ledger.Reserve(ctx, userID, quotaKind, spec.Count)
	if err != nil {
		// QuotaExceededError is terminal for the request: nothing was
		// mutated, nothing to compensate.
		return "", err
	}
	o.notifier.Publish(Event{Type: EventQuotaChanged, Usage: usage, Units: spec.Count})

	batchKey := NewBatchKey()
	taskKind := classifyTaskKind(spec)
	correlationID := batchKey[:8]
	log := o.logger.With(
		zap.String("correlation_id", correlationID),
		zap.String("user_id", userID),
		zap.String("batch_key", batchKey),
	)
	log.Info("accepted generation batch",
		zap.String("kind", string(spec.Kind)),
		zap.Int("count", spec.Count),
		zap.String("prompt_preview", truncateText(spec.Prompt, 50)),
	)

	itemW, itemH := o.itemSize(spec, source)
	origin := Rect{}
	sourceURL := ""
	if source != nil {
		origin = Rect{X: source.X, Y: source.Y, Width: source.Width, Height: source.Height}
		sourceURL = source.Src
		if source.FullSizeSrc != "" {
			sourceURL = source.FullSizeSrc
		}
	}
	positions := SpreadPlacements(origin, itemW, itemH, spec.Count, o.config.Placement)

	taskIDs := make([]string, spec.Count)
	for i := 0; i < spec.Count; i++ {
		task := &Task{
			ID:        TaskID(taskKind, batchKey, i),
			BatchKey:  batchKey,
			Kind:      taskKind,
			Prompt:    spec.Prompt,
			SourceURL: sourceURL,
			Model:     spec.Model,
			X:         positions[i].X,
			Y:         positions[i].Y,
			Width:     itemW,
			Height:    itemH,
		}
		if len(spec.Variations) == spec.Count {
			task.VariationLabel = spec.Variations[i]
		}
		taskIDs[i] = task.ID

		o.insertPlaceholder(spec.Kind, task)
		o.registry.Register(task)
		o.notifier.Publish(Event{Type: EventTaskStarted, TaskID: task.ID, BatchKey: batchKey})

		o.wg.Add(1)
		if spec.Kind == provider.KindVideo {
			go o.runVideoTask(userID, task, log)
		} else {
			go o.runImageTask(userID, task, log)
		}
	}

	if sourceURL != "" && spec.Kind == provider.KindImage {
		o.wg.Add(1)
		go o.applyPreview(sourceURL, taskIDs, log)
	}

	return batchKey, nil
}

// DeleteElement removes an element from the canvas. For an in-flight
// placeholder this also cancels the underlying provider request; the task
// goroutine observes the cancellation and settles with a refund.
func (o *Orchestrator) DeleteElement(id string) bool {
	removed := o.state.RemoveImage(id)
	if !removed {
		removed = o.state.RemoveVideo(id)
	}
	o.cancelTask(id)
	return removed
}

// Undo steps the canvas back one history entry. Returns nil at the initial
// state.
func (o *Orchestrator) Undo() *canvas.Snapshot {
	snap := o.history.Undo()
	if snap == nil {
		return nil
	}
	o.state.Restore(*snap)
	o.triggerSync()
	return snap
}

// Redo steps the canvas forward one history entry. Returns nil at the
// newest state.
func (o *Orchestrator) Redo() *canvas.Snapshot {
	snap := o.history.Redo()
	if snap == nil {
		return nil
	}
	o.state.Restore(*snap)
	o.triggerSync()
	return snap
}

// QuotaSummary returns the acting user's current usage.
func (o *Orchestrator) QuotaSummary(ctx context.Context, token string) (*quota.Summary, error) {
	userID, err := o.identity.UserIDFromToken(token)
	if err != nil {
		return nil, err
	}
	return o.ledger.Summary(ctx, userID)
}

// Drain cancels nothing but waits for all in-flight tasks to settle, or for
// the context to expire. Used by graceful shutdown.
func (o *Orchestrator) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("generation: drain aborted with %d tasks in flight: %w",
			o.registry.Count(), ctx.Err())
	}
}

func (o *Orchestrator) validate(spec BatchSpec) error {
	if spec.Kind != provider.KindImage && spec.Kind != provider.KindVideo {
		return fmt.Errorf("generation: unknown output kind %q", spec.Kind)
	}
	if spec.Count < 1 || spec.Count > o.config.MaxBatchSize {
		return fmt.Errorf("generation: batch size must be 1-%d, got %d",
			o.config.MaxBatchSize, spec.Count)
	}
	if spec.Prompt == "" && spec.SourceID == "" {
		return fmt.Errorf("generation: request needs a prompt or a source element")
	}
	if spec.Kind == provider.KindVideo {
		if o.videos == nil {
			return fmt.Errorf("generation: no video provider configured")
		}
		if spec.SourceID == "" {
			return fmt.Errorf("generation: video generation needs a source element")
		}
	}
	if len(spec.Variations) != 0 && len(spec.Variations) != spec.Count {
		return fmt.Errorf("generation: got %d variation labels for batch of %d",
			len(spec.Variations), spec.Count)
	}
	return nil
}

func classifyTaskKind(spec BatchSpec) TaskKind {
	switch {
	case spec.Kind == provider.KindVideo:
		return KindVideo
	case spec.SourceID != "":
		return KindVariation
	default:
		return KindPlain
	}
}

func (o *Orchestrator) itemSize(spec BatchSpec, source *canvas.PlacedImage) (w, h float64) {
	if spec.Width > 0 && spec.Height > 0 {
		return spec.Width, spec.Height
	}
	if source != nil && source.Width > 0 && source.Height > 0 {
		return source.Width, source.Height
	}
	return DefaultPlaceholderSize, DefaultPlaceholderSize
}

func (o *Orchestrator) insertPlaceholder(kind provider.Kind, task *Task) {
	if kind == provider.KindVideo {
		o.state.InsertVideo(canvas.PlacedVideo{
			ID: task.ID, X: task.X, Y: task.Y,
			Width: task.Width, Height: task.Height,
			IsLoading: true,
		})
		return
	}
	o.state.InsertImage(canvas.PlacedImage{
		ID: task.ID, X: task.X, Y: task.Y,
		Width: task.Width, Height: task.Height,
		IsLoading: true,
	})
}

// runImageTask drives one image generation to a terminal state.
func (o *Orchestrator) runImageTask(userID string, task *Task, log *logging.Logger) {
	defer o.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	o.trackCancel(task.ID, cancel)
	defer o.clearCancel(task.ID)
	defer cancel()

	req := provider.Request{
		Kind:      provider.KindImage,
		Prompt:    o.taskPrompt(task),
		SourceURL: task.SourceURL,
		Width:     int(task.Width),
		Height:    int(task.Height),
		Model:     task.Model,
	}

	result, err := o.images.Generate(ctx, req, func(e provider.Event) {
		if e.FrameURL == "" {
			return
		}
		// Streaming frames update the placeholder in place. A deleted
		// placeholder makes this a no-op.
		o.state.UpdateImage(task.ID, func(img *canvas.PlacedImage) {
			img.Src = e.FrameURL
		})
		o.notifier.Publish(Event{Type: EventTaskProgress, TaskID: task.ID, BatchKey: task.BatchKey})
	})
	if err != nil {
		o.settleImageError(userID, task, err, log)
		return
	}

	// A URL that parses but does not load is still a failure.
	dims, err := provider.ProbeImageURL(ctx, o.client, result.URL)
	if err != nil {
		o.settleImageError(userID, task, err, log)
		return
	}

	alive := o.state.UpdateImage(task.ID, func(img *canvas.PlacedImage) {
		img.IsLoading = false
		img.Src = result.URL
	})
	if !alive {
		// Placeholder was deleted after the provider finished; treat like a
		// cancellation so the quota goes back.
		o.settleCanceled(userID, task, quota.KindImage, log)
		return
	}

	log.Debug("image task finished",
		zap.String("task_id", task.ID),
		zap.Int("width", dims.Width),
		zap.Int("height", dims.Height),
	)

	o.wg.Add(1)
	go o.persistAsset(userID, task, result.URL, "image", log)

	o.settle(task, provider.ErrorKind(""))
}

// runVideoTask drives one video generation to a terminal state. Videos have
// no streaming frames; progress events carry a percentage only.
func (o *Orchestrator) runVideoTask(userID string, task *Task, log *logging.Logger) {
	defer o.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	o.trackCancel(task.ID, cancel)
	defer o.clearCancel(task.ID)
	defer cancel()

	req := provider.Request{
		Kind:      provider.KindVideo,
		Prompt:    task.Prompt,
		SourceURL: task.SourceURL,
		Width:     int(task.Width),
		Height:    int(task.Height),
		Model:     task.Model,
	}

	result, err := o.videos.Generate(ctx, req, func(e provider.Event) {
		o.state.UpdateVideo(task.ID, func(vid *canvas.PlacedVideo) {
			vid.Progress = e.Percent
		})
		o.notifier.Publish(Event{
			Type: EventTaskProgress, TaskID: task.ID,
			BatchKey: task.BatchKey, Percent: e.Percent,
		})
	})
	if err != nil {
		o.settleVideoError(userID, task, err, log)
		return
	}

	if err := provider.ProbeVideoURL(ctx, o.client, result.URL); err != nil {
		o.settleVideoError(userID, task, err, log)
		return
	}

	alive := o.state.UpdateVideo(task.ID, func(vid *canvas.PlacedVideo) {
		vid.IsLoading = false
		vid.Src = result.URL
		vid.Progress = 100
		if result.Width > 0 && result.Height > 0 {
			ratio := float64(result.Height) / float64(result.Width)
			vid.Height = vid.Width * ratio
		}
	})
	if !alive {
		o.settleCanceled(userID, task, quota.KindVideo, log)
		return
	}

	o.wg.Add(1)
	go o.persistAsset(userID, task, result.URL, "video", log)

	o.settle(task, provider.ErrorKind(""))
}

// persistAsset uploads a finished result to durable storage and swaps the
// element's references. Upload failure is non-fatal: the element keeps the
// provider's transient URL and durability is simply not achieved.
func (o *Orchestrator) persistAsset(userID string, task *Task, url, kind string, log *logging.Logger) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), o.config.UploadTimeout)
	defer cancel()

	asset, err := o.uploader.Upload(ctx,
		assetstore.Source{URL: url},
		assetstore.Metadata{
			UserID:   userID,
			TaskID:   task.ID,
			Kind:     kind,
			Prompt:   task.Prompt,
			Uploaded: time.Now().UTC(),
		})
	if err != nil {
		log.Warn("durable upload failed, keeping transient URL",
			zap.String("task_id", task.ID),
			zap.Error(err),
		)
		return
	}

	now := time.Now().UTC()
	if kind == "video" {
		o.state.UpdateVideo(task.ID, func(vid *canvas.PlacedVideo) {
			vid.FullSizeSrc = asset.URL
			vid.AssetID = asset.ID
			vid.AssetSyncedAt = now
		})
	} else {
		o.state.UpdateImage(task.ID, func(img *canvas.PlacedImage) {
			img.FullSizeSrc = asset.URL
			img.AssetID = asset.ID
			img.AssetSyncedAt = now
		})
	}
	o.notifier.Publish(Event{Type: EventAssetPersisted, TaskID: task.ID, BatchKey: task.BatchKey})
}

// settleImageError converts a failed placeholder into an error overlay and
// refunds the item's quota. One item's failure never touches its siblings.
func (o *Orchestrator) settleImageError(userID string, task *Task, err error, log *logging.Logger) {
	if errors.Is(err, context.Canceled) {
		o.settleCanceled(userID, task, quota.KindImage, log)
		return
	}

	errKind := provider.Classify(err)
	label := errorLabel(errKind)
	log.Warn("image task failed",
		zap.String("task_id", task.ID),
		zap.String("classification", string(errKind)),
		zap.Error(err),
	)

	overlay, overlayErr := RenderErrorOverlay(int(task.Width), int(task.Height), label)
	if overlayErr != nil {
		log.Warn("failed to render error overlay", zap.Error(overlayErr))
	}
	o.state.UpdateImage(task.ID, func(img *canvas.PlacedImage) {
		img.IsLoading = false
		img.HasGenerationError = true
		img.ErrorLabel = label
		if overlay != "" {
			img.Src = overlay
		}
	})

	o.refund(userID, quota.KindImage, task.ID, log)
	o.settle(task, errKind)
}

// settleVideoError is the video counterpart of settleImageError.
func (o *Orchestrator) settleVideoError(userID string, task *Task, err error, log *logging.Logger) {
	if errors.Is(err, context.Canceled) {
		o.settleCanceled(userID, task, quota.KindVideo, log)
		return
	}

	errKind := provider.Classify(err)
	label := errorLabel(errKind)
	log.Warn("video task failed",
		zap.String("task_id", task.ID),
		zap.String("classification", string(errKind)),
		zap.Error(err),
	)

	o.state.UpdateVideo(task.ID, func(vid *canvas.PlacedVideo) {
		vid.IsLoading = false
		vid.HasGenerationError = true
		vid.ErrorLabel = label
	})

	o.refund(userID, quota.KindVideo, task.ID, log)
	o.settle(task, errKind)
}

// settleCanceled settles a task whose placeholder was deleted mid-flight.
// The element is already gone; the reservation goes back.
func (o *Orchestrator) settleCanceled(userID string, task *Task, kind quota.Kind, log *logging.Logger) {
	log.Debug("task canceled", zap.String("task_id", task.ID))
	o.refund(userID, kind, task.ID, log)
	o.settle(task, provider.ErrorKind(""))
}

// settle removes the task from the registry and, when it was the last one in
// its batch, completes the batch. The registry scan guarantees the batch
// completion fires exactly once no matter the settlement order.
func (o *Orchestrator) settle(task *Task, errKind provider.ErrorKind) {
	prefix := BatchPrefix(task.Kind, task.BatchKey)
	remaining := o.registry.Settle(task.ID, prefix)

	o.notifier.Publish(Event{
		Type: EventTaskSettled, TaskID: task.ID,
		BatchKey: task.BatchKey, ErrKind: errKind,
	})

	if remaining == 0 {
		o.completeBatch(task.Kind, task.BatchKey)
	}
}

// completeBatch runs once per batch, after the final settlement: clears the
// selection, pushes one history entry for the whole batch when anything
// succeeded, and hands the clean snapshot to the persistence mirror.
// Pure-failure batches produce no history entry; an all-overlay transition
// is not a meaningful undoable edit.
func (o *Orchestrator) completeBatch(kind TaskKind, batchKey string) {
	o.state.ClearSelection()
	snap := o.state.CleanSnapshot()

	if batchHasSuccess(snap, BatchPrefix(kind, batchKey)) {
		o.history.Push(snap)
	}

	o.notifier.Publish(Event{Type: EventBatchComplete, BatchKey: batchKey})
	if o.onSync != nil {
		o.onSync(snap)
	}
}

// triggerSync hands the current clean snapshot to the persistence mirror,
// used after undo/redo where no batch settlement fires.
func (o *Orchestrator) triggerSync() {
	if o.onSync != nil {
		o.onSync(o.state.CleanSnapshot())
	}
}

// batchHasSuccess reports whether any element of the batch settled cleanly.
func batchHasSuccess(snap canvas.Snapshot, prefix string) bool {
	for _, img := range snap.Images {
		if InBatch(img.ID, prefix) && img.Settled() {
			return true
		}
	}
	for _, vid := range snap.Videos {
		if InBatch(vid.ID, prefix) && vid.Settled() {
			return true
		}
	}
	return false
}

// refund gives one item's reservation back. Best-effort: a failed refund is
// logged, never retried, and never masks the original error.
func (o *Orchestrator) refund(userID string, kind quota.Kind, taskID string, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := o.ledger.Refund(ctx, userID, kind, 1); err != nil {
		log.Warn("quota refund failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return
	}
	o.notifier.Publish(Event{Type: EventQuotaChanged, Units: -1})
}

// applyPreview fetches the source image, renders a pixelated preview, and
// applies it to every placeholder in the batch that has not yet received a
// streaming frame. Best-effort: any failure just leaves the plain
// placeholder.
func (o *Orchestrator) applyPreview(sourceURL string, taskIDs []string, log *logging.Logger) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := o.fetchSource(ctx, sourceURL)
	if err != nil {
		log.Debug("preview fetch skipped", zap.Error(err))
		return
	}
	img, err := DecodePreviewSource(data)
	if err != nil {
		log.Debug("preview decode skipped", zap.Error(err))
		return
	}
	preview, err := PixelatedPreview(img, o.config.PreviewBlocks)
	if err != nil {
		log.Debug("preview render skipped", zap.Error(err))
		return
	}

	for _, id := range taskIDs {
		o.state.UpdateImage(id, func(el *canvas.PlacedImage) {
			if el.IsLoading && el.Src == "" {
				el.Src = preview
			}
		})
	}
}

func (o *Orchestrator) fetchSource(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation: source fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

func (o *Orchestrator) taskPrompt(task *Task) string {
	if task.VariationLabel == "" {
		return task.Prompt
	}
	if task.Prompt == "" {
		return task.VariationLabel
	}
	return task.Prompt + ", " + task.VariationLabel
}

func (o *Orchestrator) trackCancel(taskID string, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels[taskID] = cancel
}

func (o *Orchestrator) clearCancel(taskID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, taskID)
}

func (o *Orchestrator) cancelTask(taskID string) {
	o.mu.Lock()
	cancel := o.cancels[taskID]
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// errorLabel maps a classified failure to the short label shown on the
// canvas. Raw exception text never reaches the user.
func errorLabel(kind provider.ErrorKind) string {
	switch kind {
	case provider.ErrContentModeration:
		return "Content Blocked"
	case provider.ErrRateLimit:
		return "Rate Limited"
	case provider.ErrNotFound:
		return "Result Unavailable"
	case provider.ErrServer:
		return "Provider Error"
	default:
		return "Network Error"
	}
}

// truncateText shortens text for log previews.
func truncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
