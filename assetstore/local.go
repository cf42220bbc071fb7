package assetstore

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"canvas_backend/core"
	"canvas_backend/logging"
)

// LocalStore writes assets into a directory on disk. It is the development
// backend; the returned URLs are file paths served by whatever static file
// host fronts the assets directory.
type LocalStore struct {
	dir        string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewLocalStore builds the directory-backed store, creating the root
// directory if it does not exist.
func NewLocalStore(cfg *core.Config, logger *logging.Logger) (*LocalStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assetstore: config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("assetstore: logger cannot be nil")
	}
	if cfg.AssetsDir == "" {
		return nil, core.ErrMissingConfig("ASSETS_DIR")
	}
	if err := os.MkdirAll(cfg.AssetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("assetstore: failed to create assets directory: %w", err)
	}

	return &LocalStore{
		dir:        cfg.AssetsDir,
		baseURL:    strings.TrimSuffix(cfg.S3PublicBaseURL, "/"),
		httpClient: core.GetHTTPClient(cfg, cfg.UploadTimeout),
		logger:     logger.Named("assetstore.local"),
	}, nil
}

// Upload fetches the source if needed and writes it under the assets
// directory. The write goes through a temp file and rename so a crash never
// leaves a truncated asset behind.
func (s *LocalStore) Upload(ctx context.Context, src Source, meta Metadata) (*Asset, error) {
	data, contentType, err := materialize(ctx, s.httpClient, src)
	if err != nil {
		return nil, &UploadError{TaskID: meta.TaskID, Err: err}
	}

	key := objectKey(meta, contentType)
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: mkdir: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: temp file: %w", err)}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: write: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: close: %w", err)}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: rename: %w", err)}
	}

	s.logger.Debug("Wrote asset to local store",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)

	url := path
	if s.baseURL != "" {
		url = s.baseURL + "/" + key
	}
	return &Asset{ID: key, URL: url}, nil
}
