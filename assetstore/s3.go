package assetstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"canvas_backend/core"
	"canvas_backend/logging"
)

// S3Store persists assets in an S3 or S3-compatible bucket (MinIO works with
// a custom endpoint). Credentials come from the default AWS provider chain.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	httpClient    *http.Client
	logger        *logging.Logger
}

// NewS3Store builds the S3 backend from the engine config.
func NewS3Store(ctx context.Context, cfg *core.Config, logger *logging.Logger) (*S3Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assetstore: config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("assetstore: logger cannot be nil")
	}
	if cfg.S3Bucket == "" {
		return nil, core.ErrMissingConfig("S3_BUCKET")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("assetstore: failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.S3PublicBaseURL, "/"),
		httpClient:    core.GetHTTPClient(cfg, cfg.UploadTimeout),
		logger:        logger.Named("assetstore.s3"),
	}, nil
}

// Upload fetches the source if needed and writes it to the bucket.
func (s *S3Store) Upload(ctx context.Context, src Source, meta Metadata) (*Asset, error) {
	data, contentType, err := materialize(ctx, s.httpClient, src)
	if err != nil {
		return nil, &UploadError{TaskID: meta.TaskID, Err: err}
	}

	key := objectKey(meta, contentType)
	start := time.Now()

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"user-id": meta.UserID,
			"task-id": meta.TaskID,
			"kind":    meta.Kind,
		},
	})
	if err != nil {
		return nil, &UploadError{TaskID: meta.TaskID, Err: fmt.Errorf("assetstore: put object: %w", err)}
	}

	s.logger.Debug("Uploaded asset to S3",
		zap.String("key", key),
		zap.Int("bytes", len(data)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return &Asset{ID: key, URL: s.publicURL(key)}, nil
}

func (s *S3Store) publicURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}

// materialize resolves a Source to raw bytes plus a content type. Bytes win
// over URL when both are set.
func materialize(ctx context.Context, client *http.Client, src Source) ([]byte, string, error) {
	if len(src.Bytes) > 0 {
		ct := src.ContentType
		if ct == "" {
			ct = http.DetectContentType(src.Bytes)
		}
		return src.Bytes, ct, nil
	}
	if src.URL == "" {
		return nil, "", fmt.Errorf("assetstore: source has neither URL nor bytes")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("assetstore: failed to build fetch request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("assetstore: fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("assetstore: fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("assetstore: failed to read body: %w", err)
	}

	ct := src.ContentType
	if ct == "" {
		ct = resp.Header.Get("Content-Type")
	}
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
