package core

import (
	"crypto/tls"
	"net/http"
	"time"
)

// Config holds all runtime configuration for the generation engine, loaded
// from environment variables (optionally seeded from a .env file by the
// caller via godotenv).
type Config struct {
	// DevMode enables debug logging and human-readable console output
	DevMode bool
	// LogFile is the rotating log file path
	LogFile string

	// DBPath is the SQLite database file backing the quota ledger
	DBPath string
	// MigrationsPath is the golang-migrate source URL (e.g. "file://db/migrations")
	MigrationsPath string
	// PlansPath is the YAML plan catalog. Mandatory: there is no built-in
	// fallback limit table.
	PlansPath string

	// OpenAIAPIKey authenticates against the generation provider
	OpenAIAPIKey string
	// OpenAIImageModel is the image model id (default: dall-e-3)
	OpenAIImageModel string
	// ImageAPIURL overrides the provider endpoint (default: api.openai.com)
	ImageAPIURL string
	// VideoAPIURL is the submit-and-poll video API base; video generation is
	// disabled when empty
	VideoAPIURL string
	// VideoModel is the model id used for image-to-video requests
	VideoModel string

	// AITimeout bounds a single provider call
	AITimeout time.Duration
	// ProbeTimeout bounds the result-URL loadability check
	ProbeTimeout time.Duration
	// UploadTimeout bounds a single durable asset upload
	UploadTimeout time.Duration

	// AssetStore selects the durable store backend: "s3" or "local"
	AssetStore string
	// AssetsDir is the local asset directory when AssetStore is "local"
	AssetsDir string
	// S3Bucket / S3Region / S3Endpoint configure the S3 uploader
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	// S3PublicBaseURL is prepended to object keys to form public URLs
	S3PublicBaseURL string

	// ProjectID keys the local snapshot file for this canvas
	ProjectID string
	// SyncDir is the local-first snapshot mirror directory
	SyncDir string
	// SyncDebounce is the settle delay before a snapshot write
	SyncDebounce time.Duration

	// HistoryLimit caps the undo/redo stack length
	HistoryLimit int
	// MaxBatchSize caps variation batch size per request
	MaxBatchSize int

	// JWTSigningKey verifies identity tokens (HS256)
	JWTSigningKey string

	// AllowSelfSignedCerts disables TLS verification for self-hosted endpoints
	AllowSelfSignedCerts bool
}

// LoadConfig reads configuration from the environment and validates it.
//
// Required values: DB_PATH has a default, PLANS_PATH and JWT_SIGNING_KEY do
// not. Provider and asset-store credentials are validated by their own
// constructors so that partial deployments (e.g. local asset store, no S3)
// stay possible.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DevMode: ParseBoolEnv("DEV_MODE", false),
		LogFile: GetEnvOrDefault("LOG_FILE", "engine.log"),

		DBPath:         GetEnvOrDefault("DB_PATH", "engine.db"),
		MigrationsPath: GetEnvOrDefault("MIGRATIONS_PATH", "file://db/migrations"),
		PlansPath:      GetEnvOrDefault("PLANS_PATH", ""),

		OpenAIAPIKey:     GetEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIImageModel: GetEnvOrDefault("OPENAI_IMAGE_MODEL", "dall-e-3"),
		ImageAPIURL:      GetEnvOrDefault("IMAGE_API_URL", ""),
		VideoAPIURL:      GetEnvOrDefault("VIDEO_API_URL", ""),
		VideoModel:       GetEnvOrDefault("VIDEO_MODEL", "sora-1"),

		AITimeout:     ParseDurationEnv("AI_TIMEOUT", 120*time.Second),
		ProbeTimeout:  ParseDurationEnv("PROBE_TIMEOUT", 15*time.Second),
		UploadTimeout: ParseDurationEnv("UPLOAD_TIMEOUT", 60*time.Second),

		AssetStore:      GetEnvOrDefault("ASSET_STORE", "local"),
		AssetsDir:       GetEnvOrDefault("ASSETS_DIR", "assets"),
		S3Bucket:        GetEnvOrDefault("S3_BUCKET", ""),
		S3Region:        GetEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:      GetEnvOrDefault("S3_ENDPOINT", ""),
		S3PublicBaseURL: GetEnvOrDefault("S3_PUBLIC_BASE_URL", ""),

		ProjectID:    GetEnvOrDefault("PROJECT_ID", "default"),
		SyncDir:      GetEnvOrDefault("SYNC_DIR", "sync"),
		SyncDebounce: ParseDurationEnv("SYNC_DEBOUNCE", 800*time.Millisecond),

		HistoryLimit: ParseIntEnv("HISTORY_LIMIT", 50),
		MaxBatchSize: ParseIntEnv("MAX_BATCH_SIZE", 12),

		JWTSigningKey: GetEnvOrDefault("JWT_SIGNING_KEY", ""),

		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
	}

	if cfg.PlansPath == "" {
		return nil, ErrMissingConfig("PLANS_PATH")
	}
	if cfg.JWTSigningKey == "" {
		return nil, ErrMissingConfig("JWT_SIGNING_KEY")
	}
	if cfg.HistoryLimit < 1 {
		return nil, ErrInvalidConfig("HISTORY_LIMIT", "must be at least 1")
	}
	if cfg.MaxBatchSize < 1 {
		return nil, ErrInvalidConfig("MAX_BATCH_SIZE", "must be at least 1")
	}
	if cfg.AssetStore != "local" && cfg.AssetStore != "s3" {
		return nil, ErrInvalidConfig("ASSET_STORE", "must be \"local\" or \"s3\"")
	}
	if cfg.AssetStore == "s3" && cfg.S3Bucket == "" {
		return nil, ErrMissingConfig("S3_BUCKET")
	}

	return cfg, nil
}

// GetHTTPClient returns an HTTP client with the given timeout, honoring the
// self-signed certificate setting.
func GetHTTPClient(cfg *Config, timeout time.Duration) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if cfg.AllowSelfSignedCerts {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

// GetDefaultHTTPClient returns an HTTP client with a 30 second timeout.
func GetDefaultHTTPClient(cfg *Config) *http.Client {
	return GetHTTPClient(cfg, 30*time.Second)
}
