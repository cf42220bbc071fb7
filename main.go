package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"canvas_backend/assetstore"
	"canvas_backend/canvas"
	"canvas_backend/core"
	"canvas_backend/db"
	"canvas_backend/generation"
	"canvas_backend/history"
	"canvas_backend/identity"
	"canvas_backend/localsync"
	"canvas_backend/logging"
	"canvas_backend/metrics"
	"canvas_backend/provider"
	"canvas_backend/quota"
	"canvas_backend/shutdown"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	// Determine if running in development mode
	isDevelopment := os.Getenv("DEV_MODE") == "true"

	// Initialize structured logger early
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "engine.log"
	}
	logger, err := logging.NewLogger(isDevelopment, logFile)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Printf("Failed to sync logger: %v\n", syncErr)
		}
	}()

	if err := run(logger, isDevelopment); err != nil {
		logger.Error("Engine exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(core.ExitCodeError)
	}
}

func run(logger *logging.Logger, isDevelopment bool) error {
	config, err := core.LoadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger.Info("Configuration loaded",
		zap.String("db_path", config.DBPath),
		zap.String("plans_path", config.PlansPath),
		zap.String("asset_store", config.AssetStore),
		zap.String("sync_dir", config.SyncDir),
		zap.String("project_id", config.ProjectID),
		zap.Duration("ai_timeout", config.AITimeout),
		zap.Duration("sync_debounce", config.SyncDebounce),
		zap.Int("history_limit", config.HistoryLimit),
		zap.Int("max_batch_size", config.MaxBatchSize),
		zap.Bool("dev_mode", isDevelopment),
	)

	// Shutdown manager coordinates drain, flush and close on SIGINT/SIGTERM
	manager := shutdown.NewManager(logger.Zap(), shutdown.WithTimeout(60*time.Second))
	manager.Start()

	// Quota ledger: SQLite connection, schema migration, plan catalog
	conn, err := db.NewSQLiteConnectionWithDefaults(config.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	manager.Register("database", 30, func(ctx context.Context) error {
		return conn.Close()
	})

	if err := db.MigrateUpEmbedded(conn); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	catalog, err := quota.LoadCatalog(config.PlansPath)
	if err != nil {
		return core.ErrPlansMissing(config.PlansPath, err.Error())
	}
	logger.Info("Plan catalog loaded", zap.Strings("tiers", catalog.Keys()))

	ledger, err := quota.NewLedger(db.NewAccountStore(conn), catalog, logger)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}

	// Generation providers
	images, err := provider.NewOpenAIProvider(config)
	if err != nil {
		return fmt.Errorf("create image provider: %w", err)
	}
	var videos provider.Provider
	if config.VideoAPIURL != "" {
		vp, err := provider.NewHTTPVideoProvider(config, config.VideoAPIURL)
		if err != nil {
			return fmt.Errorf("create video provider: %w", err)
		}
		videos = vp
	} else {
		logger.Info("VIDEO_API_URL not set, video generation disabled")
	}

	// Durable asset store
	var uploader assetstore.Uploader
	switch config.AssetStore {
	case "s3":
		uploader, err = assetstore.NewS3Store(context.Background(), config, logger)
	default:
		uploader, err = assetstore.NewLocalStore(config, logger)
		manager.Register("cleanup-uploads", 45,
			shutdown.CleanupStaleUploads(logger.Zap(), config.AssetsDir))
	}
	if err != nil {
		return fmt.Errorf("create asset store: %w", err)
	}

	// Identity: JWT in production, a fixed user in dev mode
	var who identity.Provider
	if isDevelopment {
		who = &identity.StaticProvider{UserID: "dev-user"}
		logger.Warn("Dev mode: token verification disabled, acting as dev-user")
	} else {
		who, err = identity.NewJWTProvider(config.JWTSigningKey)
		if err != nil {
			return fmt.Errorf("create identity provider: %w", err)
		}
	}

	// Canvas state, seeded from the last mirrored snapshot when one exists
	state := canvas.NewState()

	mirror, err := localsync.NewMirror(
		localsync.Config{Dir: config.SyncDir, Debounce: config.SyncDebounce},
		logger,
		func(projectID string, snap canvas.Snapshot) {
			if projectID != config.ProjectID {
				return
			}
			logger.Info("External snapshot change, restoring canvas",
				zap.String("project_id", projectID),
			)
			state.Restore(snap)
		},
	)
	if err != nil {
		return fmt.Errorf("create sync mirror: %w", err)
	}
	manager.Register("sync-mirror", 25, func(ctx context.Context) error {
		return mirror.Close()
	})
	manager.Register("cleanup-sync-scratch", 50,
		shutdown.CleanupSyncScratch(logger.Zap(), config.SyncDir))

	if snap, err := mirror.Read(config.ProjectID); err == nil {
		state.Restore(snap)
		logger.Info("Restored canvas from local snapshot",
			zap.Int("images", len(snap.Images)),
			zap.Int("videos", len(snap.Videos)),
		)
	}

	hist := history.NewStack(state.Snapshot(), config.HistoryLimit)

	// Orchestrator wires the whole pipeline together
	orch, err := generation.NewOrchestrator(generation.Deps{
		Ledger:     ledger,
		State:      state,
		History:    hist,
		Images:     images,
		Videos:     videos,
		Uploader:   uploader,
		Identity:   who,
		Logger:     logger,
		HTTPClient: core.GetHTTPClient(config, config.ProbeTimeout),
		OnSync: func(snap canvas.Snapshot) {
			mirror.Write(config.ProjectID, snap)
		},
	}, generation.Config{
		MaxBatchSize:  config.MaxBatchSize,
		Placement:     generation.DefaultPlacementConfig(),
		UploadTimeout: config.UploadTimeout,
		PreviewBlocks: generation.DefaultPreviewBlocks,
	})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}
	manager.Register("drain-generation", 10, func(ctx context.Context) error {
		return orch.Drain(ctx)
	})

	// Metrics: consume lifecycle events off the notifier
	store := metrics.NewMetricsStore(metrics.DefaultStoreConfig(), time.Now())
	recorder := metrics.NewRecorder(store, orch.Notifier())
	manager.Register("metrics-recorder", 20, func(ctx context.Context) error {
		recorder.Stop()
		return nil
	})

	logger.Info("Generation engine running",
		zap.Bool("video_enabled", videos != nil),
	)

	// Block until a shutdown signal arrives, then run the cleanup sequence
	manager.Wait()
	return manager.Shutdown()
}
