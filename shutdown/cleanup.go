package shutdown

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"canvas_backend/core"

	"go.uber.org/zap"
)

// CleanupStaleUploads returns a shutdown function that removes partial upload
// files from the assets directory. The local asset store writes through
// ".upload-*" temp files and renames on success, so anything still matching
// that pattern at shutdown is an interrupted upload.
//
// Priority recommendation: 40+ (final cleanup, after services stopped)
//
// The cleanup function:
//   - Walks the assets directory for files matching ".upload-*"
//   - Logs each file removal (success or failure)
//   - Continues cleanup even if individual file removals fail
//   - Returns nil to avoid blocking shutdown (errors are logged)
//
// Usage:
//
//	manager.Register("cleanup-uploads", 45, shutdown.CleanupStaleUploads(logger, cfg.AssetsDir))
func CleanupStaleUploads(logger *zap.Logger, assetsDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		return cleanupStaleFiles(ctx, logger, assetsDir, ".upload-")
	}
}

// CleanupSyncScratch returns a shutdown function that removes ".sync-*"
// scratch files from the local sync directory. The mirror writes snapshots
// through these temp files and renames on success; survivors are leftovers
// from a crash mid-flush.
//
// Priority recommendation: 45+ (after the mirror itself has been closed)
//
// Usage:
//
//	manager.Register("cleanup-sync-scratch", 50, shutdown.CleanupSyncScratch(logger, cfg.SyncDir))
func CleanupSyncScratch(logger *zap.Logger, syncDir string) core.ShutdownFunc {
	return func(ctx context.Context) error {
		return cleanupStaleFiles(ctx, logger, syncDir, ".sync-")
	}
}

// cleanupStaleFiles walks dir and removes regular files whose base name starts
// with prefix. It returns nil even if some files fail to delete (errors are
// logged) so cleanup never blocks shutdown.
func cleanupStaleFiles(ctx context.Context, logger *zap.Logger, dir, prefix string) error {
	logger.Debug("Starting stale file cleanup",
		zap.String("directory", dir),
		zap.String("prefix", prefix),
	)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("Directory does not exist, nothing to clean up",
			zap.String("directory", dir),
		)
		return nil
	}

	var matches []string
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip unreadable entries rather than aborting cleanup.
			return nil
		}
		if !d.IsDir() && strings.HasPrefix(d.Name(), prefix) {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil {
		logger.Error("Failed to scan for stale files",
			zap.String("directory", dir),
			zap.Error(walkErr),
		)
		// Return nil to not block shutdown
		return nil
	}

	if len(matches) == 0 {
		logger.Debug("No stale files to clean up")
		return nil
	}

	logger.Info("Cleaning up stale files",
		zap.Int("file_count", len(matches)),
	)

	var removedCount int
	var failedCount int

	for _, match := range matches {
		// Check context between file deletions
		select {
		case <-ctx.Done():
			logger.Warn("Shutdown context cancelled during cleanup",
				zap.Int("removed", removedCount),
				zap.Int("remaining", len(matches)-removedCount-failedCount),
			)
			return nil
		default:
		}

		if err := os.Remove(match); err != nil {
			failedCount++
			logger.Warn("Failed to remove stale file",
				zap.String("file", filepath.Base(match)),
				zap.Error(err),
			)
		} else {
			removedCount++
			logger.Debug("Removed stale file",
				zap.String("file", filepath.Base(match)),
			)
		}
	}

	logger.Info("Stale file cleanup complete",
		zap.Int("removed", removedCount),
		zap.Int("failed", failedCount),
	)

	return nil
}
