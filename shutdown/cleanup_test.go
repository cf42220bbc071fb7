package shutdown

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestCleanupStaleUploads_RemovesPartialFiles(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assetsDir := t.TempDir()

	// Partial uploads left behind by interrupted writes
	staleFiles := []string{
		".upload-abc123",
		".upload-def456",
		".upload-ghi789",
	}
	for _, f := range staleFiles {
		path := filepath.Join(assetsDir, f)
		if err := os.WriteFile(path, []byte("partial content"), 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", f, err)
		}
	}

	// A completed asset that should NOT be deleted
	keepFile := filepath.Join(assetsDir, "task-1.png")
	if err := os.WriteFile(keepFile, []byte("keep this"), 0644); err != nil {
		t.Fatalf("Failed to create keep file: %v", err)
	}

	cleanupFn := CleanupStaleUploads(logger, assetsDir)
	err := cleanupFn(context.Background())
	if err != nil {
		t.Errorf("CleanupStaleUploads returned unexpected error: %v", err)
	}

	for _, f := range staleFiles {
		path := filepath.Join(assetsDir, f)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Stale file %s should have been deleted", f)
		}
	}

	if _, err := os.Stat(keepFile); os.IsNotExist(err) {
		t.Error("Completed asset should not have been deleted")
	}
}

func TestCleanupStaleUploads_WalksSubdirectories(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// The local store keys assets under {userID}/{kind}/ subdirectories,
	// so partial uploads can sit anywhere in the tree.
	assetsDir := t.TempDir()
	subDir := filepath.Join(assetsDir, "user-1", "image")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create subdirectory: %v", err)
	}

	nested := filepath.Join(subDir, ".upload-nested")
	if err := os.WriteFile(nested, []byte("partial"), 0644); err != nil {
		t.Fatalf("Failed to create nested stale file: %v", err)
	}
	keep := filepath.Join(subDir, "task-2.png")
	if err := os.WriteFile(keep, []byte("asset"), 0644); err != nil {
		t.Fatalf("Failed to create asset file: %v", err)
	}

	cleanupFn := CleanupStaleUploads(logger, assetsDir)
	if err := cleanupFn(context.Background()); err != nil {
		t.Errorf("CleanupStaleUploads returned error: %v", err)
	}

	if _, err := os.Stat(nested); !os.IsNotExist(err) {
		t.Error("Nested stale upload should have been deleted")
	}
	if _, err := os.Stat(keep); os.IsNotExist(err) {
		t.Error("Completed asset in subdirectory should not have been deleted")
	}
}

func TestCleanupStaleUploads_HandlesEmptyDirectory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assetsDir := t.TempDir()

	cleanupFn := CleanupStaleUploads(logger, assetsDir)
	err := cleanupFn(context.Background())
	if err != nil {
		t.Errorf("CleanupStaleUploads on empty directory returned error: %v", err)
	}

	// Directory should still exist
	if _, err := os.Stat(assetsDir); os.IsNotExist(err) {
		t.Error("Directory should still exist after cleanup")
	}
}

func TestCleanupStaleUploads_HandlesMissingDirectory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	nonExistentDir := filepath.Join(t.TempDir(), "does_not_exist")

	cleanupFn := CleanupStaleUploads(logger, nonExistentDir)
	err := cleanupFn(context.Background())
	if err != nil {
		t.Errorf("CleanupStaleUploads on missing directory returned error: %v", err)
	}
}

func TestCleanupSyncScratch_RemovesScratchFiles(t *testing.T) {
	logger := zaptest.NewLogger(t)

	syncDir := t.TempDir()

	scratch := filepath.Join(syncDir, ".sync-12345")
	if err := os.WriteFile(scratch, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create scratch file: %v", err)
	}
	snapshot := filepath.Join(syncDir, "project-1.json")
	if err := os.WriteFile(snapshot, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create snapshot file: %v", err)
	}

	cleanupFn := CleanupSyncScratch(logger, syncDir)
	err := cleanupFn(context.Background())
	if err != nil {
		t.Errorf("CleanupSyncScratch returned unexpected error: %v", err)
	}

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("Scratch file should have been deleted")
	}
	if _, err := os.Stat(snapshot); os.IsNotExist(err) {
		t.Error("Snapshot file should not have been deleted")
	}
}

func TestCleanupStaleUploads_RespectsContextCancellation(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assetsDir := t.TempDir()
	for i := 0; i < 10; i++ {
		path := filepath.Join(assetsDir, ".upload-"+string(rune('a'+i)))
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cleanupFn := CleanupStaleUploads(logger, assetsDir)
	err := cleanupFn(ctx)

	// Should return nil (cleanup doesn't block on cancellation)
	if err != nil {
		t.Errorf("CleanupStaleUploads with cancelled context returned error: %v", err)
	}
}

func TestCleanupStaleUploads_ReturnsShutdownFunc(t *testing.T) {
	logger := zaptest.NewLogger(t)
	assetsDir := t.TempDir()

	// Verify return type is compatible with core.ShutdownFunc
	fn := CleanupStaleUploads(logger, assetsDir)

	err := fn(context.Background())
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// ============================================================================
// Integration Tests - Testing with shutdown.Manager
// ============================================================================

func TestCleanupStaleUploads_IntegrationWithManager(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assetsDir := t.TempDir()

	staleFile := filepath.Join(assetsDir, ".upload-integration")
	if err := os.WriteFile(staleFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create stale file: %v", err)
	}

	manager := NewManager(logger, WithTimeout(5*time.Second))
	manager.Register("cleanup-uploads", 45, CleanupStaleUploads(logger, assetsDir))

	err := manager.Shutdown()
	if err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}

	if _, err := os.Stat(staleFile); !os.IsNotExist(err) {
		t.Error("Stale file should have been cleaned up during shutdown")
	}
}

func TestCleanupStaleUploads_ExecutesInPriorityOrder(t *testing.T) {
	logger := zaptest.NewLogger(t)

	assetsDir := t.TempDir()

	staleFile := filepath.Join(assetsDir, ".upload-order-test")
	if err := os.WriteFile(staleFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create stale file: %v", err)
	}

	var executionOrder []string

	manager := NewManager(logger, WithTimeout(5*time.Second))

	// Register cleanup with high priority (executes last)
	manager.Register("cleanup-uploads", 45, func(ctx context.Context) error {
		executionOrder = append(executionOrder, "cleanup-uploads")
		return CleanupStaleUploads(logger, assetsDir)(ctx)
	})

	// Register another handler with lower priority (executes first)
	manager.Register("drain-generation", 10, func(ctx context.Context) error {
		executionOrder = append(executionOrder, "drain-generation")
		return nil
	})

	err := manager.Shutdown()
	if err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}

	if len(executionOrder) != 2 {
		t.Fatalf("Expected 2 handlers executed, got %d", len(executionOrder))
	}
	if executionOrder[0] != "drain-generation" {
		t.Errorf("Expected drain-generation first, got %s", executionOrder[0])
	}
	if executionOrder[1] != "cleanup-uploads" {
		t.Errorf("Expected cleanup-uploads second, got %s", executionOrder[1])
	}

	if _, err := os.Stat(staleFile); !os.IsNotExist(err) {
		t.Error("Stale file should have been cleaned up")
	}
}
