package main

import (
	"errors"
	"path/filepath"
	"testing"

	"canvas_backend/core"
	"canvas_backend/logging"
)

func TestRun_FailsWithoutPlanCatalog(t *testing.T) {
	t.Setenv("PLANS_PATH", "")
	t.Setenv("JWT_SIGNING_KEY", "test-key")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "engine.db"))

	logger, err := logging.NewLogger(true, filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	err = run(logger, true)
	if err == nil {
		t.Fatal("run should fail without PLANS_PATH")
	}

	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %T: %v", err, err)
	}
	if cfgErr.Code != core.ErrCodeMissingConfig {
		t.Errorf("Expected code %s, got %s", core.ErrCodeMissingConfig, cfgErr.Code)
	}
}

func TestRun_FailsWithoutSigningKey(t *testing.T) {
	t.Setenv("PLANS_PATH", "plans.example.yaml")
	t.Setenv("JWT_SIGNING_KEY", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "engine.db"))

	logger, err := logging.NewLogger(true, filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	err = run(logger, true)
	if err == nil {
		t.Fatal("run should fail without JWT_SIGNING_KEY")
	}
}
