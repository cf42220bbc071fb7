package quota

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCatalog(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testPlansYAML))
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}

	free, err := catalog.Get("free")
	if err != nil {
		t.Fatalf("Get(free) failed: %v", err)
	}
	if free.ImagesPerPeriod != 24 || free.VideosPerPeriod != 4 {
		t.Errorf("free plan = %+v, want 24/4", free)
	}

	pro, err := catalog.Get("pro")
	if err != nil {
		t.Fatalf("Get(pro) failed: %v", err)
	}
	if pro.ImagesPerPeriod != 480 || pro.VideosPerPeriod != 96 {
		t.Errorf("pro plan = %+v, want 480/96", pro)
	}
}

func TestCatalogGetUnknownTier(t *testing.T) {
	catalog, err := ParseCatalog([]byte(testPlansYAML))
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}

	_, err = catalog.Get("enterprise")
	var upe *UnknownPlanError
	if !errors.As(err, &upe) {
		t.Fatalf("expected UnknownPlanError, got %v", err)
	}
}

func TestParseCatalogRejectsEmpty(t *testing.T) {
	if _, err := ParseCatalog([]byte("plans: []")); err == nil {
		t.Error("expected error for empty catalog")
	}
}

func TestParseCatalogRejectsDuplicates(t *testing.T) {
	dup := `
plans:
  - key: free
    images_per_period: 24
    videos_per_period: 4
  - key: free
    images_per_period: 12
    videos_per_period: 3
`
	if _, err := ParseCatalog([]byte(dup)); err == nil {
		t.Error("expected error for duplicate plan keys")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	if err := os.WriteFile(path, []byte(testPlansYAML), 0644); err != nil {
		t.Fatalf("failed to write plans file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(catalog.Keys()) != 2 {
		t.Errorf("keys = %v, want 2 entries", catalog.Keys())
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing catalog file")
	}
}
