package runtimecfg

import (
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.Execution.GCThreshold != 20 {
		t.Errorf("GCThreshold = %d, want 20", cfg.Execution.GCThreshold)
	}
	if cfg.Execution.MaxStackDepth != 256 {
		t.Errorf("MaxStackDepth = %d, want 256", cfg.Execution.MaxStackDepth)
	}
}

func TestLoadFromMissingFileReturnsDefault(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Execution.GCThreshold != Default().Execution.GCThreshold {
		t.Errorf("expected defaults when file is missing")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kodit.toml")
	cfg := Default()
	cfg.Execution.GCThreshold = 42
	cfg.Execution.Verbose = true

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Execution.GCThreshold != 42 {
		t.Errorf("GCThreshold = %d, want 42", loaded.Execution.GCThreshold)
	}
	if !loaded.Execution.Verbose {
		t.Errorf("Verbose = false, want true")
	}
}
