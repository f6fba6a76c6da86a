package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Project.Name = "demo"
	cfg.Context.RecentChanges = 25

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Project.Name != "demo" {
		t.Errorf("Project.Name: got %q, want %q", loaded.Project.Name, "demo")
	}
	if loaded.Context.RecentChanges != 25 {
		t.Errorf("Context.RecentChanges: got %d, want 25", loaded.Context.RecentChanges)
	}
}

func TestDefaultConfigContextLimits(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Context.RecentChanges != 10 {
		t.Errorf("default RecentChanges: got %d, want 10", cfg.Context.RecentChanges)
	}
	if cfg.Context.TimeoutMs != 5000 {
		t.Errorf("default TimeoutMs: got %d, want 5000", cfg.Context.TimeoutMs)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestReadConfigPartialFile(t *testing.T) {
	// A config written by an older version without newer sections
	// should still parse.
	tmpDir := t.TempDir()
	oldConfig := `version: 1
project:
  name: legacy
`
	configPath := filepath.Join(tmpDir, ".tars")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg.Project.Name != "legacy" {
		t.Errorf("Project.Name: got %q, want %q", cfg.Project.Name, "legacy")
	}
}
