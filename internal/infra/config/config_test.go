package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml here

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Download.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Download.Workers)
	}
	if cfg.Download.MinSplitSize != 2<<20 {
		t.Errorf("MinSplitSize = %d, want %d", cfg.Download.MinSplitSize, 2<<20)
	}
	if cfg.Download.RetryAttempts != 0 {
		t.Errorf("RetryAttempts = %d, want 0 (unlimited)", cfg.Download.RetryAttempts)
	}
	if cfg.Download.Timeout() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Download.Timeout())
	}
	if cfg.Download.ProgressInterval() != time.Second {
		t.Errorf("ProgressInterval = %v, want 1s", cfg.Download.ProgressInterval())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Store.SQLitePath != "gopull.db" {
		t.Errorf("SQLitePath = %q, want gopull.db", cfg.Store.SQLitePath)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
port: "9090"
download:
  workers: 3
  timeout_seconds: 30
  min_split_size: 1048576
  retry_attempts: 4
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Download.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Download.Workers)
	}
	if cfg.Download.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds = %d, want 30", cfg.Download.TimeoutSeconds)
	}
	if cfg.Download.MinSplitSize != 1<<20 {
		t.Errorf("MinSplitSize = %d, want %d", cfg.Download.MinSplitSize, 1<<20)
	}
	if cfg.Download.RetryAttempts != 4 {
		t.Errorf("RetryAttempts = %d, want 4", cfg.Download.RetryAttempts)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Download.OutDir != "." {
		t.Errorf("OutDir = %q, want .", cfg.Download.OutDir)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicitly named missing file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOPULL_DOWNLOAD_WORKERS", "9")
	t.Setenv("GOPULL_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Download.Workers != 9 {
		t.Errorf("Workers = %d, want 9 from env", cfg.Download.Workers)
	}
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want 7070 from env", cfg.Port)
	}
}

func TestValidateRepairsAndRejects(t *testing.T) {
	writeAndLoad := func(t *testing.T, body string) (*Config, error) {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return Load(path)
	}

	cfg, err := writeAndLoad(t, "download:\n  workers: -2\n  progress_interval_ms: 0\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Download.Workers != 5 {
		t.Errorf("Workers = %d, want repaired default 5", cfg.Download.Workers)
	}
	if cfg.Download.ProgressIntervalMS != 1000 {
		t.Errorf("ProgressIntervalMS = %d, want repaired default 1000", cfg.Download.ProgressIntervalMS)
	}

	if _, err := writeAndLoad(t, "download:\n  retry_attempts: -1\n"); err == nil {
		t.Error("expected error for negative retry_attempts")
	}
	if _, err := writeAndLoad(t, "download:\n  min_split_size: -5\n"); err == nil {
		t.Error("expected error for negative min_split_size")
	}
}
