package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultFillsEverySetting(t *testing.T) {
	cfg := Default()

	if cfg.StorePath != "dublin-events.db" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.RunTimeout != 15*time.Minute {
		t.Errorf("RunTimeout = %v", cfg.RunTimeout)
	}
	if cfg.Pacing.PerSecond != 0.5 {
		t.Errorf("Pacing.PerSecond = %v", cfg.Pacing.PerSecond)
	}
	if cfg.Sources.Ticketmaster.City != "Dublin" {
		t.Errorf("Ticketmaster.City = %q", cfg.Sources.Ticketmaster.City)
	}
	if cfg.Sources.Whelans.BaseURL == "" {
		t.Error("Whelans.BaseURL empty")
	}
	if cfg.Media.BaseURL == "" {
		t.Error("Media.BaseURL empty")
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
store_path: /tmp/test.db
run_timeout: 2m
pacing:
  per_second: 1.5
  retries: 3
sources:
  whelans:
    base_url: http://localhost:9999
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.StorePath != "/tmp/test.db" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.RunTimeout != 2*time.Minute {
		t.Errorf("RunTimeout = %v", cfg.RunTimeout)
	}
	if cfg.Pacing.Retries != 3 {
		t.Errorf("Pacing.Retries = %d", cfg.Pacing.Retries)
	}
	if cfg.Sources.Whelans.BaseURL != "http://localhost:9999" {
		t.Errorf("Whelans.BaseURL = %q", cfg.Sources.Whelans.BaseURL)
	}
	// Settings the file omits still default.
	if cfg.Sources.Ticketmaster.City != "Dublin" {
		t.Errorf("Ticketmaster.City = %q", cfg.Sources.Ticketmaster.City)
	}
}

func TestLoadAppliesCredentialEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  ticketmaster:\n    api_key: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TICKETMASTER_API_KEY", "from-env")
	t.Setenv("MEDIA_API_KEY", "media-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources.Ticketmaster.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want env override", cfg.Sources.Ticketmaster.APIKey)
	}
	if cfg.Media.APIKey != "media-env" {
		t.Errorf("Media.APIKey = %q", cfg.Media.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
