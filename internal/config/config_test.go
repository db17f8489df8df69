package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ViewportWidth != 375 {
		t.Errorf("viewport width = %d", cfg.ViewportWidth)
	}
	if cfg.CacheBackend != "memory" {
		t.Errorf("cache backend = %q", cfg.CacheBackend)
	}
	if time.Duration(cfg.ReportTTL) != time.Hour {
		t.Errorf("report ttl = %v", time.Duration(cfg.ReportTTL))
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want default", cfg.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.toml")
	content := `
port = "9090"
viewport_width = 768
cache_backend = "redis"
redis_url = "redis://localhost:6379/0"
report_ttl = "30m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ViewportWidth != 768 {
		t.Errorf("viewport width = %d", cfg.ViewportWidth)
	}
	if cfg.CacheBackend != "redis" {
		t.Errorf("cache backend = %q", cfg.CacheBackend)
	}
	if time.Duration(cfg.ReportTTL) != 30*time.Minute {
		t.Errorf("report ttl = %v", time.Duration(cfg.ReportTTL))
	}
	// Unset fields keep their defaults
	if cfg.MaxCacheEntries != 1000 {
		t.Errorf("max cache entries = %d, want default", cfg.MaxCacheEntries)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.toml")
	if err := os.WriteFile(path, []byte("port = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted a malformed file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("VIEWPORT_WIDTH", "414")
	t.Setenv("REPORT_TTL", "15m")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "3000" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.ViewportWidth != 414 {
		t.Errorf("viewport width = %d", cfg.ViewportWidth)
	}
	if time.Duration(cfg.ReportTTL) != 15*time.Minute {
		t.Errorf("report ttl = %v", time.Duration(cfg.ReportTTL))
	}
}

func TestEnvIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("VIEWPORT_WIDTH", "not-a-number")
	t.Setenv("MAX_BODY_BYTES", "-5")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ViewportWidth != 375 {
		t.Errorf("viewport width = %d, want default", cfg.ViewportWidth)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("max body bytes = %d, want default", cfg.MaxBodyBytes)
	}
}
