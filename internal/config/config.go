// Package config loads server configuration from an optional TOML file,
// overridden by environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port            string   `toml:"port"`
	BaseURL         string   `toml:"base_url"` // external URL, used for report share links
	ViewportWidth   int      `toml:"viewport_width"`
	CacheBackend    string   `toml:"cache_backend"` // "memory" or "redis"
	RedisURL        string   `toml:"redis_url"`
	MaxCacheEntries int      `toml:"max_cache_entries"`
	ReportTTL       Duration `toml:"report_ttl"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	LogLevel        string   `toml:"log_level"`
}

// Duration wraps time.Duration so TOML files can say "1h30m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Port:            "8080",
		BaseURL:         "",
		ViewportWidth:   375,
		CacheBackend:    "memory",
		MaxCacheEntries: 1000,
		ReportTTL:       Duration(1 * time.Hour),
		MaxBodyBytes:    1 << 20, // 1MB of HTML is plenty for a single page
		LogLevel:        "info",
	}
}

// Load reads the TOML file at path (skipped when absent), then applies
// environment overrides. An empty path falls back to AUDIT_CONFIG or
// ./audit.toml.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("AUDIT_CONFIG")
	}
	if path == "" {
		path = "audit.toml"
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		slog.Debug("config file not found, using defaults", "path", path)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("VIEWPORT_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ViewportWidth = n
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.CacheBackend = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("REPORT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ReportTTL = Duration(d)
		}
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
