package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"audit-server/internal/audit"
	"audit-server/internal/cache"
	"audit-server/internal/config"
)

// Report is one stored analysis run: the aggregate result plus what the
// report page needs to show it.
type Report struct {
	ID         string        `json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	SourceName string        `json:"source_name"`
	Markdown   bool          `json:"markdown"`
	Result     *audit.Result `json:"result"`
	Preview    string        `json:"preview"` // sanitized document HTML
}

var (
	reportStore cache.Backend
	reportTTL   time.Duration
)

const reportKeyPrefix = "report:"

// initReportStore wires the configured cache backend for report storage.
func initReportStore(cfg config.Config) error {
	reportTTL = time.Duration(cfg.ReportTTL)

	switch cfg.CacheBackend {
	case "redis":
		backend, err := cache.NewRedis(cfg.RedisURL, "audit:")
		if err != nil {
			return fmt.Errorf("redis report store: %w", err)
		}
		reportStore = backend
		cacheBackendType = "redis"
		slog.Info("report store initialized", "backend", "redis")
	case "", "memory":
		reportStore = cache.NewMemory(cfg.MaxCacheEntries, 5*time.Minute)
		cacheBackendType = "memory"
		slog.Info("report store initialized", "backend", "memory", "max_entries", cfg.MaxCacheEntries)
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	return nil
}

func closeReportStore() {
	if reportStore != nil {
		reportStore.Close()
	}
}

func newReportID() string {
	return uuid.NewString()
}

func saveReport(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := reportStore.Set(ctx, reportKeyPrefix+report.ID, data, reportTTL); err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	reportsStoredTotal.Add(1)
	return nil
}

func loadReport(ctx context.Context, id string) (*Report, bool, error) {
	data, found, err := reportStore.Get(ctx, reportKeyPrefix+id)
	if err != nil {
		return nil, false, err
	}
	if !found {
		reportCacheMisses.Add(1)
		return nil, false, nil
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("decode report: %w", err)
	}
	reportCacheHits.Add(1)
	return &report, true, nil
}

// releaseReport removes a stored report. A visitor's previous report is
// released before its replacement is stored, never left to expiry alone.
func releaseReport(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := reportStore.Delete(ctx, reportKeyPrefix+id); err != nil {
		slog.Warn("failed to release report", "report_id", id, "error", err)
	}
}
