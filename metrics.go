package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

var serverStartTime = time.Now()

// HTTP metrics
var (
	httpRequestsTotal atomic.Int64
	httpErrorsTotal   atomic.Int64
)

// Audit metrics
var (
	auditsTotal        atomic.Int64
	auditFailuresTotal atomic.Int64
	auditSharedTotal   atomic.Int64 // deduplicated via singleflight
)

// Report store metrics
var (
	reportsStoredTotal atomic.Int64
	reportCacheHits    atomic.Int64
	reportCacheMisses  atomic.Int64
	cacheBackendType   = "memory"
)

// Live channel metrics
var (
	wsConnectionsActive atomic.Int64
)

// metricsHandler serves Prometheus-compatible metrics
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	// Build info metric
	fmt.Fprintf(w, "# HELP audit_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE audit_build_info gauge\n")
	fmt.Fprintf(w, "audit_build_info{cache_backend=%q,go_version=%q} 1\n\n", cacheBackendType, runtime.Version())

	// Process metrics
	fmt.Fprintf(w, "# HELP process_start_time_seconds Unix timestamp of process start\n")
	fmt.Fprintf(w, "# TYPE process_start_time_seconds gauge\n")
	fmt.Fprintf(w, "process_start_time_seconds %d\n\n", serverStartTime.Unix())

	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since process started\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n\n", time.Since(serverStartTime).Seconds())

	// Go runtime metrics
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Fprintf(w, "# HELP go_goroutines Number of active goroutines\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Currently allocated memory in bytes\n")
	fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP go_memstats_sys_bytes Total memory obtained from the OS\n")
	fmt.Fprintf(w, "# TYPE go_memstats_sys_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_sys_bytes %d\n\n", memStats.Sys)

	fmt.Fprintf(w, "# HELP go_gc_cycles_total Number of completed GC cycles\n")
	fmt.Fprintf(w, "# TYPE go_gc_cycles_total counter\n")
	fmt.Fprintf(w, "go_gc_cycles_total %d\n\n", memStats.NumGC)

	// HTTP metrics
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", httpRequestsTotal.Load())

	fmt.Fprintf(w, "# HELP http_errors_total Total number of HTTP 5xx errors\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total %d\n\n", httpErrorsTotal.Load())

	// Audit metrics
	fmt.Fprintf(w, "# HELP audits_total Total number of documents analyzed\n")
	fmt.Fprintf(w, "# TYPE audits_total counter\n")
	fmt.Fprintf(w, "audits_total %d\n\n", auditsTotal.Load())

	fmt.Fprintf(w, "# HELP audit_failures_total Documents that could not be rendered or analyzed\n")
	fmt.Fprintf(w, "# TYPE audit_failures_total counter\n")
	fmt.Fprintf(w, "audit_failures_total %d\n\n", auditFailuresTotal.Load())

	fmt.Fprintf(w, "# HELP audit_shared_total Audits shared between concurrent identical submissions\n")
	fmt.Fprintf(w, "# TYPE audit_shared_total counter\n")
	fmt.Fprintf(w, "audit_shared_total %d\n\n", auditSharedTotal.Load())

	// Report store metrics
	fmt.Fprintf(w, "# HELP reports_stored_total Reports written to the store\n")
	fmt.Fprintf(w, "# TYPE reports_stored_total counter\n")
	fmt.Fprintf(w, "reports_stored_total %d\n\n", reportsStoredTotal.Load())

	hits := reportCacheHits.Load()
	misses := reportCacheMisses.Load()
	fmt.Fprintf(w, "# HELP report_cache_hits_total Report lookups that found a stored report\n")
	fmt.Fprintf(w, "# TYPE report_cache_hits_total counter\n")
	fmt.Fprintf(w, "report_cache_hits_total %d\n\n", hits)

	fmt.Fprintf(w, "# HELP report_cache_misses_total Report lookups for missing or expired reports\n")
	fmt.Fprintf(w, "# TYPE report_cache_misses_total counter\n")
	fmt.Fprintf(w, "report_cache_misses_total %d\n\n", misses)

	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	fmt.Fprintf(w, "# HELP report_cache_hit_ratio Report cache hit ratio (0-1)\n")
	fmt.Fprintf(w, "# TYPE report_cache_hit_ratio gauge\n")
	fmt.Fprintf(w, "report_cache_hit_ratio %.4f\n\n", hitRatio)

	// Live channel metrics
	fmt.Fprintf(w, "# HELP ws_connections_active Number of active live-audit websocket connections\n")
	fmt.Fprintf(w, "# TYPE ws_connections_active gauge\n")
	fmt.Fprintf(w, "ws_connections_active %d\n", wsConnectionsActive.Load())
}
