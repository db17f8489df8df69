package main

import (
	"log/slog"
	"net/http"
	"os"

	"audit-server/internal/config"
)

var appConfig config.Config

// limitBody wraps an HTTP handler to limit request body size
func limitBody(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// securityHeaders wraps an HTTP handler to add security headers
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content Security Policy - defense in depth against XSS from
		// audited documents echoed back in report previews
		// - default-src 'self': only load resources from same origin
		// - img-src * data:: report previews may reference remote images
		// - style-src 'self' 'unsafe-inline': sanitized previews keep inline styles
		// - frame-src 'self': the preview iframe is srcdoc, same origin
		csp := "default-src 'self'; " +
			"img-src * data:; " +
			"style-src 'self' 'unsafe-inline'; " +
			"frame-src 'self'; " +
			"script-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Referrer policy - don't leak report URLs to external sites
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

func main() {
	InitLogger()

	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	appConfig = cfg

	initTemplates()

	if err := initReportStore(cfg); err != nil {
		slog.Error("failed to initialize report store", "error", err)
		os.Exit(1)
	}
	defer closeReportStore()

	maxBody := cfg.MaxBodyBytes

	// Root path serves the submission form, everything else under / is 404
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			securityHeaders(htmlHomeHandler)(w, r)
		} else {
			http.NotFound(w, r)
		}
	})

	// HTML surface
	http.HandleFunc("/html/audit", securityHeaders(limitBody(htmlAuditHandler, maxBody)))
	http.HandleFunc("/html/report/", securityHeaders(htmlReportHandler))

	// JSON API (content negotiation handled internally)
	http.HandleFunc("/audit", limitBody(auditAPIHandler, maxBody))

	// Live re-audit channel
	http.HandleFunc("/ws/audit", wsAuditHandler)

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	slog.Info("starting server", "port", cfg.Port, "viewport_width", cfg.ViewportWidth)
	slog.Info("submission form ready", "url", "http://localhost:"+cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, RequestLoggingMiddleware(http.DefaultServeMux)); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
