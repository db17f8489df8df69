package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// auditAPIResponse is the JSON API's envelope. ReportURL is only set when
// the caller asked for the report to be stored.
type auditAPIResponse struct {
	*Report
	ReportURL string `json:"report_url,omitempty"`
}

// auditAPIHandler analyzes a document posted as the raw request body and
// returns the result as JSON. Markdown input is signaled either by a
// text/markdown content type or by ?format=markdown. With ?store=1 the
// report is also persisted and a shareable URL returned.
func auditAPIHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger := LoggerFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Request body too large or unreadable", http.StatusBadRequest)
		return
	}
	source := string(body)
	if strings.TrimSpace(source) == "" {
		writeJSONError(w, http.StatusBadRequest, "empty document")
		return
	}

	contentType := r.Header.Get("Content-Type")
	markdown := r.URL.Query().Get("format") == "markdown" ||
		strings.HasPrefix(contentType, "text/markdown")

	sourceName := r.URL.Query().Get("name")
	if sourceName == "" {
		sourceName = "api submission"
	}

	report, err := runAudit(source, sourceName, markdown)
	if err != nil {
		logger.Error("api audit failed", "source_name", sourceName, "error", err)
		writeJSONError(w, http.StatusUnprocessableEntity, "document could not be analyzed")
		return
	}

	resp := auditAPIResponse{Report: report}
	if r.URL.Query().Get("store") == "1" {
		if err := saveReport(r.Context(), report); err != nil {
			logger.Error("failed to store api report", "report_id", report.ID, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "report could not be stored")
			return
		}
		resp.ReportURL = strings.TrimSuffix(appConfig.BaseURL, "/") + "/html/report/" + report.ID
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
