package main

import (
	"io"
	"net/http"
	"path"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// lastReportCookie remembers the visitor's current report so it can be
// released when a new audit replaces it.
const lastReportCookie = "last_report"

const maxUploadMemory = 1 << 20

func htmlHomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := homePageData{
		CSRFToken:     generateCSRFToken(visitorID(w, r)),
		Flash:         getFlashMessages(w, r),
		ViewportWidth: appConfig.ViewportWidth,
	}
	renderPage(w, compiledHomeTemplate, data)
}

func htmlAuditHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger := LoggerFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("failed to parse audit form", "error", err)
		redirectWithError(w, r, "/", "Could not read the submitted form")
		return
	}

	visitor := visitorID(w, r)
	if !validateCSRFToken(visitor, r.FormValue("csrf_token")) {
		logger.Warn("csrf validation failed on audit submission")
		redirectWithError(w, r, "/", "Form expired, please try again")
		return
	}

	source, sourceName, markdown, err := readSubmission(r)
	if err != nil {
		logger.Warn("failed to read submitted document", "error", err)
		redirectWithError(w, r, "/", "Could not read the uploaded file")
		return
	}
	if strings.TrimSpace(source) == "" {
		redirectWithError(w, r, "/", "Paste some HTML or upload a file first")
		return
	}

	report, err := runAudit(source, sourceName, markdown)
	if err != nil {
		logger.Error("audit failed", "source_name", sourceName, "error", err)
		redirectWithError(w, r, "/", "The document could not be analyzed")
		return
	}

	// One live report per visitor: drop the previous one before storing.
	if cookie, err := r.Cookie(lastReportCookie); err == nil && cookie.Value != "" {
		releaseReport(r.Context(), cookie.Value)
	}
	if err := saveReport(r.Context(), report); err != nil {
		logger.Error("failed to store report", "report_id", report.ID, "error", err)
		redirectWithError(w, r, "/", "The report could not be stored")
		return
	}
	SetLaxCookie(w, r, lastReportCookie, report.ID, int(reportTTL.Seconds()))

	redirectWithSuccess(w, r, "/html/report/"+report.ID, "Audit complete")
}

// readSubmission pulls the document out of the form. An uploaded file wins
// over the pasted textarea, and Markdown is recognized by file extension or
// by the checkbox for pasted text.
func readSubmission(r *http.Request) (source, sourceName string, markdown bool, err error) {
	file, header, fileErr := r.FormFile("document")
	if fileErr == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return "", "", false, readErr
		}
		if len(data) > 0 {
			name := path.Base(header.Filename)
			ext := strings.ToLower(path.Ext(name))
			return string(data), name, ext == ".md" || ext == ".markdown", nil
		}
	} else if fileErr != http.ErrMissingFile {
		return "", "", false, fileErr
	}

	return r.FormValue("html"), "pasted document", r.FormValue("markdown") == "1", nil
}

func htmlReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/html/report/")
	id, wantQR := strings.CutSuffix(rest, "/qr")
	id = strings.TrimSuffix(id, "/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	report, found, err := loadReport(r.Context(), id)
	if err != nil {
		LoggerFromContext(r.Context()).Error("failed to load report", "report_id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	if wantQR {
		serveReportQR(w, r, report.ID)
		return
	}

	renderPage(w, compiledReportTemplate, newReportPageData(report, appConfig.ViewportWidth))
}

// serveReportQR renders a PNG QR code pointing at the report page, for
// checking the audited page's findings from a phone.
func serveReportQR(w http.ResponseWriter, r *http.Request, id string) {
	target := strings.TrimSuffix(appConfig.BaseURL, "/") + "/html/report/" + id
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		LoggerFromContext(r.Context()).Error("failed to encode report QR", "report_id", id, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(png)
}
