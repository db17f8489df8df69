package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"audit-server/internal/cache"
	"audit-server/internal/config"
)

func setupServer(t *testing.T) {
	t.Helper()
	appConfig = config.Default()
	initTemplates()
	reportStore = cache.NewMemory(100, time.Minute)
	reportTTL = time.Hour
	t.Cleanup(func() { reportStore.Close() })
}

const cleanDocument = `<!DOCTYPE html>
<html><head><style>body { color: black; background: white; }</style></head>
<body><h1>Title</h1><p>Readable text.</p><img src="a.png" alt="a diagram"></body></html>`

func TestRunAuditCleanDocument(t *testing.T) {
	setupServer(t)

	report, err := runAudit(cleanDocument, "clean.html", false)
	if err != nil {
		t.Fatalf("runAudit: %v", err)
	}
	if report.Result.Score != 100 {
		t.Errorf("score = %d, want 100", report.Result.Score)
	}
	if report.ID == "" {
		t.Error("report has no ID")
	}
	if len(report.Result.Issues) != 5 {
		t.Errorf("issue count = %d, want 5", len(report.Result.Issues))
	}
}

func TestRunAuditScenarioComposite(t *testing.T) {
	setupServer(t)

	// 10 images with 6 missing alt (60% -> tier 30), no headings (50),
	// default 16px black-on-white text (100, 100), no overflow (100):
	// (30+50+100+100+100)/5 = 76.
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><body><p>text</p>`)
	for i := 0; i < 4; i++ {
		b.WriteString(`<img src="x.png" alt="described">`)
	}
	for i := 0; i < 6; i++ {
		b.WriteString(`<img src="x.png">`)
	}
	b.WriteString(`</body></html>`)

	report, err := runAudit(b.String(), "composite.html", false)
	if err != nil {
		t.Fatalf("runAudit: %v", err)
	}
	if report.Result.Score != 76 {
		t.Errorf("score = %d, want 76", report.Result.Score)
	}
	if report.Result.Issues[0].Severity != "critical" {
		t.Errorf("alt severity = %q, want critical", report.Result.Issues[0].Severity)
	}
	if report.Result.Issues[1].Severity != "warning" {
		t.Errorf("heading severity = %q, want warning", report.Result.Issues[1].Severity)
	}
}

func TestRunAuditStripsScriptsFromPreview(t *testing.T) {
	setupServer(t)

	report, err := runAudit(`<html><body><h1>t</h1><p onclick="evil()">x</p><script>alert(1)</script></body></html>`, "scripted.html", false)
	if err != nil {
		t.Fatalf("runAudit: %v", err)
	}
	if strings.Contains(report.Preview, "<script") || strings.Contains(report.Preview, "onclick") {
		t.Errorf("preview retains active content: %q", report.Preview)
	}
	if !strings.Contains(report.Preview, "<h1>") {
		t.Errorf("preview lost document structure: %q", report.Preview)
	}
}

func TestAuditAPI(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader(cleanDocument))
	rec := httptest.NewRecorder()
	auditAPIHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			Score   int      `json:"score"`
			Summary []string `json:"summary"`
		} `json:"result"`
		ReportURL string `json:"report_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result.Score != 100 {
		t.Errorf("score = %d, want 100", resp.Result.Score)
	}
	if len(resp.Result.Summary) != 5 {
		t.Errorf("summary length = %d, want 5", len(resp.Result.Summary))
	}
	if resp.ReportURL != "" {
		t.Errorf("report_url = %q, want empty without store=1", resp.ReportURL)
	}
}

func TestAuditAPIStore(t *testing.T) {
	setupServer(t)
	appConfig.BaseURL = "https://audit.example.com"

	req := httptest.NewRequest(http.MethodPost, "/audit?store=1", strings.NewReader(cleanDocument))
	rec := httptest.NewRecorder()
	auditAPIHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		ID        string `json:"id"`
		ReportURL string `json:"report_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.ReportURL, "https://audit.example.com/html/report/") {
		t.Errorf("report_url = %q", resp.ReportURL)
	}

	// The stored report must be retrievable afterwards
	loaded, found, err := loadReport(req.Context(), resp.ID)
	if err != nil || !found {
		t.Fatalf("loadReport: found=%v err=%v", found, err)
	}
	if loaded.Result.Score != 100 {
		t.Errorf("stored score = %d", loaded.Result.Score)
	}
}

func TestAuditAPIMarkdown(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/audit?format=markdown", strings.NewReader("# Title\n\nSome text.\n"))
	rec := httptest.NewRecorder()
	auditAPIHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			Score int `json:"score"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Result.Score != 100 {
		t.Errorf("score = %d, want 100", resp.Result.Score)
	}
}

func TestAuditAPIRejectsEmptyBody(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/audit", strings.NewReader("   "))
	rec := httptest.NewRecorder()
	auditAPIHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuditAPIRejectsGet(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/audit", nil)
	rec := httptest.NewRecorder()
	auditAPIHandler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHTMLReportHandler(t *testing.T) {
	setupServer(t)

	report, err := runAudit(cleanDocument, "clean.html", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := saveReport(httptest.NewRequest("GET", "/", nil).Context(), report); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/html/report/"+report.ID, nil)
	rec := httptest.NewRecorder()
	htmlReportHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Excellent") {
		t.Error("report page missing score label")
	}
	if !strings.Contains(body, report.ID) {
		t.Error("report page missing QR link")
	}
}

func TestHTMLReportHandlerNotFound(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/html/report/no-such-report", nil)
	rec := httptest.NewRecorder()
	htmlReportHandler(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestReportQR(t *testing.T) {
	setupServer(t)
	appConfig.BaseURL = "https://audit.example.com"

	report, err := runAudit(cleanDocument, "clean.html", false)
	if err != nil {
		t.Fatal(err)
	}
	ctx := httptest.NewRequest("GET", "/", nil).Context()
	if err := saveReport(ctx, report); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/html/report/"+report.ID+"/qr", nil)
	rec := httptest.NewRecorder()
	htmlReportHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty QR image")
	}
}

func TestHomePage(t *testing.T) {
	setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	htmlHomeHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `action="/html/audit"`) {
		t.Error("home page missing submission form")
	}
	if !strings.Contains(body, "csrf_token") {
		t.Error("home page missing CSRF token field")
	}
}

func TestReportLifecycle(t *testing.T) {
	setupServer(t)
	ctx := httptest.NewRequest("GET", "/", nil).Context()

	report, err := runAudit(cleanDocument, "clean.html", false)
	if err != nil {
		t.Fatal(err)
	}
	if err := saveReport(ctx, report); err != nil {
		t.Fatal(err)
	}

	// Releasing the previous report removes it; a fresh one coexists.
	releaseReport(ctx, report.ID)
	if _, found, _ := loadReport(ctx, report.ID); found {
		t.Error("released report still loadable")
	}
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	token := generateCSRFToken("visitor-a")
	if !validateCSRFToken("visitor-a", token) {
		t.Error("valid token rejected")
	}
	if validateCSRFToken("visitor-b", token) {
		t.Error("token accepted for a different visitor")
	}
	if validateCSRFToken("visitor-a", "garbage") {
		t.Error("malformed token accepted")
	}
	if validateCSRFToken("visitor-a", "12345.not-a-signature") {
		t.Error("forged token accepted")
	}
}

func TestVisitorIDStable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	first := visitorID(rec, req)
	if first == "" {
		t.Fatal("no visitor ID assigned")
	}

	// A request carrying the cookie keeps the same identity.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(&http.Cookie{Name: visitorCookie, Value: first})
	if got := visitorID(httptest.NewRecorder(), again); got != first {
		t.Errorf("visitor ID changed: %q vs %q", got, first)
	}
}
