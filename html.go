package main

import (
	"html/template"
	"log/slog"
	"net/http"

	"audit-server/internal/audit"
	"audit-server/internal/util"
)

var homeTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Page Audit</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
      line-height: 1.6;
      color: #333;
      background: #f5f5f5;
      padding: 20px;
    }
    .container {
      max-width: 720px;
      margin: 0 auto;
      background: white;
      border-radius: 8px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.1);
      overflow: hidden;
    }
    header {
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: white;
      padding: 30px;
      text-align: center;
    }
    header h1 { font-size: 28px; margin-bottom: 8px; }
    .subtitle { opacity: 0.9; font-size: 14px; }
    main { padding: 24px; }
    .flash {
      padding: 12px 16px;
      border-radius: 6px;
      margin-bottom: 16px;
      font-size: 14px;
    }
    .flash-error { background: #fdecea; color: #b71c1c; border: 1px solid #f5c6cb; }
    .flash-success { background: #e8f5e9; color: #1b5e20; border: 1px solid #c3e6cb; }
    textarea {
      width: 100%;
      min-height: 220px;
      font-family: ui-monospace, SFMono-Regular, Menlo, monospace;
      font-size: 13px;
      padding: 12px;
      border: 1px solid #d0d7de;
      border-radius: 6px;
      resize: vertical;
    }
    .field { margin-bottom: 16px; }
    .field label { display: block; font-weight: 600; margin-bottom: 6px; font-size: 14px; }
    .hint { font-size: 13px; color: #666; margin-top: 4px; }
    .checkbox-row { display: flex; align-items: center; gap: 8px; font-size: 14px; }
    button[type=submit] {
      background: #667eea;
      color: white;
      border: none;
      padding: 10px 24px;
      border-radius: 6px;
      font-size: 15px;
      cursor: pointer;
    }
    button[type=submit]:hover { background: #5568d3; }
    .checks-note {
      margin-top: 24px;
      padding: 16px;
      background: #f8f9fa;
      border-radius: 6px;
      font-size: 13px;
      color: #555;
    }
    .checks-note ul { margin: 8px 0 0 18px; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>Page Audit</h1>
      <p class="subtitle">Quick usability and accessibility check for a single page</p>
    </header>
    <main>
      {{if .Flash.Error}}<div class="flash flash-error" role="alert">{{.Flash.Error}}</div>{{end}}
      {{if .Flash.Success}}<div class="flash flash-success" role="status">{{.Flash.Success}}</div>{{end}}
      <form method="POST" action="/html/audit" enctype="multipart/form-data">
        <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
        <div class="field">
          <label for="html-input">Paste HTML</label>
          <textarea id="html-input" name="html" placeholder="&lt;!DOCTYPE html&gt;..."></textarea>
        </div>
        <div class="field">
          <label for="file-input">Or upload a file</label>
          <input id="file-input" type="file" name="document" accept=".html,.htm,.md,.markdown">
          <p class="hint">HTML or Markdown. Uploads win over pasted text.</p>
        </div>
        <div class="field checkbox-row">
          <input id="markdown-input" type="checkbox" name="markdown" value="1">
          <label for="markdown-input" style="margin:0;font-weight:normal">Treat pasted text as Markdown</label>
        </div>
        <button type="submit">Run audit</button>
      </form>
      <div class="checks-note">
        The document is laid out at a {{.ViewportWidth}}px viewport and checked for:
        <ul>
          <li>image alt text coverage</li>
          <li>heading hierarchy jumps</li>
          <li>text below the 12px readability floor</li>
          <li>WCAG 4.5:1 text contrast</li>
          <li>horizontal overflow on narrow screens</li>
        </ul>
      </div>
    </main>
  </div>
</body>
</html>`

var reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Audit Report - Page Audit</title>
  <style>
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
      line-height: 1.6;
      color: #333;
      background: #f5f5f5;
      padding: 20px;
    }
    .container {
      max-width: 860px;
      margin: 0 auto;
      background: white;
      border-radius: 8px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.1);
      overflow: hidden;
    }
    header {
      background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
      color: white;
      padding: 24px 30px;
      display: flex;
      justify-content: space-between;
      align-items: center;
      flex-wrap: wrap;
      gap: 12px;
    }
    header h1 { font-size: 24px; }
    header a { color: white; font-size: 14px; }
    main { padding: 24px; }
    .score-card {
      display: flex;
      align-items: center;
      gap: 28px;
      flex-wrap: wrap;
      margin-bottom: 24px;
    }
    .donut { flex-shrink: 0; }
    .donut .score-number {
      font-size: 34px;
      font-weight: bold;
      fill: #24292e;
    }
    .donut .score-label { font-size: 12px; fill: #666; }
    .score-details h2 { font-size: 20px; margin-bottom: 4px; }
    .score-details .meta { font-size: 13px; color: #666; }
    .qr-hint { margin-top: 10px; font-size: 13px; color: #666; }
    .qr-hint img { display: block; margin-top: 6px; border: 1px solid #e1e4e8; border-radius: 4px; }
    h3 { font-size: 16px; margin: 20px 0 10px; }
    ol.summary { margin-left: 20px; font-size: 14px; color: #444; }
    ul.issues { list-style: none; }
    ul.issues li {
      display: flex;
      gap: 10px;
      align-items: baseline;
      padding: 10px 12px;
      border: 1px solid #e1e4e8;
      border-radius: 6px;
      margin-bottom: 8px;
      font-size: 14px;
    }
    .badge {
      font-size: 11px;
      font-weight: 700;
      text-transform: uppercase;
      padding: 2px 8px;
      border-radius: 10px;
      flex-shrink: 0;
    }
    .badge-critical { background: #fdecea; color: #c62828; }
    .badge-warning { background: #fff8e1; color: #9a6700; }
    .badge-ok { background: #e8f5e9; color: #1b5e20; }
    .preview-frame {
      width: {{.ViewportWidth}}px;
      max-width: 100%;
      height: 480px;
      border: 1px solid #d0d7de;
      border-radius: 6px;
      background: white;
    }
    .preview-note { font-size: 12px; color: #888; margin-top: 6px; }
  </style>
</head>
<body>
  <div class="container">
    <header>
      <h1>Audit Report</h1>
      <a href="/">Audit another page</a>
    </header>
    <main>
      <div class="score-card">
        <svg class="donut" width="140" height="140" viewBox="0 0 140 140" role="img" aria-label="Score {{.Report.Result.Score}} out of 100">
          <circle cx="70" cy="70" r="54" fill="none" stroke="#e1e4e8" stroke-width="14"/>
          <circle cx="70" cy="70" r="54" fill="none" stroke="{{.ScoreColor}}" stroke-width="14"
                  stroke-dasharray="{{printf "%.2f" .ScoreArc}} {{printf "%.2f" .RestArc}}"
                  stroke-linecap="butt" transform="rotate(-90 70 70)"/>
          <text class="score-number" x="70" y="74" text-anchor="middle">{{.Report.Result.Score}}</text>
          <text class="score-label" x="70" y="92" text-anchor="middle">/ 100</text>
        </svg>
        <div class="score-details">
          <h2 style="color: {{.ScoreColor}}">{{.Label}}</h2>
          <p class="meta">{{.Report.SourceName}} &middot; analyzed {{.Report.CreatedAt.Format "2006-01-02 15:04:05"}} UTC</p>
          <div class="qr-hint">
            Scan to open this report on your phone:
            <img src="/html/report/{{.Report.ID}}/qr" alt="QR code linking to this report" width="128" height="128">
          </div>
        </div>
      </div>

      <h3>At a glance</h3>
      <ol class="summary">
        {{range .Report.Result.Summary}}<li>{{.}}</li>{{end}}
      </ol>

      <h3>Findings</h3>
      <ul class="issues">
        {{range .Issues}}
        <li><span class="badge badge-{{.Severity}}">{{.Severity}}</span> <span>{{.Text}}</span></li>
        {{end}}
      </ul>

      <h3>Preview at {{.ViewportWidth}}px</h3>
      <iframe class="preview-frame" sandbox="" srcdoc="{{.Report.Preview}}" title="Sanitized preview of the audited document"></iframe>
      <p class="preview-note">Scripts and event handlers are stripped from the preview.</p>
    </main>
  </div>
</body>
</html>`

var (
	compiledHomeTemplate   *template.Template
	compiledReportTemplate *template.Template
)

// initTemplates compiles all page templates at startup.
func initTemplates() {
	compiledHomeTemplate = util.MustCompileTemplate("home", nil, homeTemplate)
	compiledReportTemplate = util.MustCompileTemplate("report", nil, reportTemplate)
}

type homePageData struct {
	CSRFToken     string
	Flash         FlashMessages
	ViewportWidth int
}

type reportPageData struct {
	Report        *Report
	Label         string
	ScoreColor    string
	ScoreArc      float64
	RestArc       float64
	Issues        []audit.Issue
	ViewportWidth int
}

// donutCircumference is 2*pi*r for the r=54 score ring.
const donutCircumference = 339.29

// newReportPageData maps a report onto the two-segment donut and the label
// the presentation thresholds define.
func newReportPageData(report *Report, viewport int) reportPageData {
	score := report.Result.Score
	arc := donutCircumference * float64(score) / 100
	return reportPageData{
		Report:        report,
		Label:         audit.Label(score),
		ScoreColor:    scoreColor(score),
		ScoreArc:      arc,
		RestArc:       donutCircumference - arc,
		Issues:        report.Result.Issues,
		ViewportWidth: viewport,
	}
}

func scoreColor(score int) string {
	switch {
	case score >= 85:
		return "#22c55e" // green
	case score >= 70:
		return "#84cc16" // lime
	case score >= 50:
		return "#f59e0b" // amber
	default:
		return "#ef4444" // red
	}
}

func renderPage(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		slog.Error("failed to render page", "template", t.Name(), "error", err)
	}
}
