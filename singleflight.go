package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/singleflight"

	"audit-server/internal/audit"
	"audit-server/internal/render"
	"audit-server/internal/util"
)

// auditGroup deduplicates concurrent submissions of identical documents:
// one render+analysis runs, every submitter shares the resulting report.
var auditGroup singleflight.Group

// previewPolicy strips scripts and event handlers from submitted documents
// before they are echoed back inside the report preview. Inline styles
// survive so the preview still resembles the audited page.
var previewPolicy = buildPreviewPolicy()

func buildPreviewPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("style").Globally()
	p.AllowImages()
	p.AllowLists()
	p.AllowTables()
	return p
}

// runAudit renders and analyzes a document and wraps the outcome in a
// storable report. The singleflight key covers the content, the input
// format, and the viewport, since any of them changes the result.
func runAudit(source, sourceName string, markdown bool) (*Report, error) {
	key := fmt.Sprintf("%s:%t:%d", util.ContentHash(source), markdown, appConfig.ViewportWidth)

	result, err, shared := auditGroup.Do(key, func() (interface{}, error) {
		return analyzeDocument(source, sourceName, markdown)
	})
	if shared {
		auditSharedTotal.Add(1)
		slog.Debug("audit shared between concurrent submissions", "key", key)
	}
	if err != nil {
		return nil, err
	}
	return result.(*Report), nil
}

func analyzeDocument(source, sourceName string, markdown bool) (*Report, error) {
	start := time.Now()

	// Markdown is converted up front so the stored preview is the HTML the
	// analysis actually saw.
	if markdown {
		converted, err := render.ConvertMarkdown(source)
		if err != nil {
			auditFailuresTotal.Add(1)
			return nil, fmt.Errorf("convert markdown: %w", err)
		}
		source = converted
	}

	page, err := render.Render(source, render.Options{
		ViewportWidth: appConfig.ViewportWidth,
	})
	if err != nil {
		auditFailuresTotal.Add(1)
		return nil, fmt.Errorf("render document: %w", err)
	}

	result, err := audit.Analyze(page, page.StyleResolver())
	if err != nil {
		auditFailuresTotal.Add(1)
		return nil, fmt.Errorf("analyze document: %w", err)
	}
	auditsTotal.Add(1)

	report := &Report{
		ID:         newReportID(),
		CreatedAt:  time.Now().UTC(),
		SourceName: sourceName,
		Markdown:   markdown,
		Result:     result,
		Preview:    previewPolicy.Sanitize(source),
	}

	slog.Info("document analyzed",
		"report_id", report.ID,
		"source", sourceName,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
