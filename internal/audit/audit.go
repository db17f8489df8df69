// Package audit runs heuristic usability and accessibility checks against a
// rendered document and aggregates them into a single 0-100 score.
package audit

import (
	"errors"
	"math"
)

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityOK       = "ok"
)

// Issue is one human-readable finding. Issues appear in check order:
// alt text, headings, font size, contrast, responsiveness.
type Issue struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

// Result is the aggregate outcome of one analysis run. Issues and Summary
// always hold one entry per check, pass or fail.
type Result struct {
	Score   int      `json:"score"`
	Issues  []Issue  `json:"issues"`
	Summary []string `json:"summary"`
}

// Label maps a final score to the qualitative label shown next to it.
func Label(score int) string {
	switch {
	case score >= 85:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 50:
		return "Fair"
	default:
		return "Needs improvement"
	}
}

// Element is one rendered element. Parent returns nil once the walk passes
// the document's root element.
type Element interface {
	Tag() string
	Attr(name string) string
	Parent() Element
}

// Document is the rendered-document handle the analyzer inspects. Element
// queries return matches in document order regardless of how many tag names
// are requested. Scroll and client widths describe the root element at the
// viewport the document was rendered for.
type Document interface {
	ElementsByTag(names ...string) []Element
	RootScrollWidth() int
	RootClientWidth() int
}

// Style is the subset of computed style the checks consume. FontSize is a
// numeric-with-unit string such as "16px"; colors are CSS color strings as
// a rendering context would serialize them.
type Style struct {
	FontSize        string
	Color           string
	BackgroundColor string
}

// StyleResolver returns the computed style of an element within the
// rendering context the document came from.
type StyleResolver func(Element) Style

// ErrNoDocument is returned when Analyze is handed a nil document. The
// caller is expected to detect unusable input before invoking the analyzer;
// this is the fail-fast guard for when it does not.
var ErrNoDocument = errors.New("audit: no document to analyze")

// outcome is the result of a single check, consumed by the aggregator.
type outcome struct {
	score   int
	issue   Issue
	summary string
}

// Analyze runs all five checks against the document and aggregates their
// sub-scores into the final result. Checks are independent; their order
// fixes only the presentation order of issues.
func Analyze(doc Document, styles StyleResolver) (*Result, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if styles == nil {
		styles = func(Element) Style { return Style{} }
	}

	outcomes := []outcome{
		checkAltText(doc),
		checkHeadings(doc),
		checkFontSizes(doc, styles),
		checkContrast(doc, styles),
		checkOverflow(doc),
	}

	result := &Result{
		Issues:  make([]Issue, 0, len(outcomes)),
		Summary: make([]string, 0, len(outcomes)),
	}
	sum := 0
	for _, o := range outcomes {
		sum += o.score
		result.Issues = append(result.Issues, o.issue)
		result.Summary = append(result.Summary, o.summary)
	}
	result.Score = int(math.Round(float64(sum) / float64(len(outcomes))))
	return result, nil
}
