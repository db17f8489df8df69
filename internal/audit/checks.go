package audit

import (
	"fmt"
	"strconv"
	"strings"

	"audit-server/internal/webcolor"
)

// Sub-score tiers and thresholds. Each check hands out one of a fixed set
// of tier values so the final score stays predictable and tunable.
const (
	scoreClean = 100

	altScoreSevere   = 30 // more than half the images undescribed
	altScoreModerate = 60 // more than a fifth undescribed
	altScoreMinor    = 90
	altShareSevere   = 0.5
	altShareModerate = 0.2

	headingScoreNone  = 50
	headingScoreJumpy = 70

	fontScoreWidespread = 60 // small text on more than 30% of text elements
	fontScoreScattered  = 80
	fontShareWidespread = 0.30
	fontMinPx           = 12.0

	contrastScoreWidespread = 55 // low contrast on more than 20% of elements
	contrastScoreScattered  = 75
	contrastShareWidespread = 0.20
	contrastMinRatio        = 4.5

	overflowScore       = 65
	overflowTolerancePx = 5
)

var (
	headingTags  = []string{"h1", "h2", "h3", "h4", "h5", "h6"}
	textTags     = []string{"p", "li", "a", "span", "button"}
	contrastTags = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "button", "a"}
)

// checkAltText scores alt attribute coverage across all images. A trimmed
// empty or absent alt counts as missing.
func checkAltText(doc Document) outcome {
	images := doc.ElementsByTag("img")
	if len(images) == 0 {
		return outcome{
			score:   scoreClean,
			issue:   Issue{Severity: SeverityOK, Text: "No images found, nothing to describe"},
			summary: "Alt text: no images present",
		}
	}

	missing := 0
	for _, img := range images {
		if strings.TrimSpace(img.Attr("alt")) == "" {
			missing++
		}
	}

	if missing == 0 {
		return outcome{
			score:   scoreClean,
			issue:   Issue{Severity: SeverityOK, Text: fmt.Sprintf("All %d images have alt text", len(images))},
			summary: fmt.Sprintf("Alt text: %d/%d images described", len(images), len(images)),
		}
	}

	share := float64(missing) / float64(len(images))
	score := altScoreMinor
	switch {
	case share > altShareSevere:
		score = altScoreSevere
	case share > altShareModerate:
		score = altScoreModerate
	}
	return outcome{
		score:   score,
		issue:   Issue{Severity: SeverityCritical, Text: fmt.Sprintf("%d of %d images are missing alt text", missing, len(images))},
		summary: fmt.Sprintf("Alt text: %d/%d images described", len(images)-missing, len(images)),
	}
}

// checkHeadings walks h1-h6 in document order and flags hierarchy jumps: a
// heading whose level increases by more than one over its predecessor.
// Going back up, or down one level at a time, is fine.
func checkHeadings(doc Document) outcome {
	headings := doc.ElementsByTag(headingTags...)
	if len(headings) == 0 {
		return outcome{
			score:   headingScoreNone,
			issue:   Issue{Severity: SeverityWarning, Text: "Document has no headings"},
			summary: "Headings: none found, structure unclear",
		}
	}

	jumps := 0
	prev := headingLevel(headings[0].Tag())
	for _, h := range headings[1:] {
		level := headingLevel(h.Tag())
		if level > prev+1 {
			jumps++
		}
		prev = level
	}

	if jumps > 0 {
		return outcome{
			score:   headingScoreJumpy,
			issue:   Issue{Severity: SeverityWarning, Text: fmt.Sprintf("Heading hierarchy skips levels %d time(s)", jumps)},
			summary: fmt.Sprintf("Headings: %d present, %d level jump(s)", len(headings), jumps),
		}
	}
	return outcome{
		score:   scoreClean,
		issue:   Issue{Severity: SeverityOK, Text: "Heading hierarchy is consistent"},
		summary: fmt.Sprintf("Headings: %d present, hierarchy intact", len(headings)),
	}
}

func headingLevel(tag string) int {
	return int(tag[1] - '0')
}

// checkFontSizes counts text elements rendered strictly below the 12px
// floor. Elements whose computed size cannot be read are treated as not
// small rather than failing the check.
func checkFontSizes(doc Document, styles StyleResolver) outcome {
	elements := doc.ElementsByTag(textTags...)
	small := 0
	for _, el := range elements {
		px, ok := parsePixels(styles(el).FontSize)
		if ok && px < fontMinPx {
			small++
		}
	}

	if small == 0 {
		return outcome{
			score:   scoreClean,
			issue:   Issue{Severity: SeverityOK, Text: "No text below the 12px readability floor"},
			summary: "Font sizes: all text at or above 12px",
		}
	}

	score := fontScoreScattered
	if float64(small) > float64(len(elements))*fontShareWidespread {
		score = fontScoreWidespread
	}
	return outcome{
		score:   score,
		issue:   Issue{Severity: SeverityWarning, Text: fmt.Sprintf("%d element(s) use text smaller than 12px", small)},
		summary: fmt.Sprintf("Font sizes: %d/%d text elements under 12px", small, len(elements)),
	}
}

// parsePixels reads a computed font-size string such as "14px" or "13.5px".
func parsePixels(fontSize string) (float64, bool) {
	s := strings.TrimSpace(fontSize)
	if !strings.HasSuffix(s, "px") {
		return 0, false
	}
	px, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return 0, false
	}
	return px, true
}

// checkContrast measures foreground/background contrast on text-bearing
// elements against the WCAG 4.5:1 threshold. A transparent background is
// resolved by walking the ancestor chain, defaulting to opaque white.
// Elements whose colors cannot be parsed are excluded, not failed.
func checkContrast(doc Document, styles StyleResolver) outcome {
	elements := doc.ElementsByTag(contrastTags...)
	low := 0
	for _, el := range elements {
		style := styles(el)
		background := style.BackgroundColor
		if webcolor.Transparent(background) {
			background = webcolor.EffectiveBackground(ancestorBackgrounds(el, styles), webcolor.DefaultBackground)
		}
		ratio := webcolor.Ratio(style.Color, background)
		if ratio > 0 && ratio < contrastMinRatio {
			low++
		}
	}

	if low == 0 {
		return outcome{
			score:   scoreClean,
			issue:   Issue{Severity: SeverityOK, Text: "Text contrast meets the 4.5:1 ratio"},
			summary: "Contrast: no low-contrast text detected",
		}
	}

	score := contrastScoreScattered
	if float64(low) > float64(len(elements))*contrastShareWidespread {
		score = contrastScoreWidespread
	}
	return outcome{
		score:   score,
		issue:   Issue{Severity: SeverityCritical, Text: fmt.Sprintf("%d element(s) fall below the 4.5:1 contrast ratio", low)},
		summary: fmt.Sprintf("Contrast: %d/%d elements below 4.5:1", low, len(elements)),
	}
}

// ancestorBackgrounds collects computed background colors from the element's
// parent up to the document root, nearest first.
func ancestorBackgrounds(el Element, styles StyleResolver) []string {
	var chain []string
	for parent := el.Parent(); parent != nil; parent = parent.Parent() {
		chain = append(chain, styles(parent).BackgroundColor)
	}
	return chain
}

// checkOverflow compares the root element's scroll width against its client
// width. Anything beyond a small tolerance means horizontal scrolling at the
// rendered viewport.
func checkOverflow(doc Document) outcome {
	scroll := doc.RootScrollWidth()
	client := doc.RootClientWidth()
	if scroll > client+overflowTolerancePx {
		return outcome{
			score:   overflowScore,
			issue:   Issue{Severity: SeverityWarning, Text: fmt.Sprintf("Content overflows the viewport horizontally by %dpx", scroll-client)},
			summary: fmt.Sprintf("Responsiveness: %dpx of horizontal overflow", scroll-client),
		}
	}
	return outcome{
		score:   scoreClean,
		issue:   Issue{Severity: SeverityOK, Text: "Content fits the viewport width"},
		summary: "Responsiveness: no horizontal overflow",
	}
}
