// Package webcolor implements the color math behind the contrast check:
// CSS color parsing, WCAG relative luminance, and contrast ratios.
package webcolor

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultBackground is the background assumed when no ancestor supplies one,
// matching how browsers composite against an opaque white canvas.
const DefaultBackground = "rgb(255, 255, 255)"

// RGB holds 8-bit color channels.
type RGB struct {
	R, G, B int
}

// Computed styles serialize colors as rgb(r, g, b) or rgba(r, g, b, a),
// so that is the only form the parser accepts. Hex, named colors, hsl()
// and the transparent keyword all fail to parse and are excluded from
// contrast evaluation upstream.
var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`)

// Parse extracts RGB channels from an rgb()/rgba() color string.
// Alpha is ignored. Returns false for any other format.
func Parse(s string) (RGB, bool) {
	m := rgbPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return RGB{}, false
	}
	return RGB{
		R: clampChannel(m[1]),
		G: clampChannel(m[2]),
		B: clampChannel(m[3]),
	}, true
}

func clampChannel(s string) int {
	v, _ := strconv.Atoi(s)
	if v > 255 {
		return 255
	}
	return v
}

// Transparent reports whether a computed color is fully transparent:
// the transparent keyword or an rgba() value with zero alpha.
func Transparent(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "transparent" || s == "" {
		return true
	}
	m := rgbPattern.FindStringSubmatch(s)
	if m == nil || m[4] == "" {
		return false
	}
	alpha, err := strconv.ParseFloat(m[4], 64)
	return err == nil && alpha == 0
}

// Luminance computes WCAG relative luminance for a color.
func Luminance(c RGB) float64 {
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

func linearize(channel int) float64 {
	v := float64(channel) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Ratio computes the WCAG contrast ratio between a foreground and a
// background color string. Returns -1 if either color fails to parse,
// signaling "could not evaluate" rather than pass or fail.
func Ratio(foreground, background string) float64 {
	fg, ok := Parse(foreground)
	if !ok {
		return -1
	}
	bg, ok := Parse(background)
	if !ok {
		return -1
	}
	lighter := Luminance(fg)
	darker := Luminance(bg)
	if darker > lighter {
		lighter, darker = darker, lighter
	}
	return (lighter + 0.05) / (darker + 0.05)
}

// EffectiveBackground returns the first usable background color from an
// ancestor chain ordered nearest-first. Fully transparent entries are
// skipped, and so are unparseable values (a gradient or named color is
// treated the same as transparent: the walk continues). Falls back to def
// when the chain is exhausted.
func EffectiveBackground(chain []string, def string) string {
	for _, bg := range chain {
		if Transparent(bg) {
			continue
		}
		if _, ok := Parse(bg); ok {
			return bg
		}
	}
	return def
}
