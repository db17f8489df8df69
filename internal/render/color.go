package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// normalizeColor rewrites a CSS color value the way a rendering context
// serializes computed values: hex and common named colors become
// rgb(r, g, b), transparent becomes rgba(0, 0, 0, 0), and rgb()/rgba()
// values pass through. Anything else (hsl, gradients, var()) is left
// verbatim; the contrast math treats unparseable values as unevaluable.
func normalizeColor(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "transparent" {
		return defaultBackground
	}
	if strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba(") {
		return v
	}
	if strings.HasPrefix(v, "#") {
		if rgb, ok := parseHex(v[1:]); ok {
			return rgb
		}
		return v
	}
	if rgb, ok := namedColors[v]; ok {
		return rgb
	}
	return value
}

func parseHex(hex string) (string, bool) {
	// 4- and 8-digit forms carry alpha; the color channels still come first.
	switch len(hex) {
	case 3, 4:
		r, ok1 := hexNibble(hex[0])
		g, ok2 := hexNibble(hex[1])
		b, ok3 := hexNibble(hex[2])
		if ok1 && ok2 && ok3 {
			return fmt.Sprintf("rgb(%d, %d, %d)", r*17, g*17, b*17), true
		}
	case 6, 8:
		r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
		g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
		b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b), true
		}
	}
	return "", false
}

func hexNibble(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	}
	return 0, false
}

// The named colors browsers serialize most often in hand-written CSS.
var namedColors = map[string]string{
	"black":      "rgb(0, 0, 0)",
	"white":      "rgb(255, 255, 255)",
	"red":        "rgb(255, 0, 0)",
	"green":      "rgb(0, 128, 0)",
	"blue":       "rgb(0, 0, 255)",
	"yellow":     "rgb(255, 255, 0)",
	"cyan":       "rgb(0, 255, 255)",
	"aqua":       "rgb(0, 255, 255)",
	"magenta":    "rgb(255, 0, 255)",
	"fuchsia":    "rgb(255, 0, 255)",
	"gray":       "rgb(128, 128, 128)",
	"grey":       "rgb(128, 128, 128)",
	"silver":     "rgb(192, 192, 192)",
	"maroon":     "rgb(128, 0, 0)",
	"olive":      "rgb(128, 128, 0)",
	"lime":       "rgb(0, 255, 0)",
	"teal":       "rgb(0, 128, 128)",
	"navy":       "rgb(0, 0, 128)",
	"purple":     "rgb(128, 0, 128)",
	"orange":     "rgb(255, 165, 0)",
	"pink":       "rgb(255, 192, 203)",
	"brown":      "rgb(165, 42, 42)",
	"gold":       "rgb(255, 215, 0)",
	"beige":      "rgb(245, 245, 220)",
	"ivory":      "rgb(255, 255, 240)",
	"coral":      "rgb(255, 127, 80)",
	"salmon":     "rgb(250, 128, 114)",
	"tomato":     "rgb(255, 99, 71)",
	"violet":     "rgb(238, 130, 238)",
	"indigo":     "rgb(75, 0, 130)",
	"turquoise":  "rgb(64, 224, 208)",
	"tan":        "rgb(210, 180, 140)",
	"lavender":   "rgb(230, 230, 250)",
	"crimson":    "rgb(220, 20, 60)",
	"chocolate":  "rgb(210, 105, 30)",
	"darkgray":   "rgb(169, 169, 169)",
	"darkgrey":   "rgb(169, 169, 169)",
	"lightgray":  "rgb(211, 211, 211)",
	"lightgrey":  "rgb(211, 211, 211)",
	"darkred":    "rgb(139, 0, 0)",
	"darkgreen":  "rgb(0, 100, 0)",
	"darkblue":   "rgb(0, 0, 139)",
	"whitesmoke": "rgb(245, 245, 245)",
	"gainsboro":  "rgb(220, 220, 220)",
	"slategray":  "rgb(112, 128, 144)",
	"steelblue":  "rgb(70, 130, 180)",
	"royalblue":  "rgb(65, 105, 225)",
	"skyblue":    "rgb(135, 206, 235)",
	"seagreen":   "rgb(46, 139, 87)",
	"firebrick":  "rgb(178, 34, 34)",
	"orangered":  "rgb(255, 69, 0)",
	"goldenrod":  "rgb(218, 165, 32)",
	"khaki":      "rgb(240, 230, 140)",
	"plum":       "rgb(221, 160, 221)",
	"orchid":     "rgb(218, 112, 214)",
}

var colorCallPattern = regexp.MustCompile(`rgba?\([^)]*\)|#[0-9a-fA-F]{3,8}`)

// firstColorToken pulls the first color-looking token out of a background
// shorthand value. Returns "" when the shorthand has no recognizable color.
func firstColorToken(value string) string {
	if m := colorCallPattern.FindString(value); m != "" {
		return m
	}
	for _, tok := range strings.Fields(strings.ToLower(value)) {
		if tok == "transparent" {
			return tok
		}
		if _, ok := namedColors[tok]; ok {
			return tok
		}
	}
	return ""
}
