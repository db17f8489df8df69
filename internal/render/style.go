package render

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"audit-server/internal/audit"
)

// Root defaults, matching browser computed values: black text, 16px type,
// and a fully transparent background.
const (
	defaultColor      = "rgb(0, 0, 0)"
	defaultBackground = "rgba(0, 0, 0, 0)"
	defaultFontPx     = 16.0
)

// styleEngine approximates computed styles from the document's <style>
// blocks and style attributes. It resolves only what the checks consume:
// color, background-color, font-size, and fixed widths for the layout
// estimate. Selector support is deliberately shallow: tag, .class, #id,
// compounds of those, and the final compound of a descendant selector.
type styleEngine struct {
	rules    []matchRule
	cache    map[*html.Node]computedStyle
	viewport int
	root     *html.Node
}

type computedStyle struct {
	color      string
	background string
	fontPx     float64
	widthPx    float64 // 0 when no fixed width applies
}

type simpleSelector struct {
	universal bool
	tag       string
	id        string
	classes   []string
}

type matchRule struct {
	sel   simpleSelector
	spec  int
	order int
	decls []*css.Declaration
}

func newStyleEngine(root *html.Node, viewport int) *styleEngine {
	e := &styleEngine{
		cache:    make(map[*html.Node]computedStyle),
		viewport: viewport,
		root:     root,
	}

	var sheets []string
	walk(root, func(n *html.Node) {
		if n.Data == "style" {
			sheets = append(sheets, textContent(n))
		}
	})

	order := 0
	for _, sheet := range sheets {
		parsed, err := parser.Parse(sheet)
		if err != nil {
			continue // a sheet that fails to parse contributes nothing
		}
		order = e.addRules(parsed.Rules, order)
	}
	return e
}

// addRules flattens qualified rules into matchRules, descending into @media
// blocks that apply at the engine's viewport. Other at-rules are skipped.
func (e *styleEngine) addRules(rules []*css.Rule, order int) int {
	for _, rule := range rules {
		switch rule.Kind {
		case css.QualifiedRule:
			for _, raw := range rule.Selectors {
				sel, ok := compileSelector(raw)
				if !ok {
					continue
				}
				e.rules = append(e.rules, matchRule{
					sel:   sel,
					spec:  sel.specificity(),
					order: order,
					decls: rule.Declarations,
				})
				order++
			}
		case css.AtRule:
			if strings.EqualFold(rule.Name, "@media") && mediaApplies(rule.Prelude, e.viewport) {
				order = e.addRules(rule.Rules, order)
			}
		}
	}
	return order
}

var mediaWidthPattern = regexp.MustCompile(`(min|max)-width:\s*([0-9.]+)px`)

// mediaApplies evaluates px min/max-width constraints against the viewport.
// Queries without width constraints are assumed to match.
func mediaApplies(prelude string, viewport int) bool {
	for _, m := range mediaWidthPattern.FindAllStringSubmatch(strings.ToLower(prelude), -1) {
		limit, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		if m[1] == "min" && float64(viewport) < limit {
			return false
		}
		if m[1] == "max" && float64(viewport) > limit {
			return false
		}
	}
	return true
}

// compileSelector reduces a selector to its final simple compound. Selectors
// using combinators other than descendant, or pseudo/attribute syntax, are
// not supported and never match.
func compileSelector(raw string) (simpleSelector, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, ">+~:[(") {
		return simpleSelector{}, false
	}
	fields := strings.Fields(raw)
	compound := fields[len(fields)-1]

	var sel simpleSelector
	for compound != "" {
		switch compound[0] {
		case '*':
			sel.universal = true
			compound = compound[1:]
		case '.':
			name, rest := takeIdent(compound[1:])
			if name == "" {
				return simpleSelector{}, false
			}
			sel.classes = append(sel.classes, name)
			compound = rest
		case '#':
			name, rest := takeIdent(compound[1:])
			if name == "" {
				return simpleSelector{}, false
			}
			sel.id = name
			compound = rest
		default:
			name, rest := takeIdent(compound)
			if name == "" {
				return simpleSelector{}, false
			}
			sel.tag = strings.ToLower(name)
			compound = rest
		}
	}
	return sel, true
}

func takeIdent(s string) (ident, rest string) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == '#' || s[i] == '*' {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func (s simpleSelector) specificity() int {
	spec := len(s.classes) * 10
	if s.id != "" {
		spec += 100
	}
	if s.tag != "" {
		spec++
	}
	return spec
}

func (s simpleSelector) matches(n *html.Node) bool {
	if s.tag != "" && s.tag != n.Data {
		return false
	}
	if s.id != "" {
		id, _ := nodeAttr(n, "id")
		if id != s.id {
			return false
		}
	}
	if len(s.classes) > 0 {
		classAttr, _ := nodeAttr(n, "class")
		have := strings.Fields(classAttr)
		for _, want := range s.classes {
			found := false
			for _, c := range have {
				if c == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return s.universal || s.tag != "" || s.id != "" || len(s.classes) > 0
}

// computed returns the approximated computed style for a node, in the
// serialized form the analysis engine expects.
func (e *styleEngine) computed(n *html.Node) audit.Style {
	c := e.resolve(n)
	return audit.Style{
		FontSize:        formatPx(c.fontPx),
		Color:           c.color,
		BackgroundColor: c.background,
	}
}

// resolve computes (and memoizes) the cascade for a node, inheriting color
// and font size from the parent element. Background does not inherit.
func (e *styleEngine) resolve(n *html.Node) computedStyle {
	if cached, ok := e.cache[n]; ok {
		return cached
	}

	parent := computedStyle{color: defaultColor, fontPx: defaultFontPx}
	if n != e.root {
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode {
				parent = e.resolve(p)
				break
			}
		}
	}

	out := computedStyle{
		color:      parent.color,
		fontPx:     parent.fontPx,
		background: defaultBackground,
	}

	type applied struct {
		important bool
		spec      int
		order     int
		decls     []*css.Declaration
	}
	var matched []applied
	for _, rule := range e.rules {
		if rule.sel.matches(n) {
			matched = append(matched, applied{spec: rule.spec, order: rule.order, decls: rule.decls})
		}
	}
	// Inline style beats every sheet rule.
	if inline, ok := nodeAttr(n, "style"); ok {
		if decls, err := parser.ParseDeclarations(inline); err == nil {
			matched = append(matched, applied{spec: 1000, order: 1 << 30, decls: decls})
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].spec != matched[j].spec {
			return matched[i].spec < matched[j].spec
		}
		return matched[i].order < matched[j].order
	})

	// Two passes so !important declarations win over later normal ones.
	for _, wantImportant := range []bool{false, true} {
		for _, m := range matched {
			for _, d := range m.decls {
				if d.Important != wantImportant {
					continue
				}
				e.applyDeclaration(&out, parent, d)
			}
		}
	}

	e.cache[n] = out
	return out
}

func (e *styleEngine) applyDeclaration(out *computedStyle, parent computedStyle, d *css.Declaration) {
	value := strings.TrimSpace(d.Value)
	if value == "" {
		return
	}
	switch strings.ToLower(d.Property) {
	case "color":
		out.color = normalizeColor(value)
	case "background-color":
		out.background = normalizeColor(value)
	case "background":
		if c := firstColorToken(value); c != "" {
			out.background = normalizeColor(c)
		}
	case "font-size":
		if px, ok := resolveFontSize(value, parent.fontPx); ok {
			out.fontPx = px
		}
	case "width", "min-width":
		if px, ok := parseAbsolutePx(value); ok && px > out.widthPx {
			out.widthPx = px
		}
	}
}

// resolveFontSize converts a font-size value to pixels relative to the
// parent's computed size.
func resolveFontSize(value string, parentPx float64) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "xx-small":
		return 9, true
	case "x-small":
		return 10, true
	case "small":
		return 13, true
	case "medium":
		return 16, true
	case "large":
		return 18, true
	case "x-large":
		return 24, true
	case "xx-large":
		return 32, true
	case "smaller":
		return parentPx / 1.2, true
	case "larger":
		return parentPx * 1.2, true
	}

	parseSuffix := func(suffix string) (float64, bool) {
		n, err := strconv.ParseFloat(strings.TrimSuffix(v, suffix), 64)
		return n, err == nil
	}
	switch {
	case strings.HasSuffix(v, "px"):
		if n, ok := parseSuffix("px"); ok {
			return n, true
		}
	case strings.HasSuffix(v, "pt"):
		if n, ok := parseSuffix("pt"); ok {
			return n * 96 / 72, true
		}
	case strings.HasSuffix(v, "rem"):
		if n, ok := parseSuffix("rem"); ok {
			return n * defaultFontPx, true
		}
	case strings.HasSuffix(v, "em"):
		if n, ok := parseSuffix("em"); ok {
			return n * parentPx, true
		}
	case strings.HasSuffix(v, "%"):
		if n, ok := parseSuffix("%"); ok {
			return n / 100 * parentPx, true
		}
	}
	return 0, false
}

func parseAbsolutePx(value string) (float64, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if !strings.HasSuffix(v, "px") {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatPx(px float64) string {
	return strconv.FormatFloat(px, 'g', -1, 64) + "px"
}

// scrollWidth estimates the root element's content width: the viewport,
// widened by the largest fixed width declared anywhere in the document.
// Width attributes on replaced elements count too.
func (e *styleEngine) scrollWidth(viewport int) int {
	widest := float64(viewport)
	walk(e.root, func(n *html.Node) {
		if w := e.resolve(n).widthPx; w > widest {
			widest = w
		}
		if sizedByAttribute(n.Data) {
			if attr, ok := nodeAttr(n, "width"); ok {
				if w, err := strconv.ParseFloat(strings.TrimSuffix(attr, "px"), 64); err == nil && w > widest {
					widest = w
				}
			}
		}
	})
	return int(widest + 0.5)
}

func sizedByAttribute(tag string) bool {
	switch tag {
	case "img", "video", "iframe", "table", "canvas", "embed", "object", "svg":
		return true
	}
	return false
}
