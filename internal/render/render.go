// Package render turns raw HTML (or Markdown) text into an inspectable
// document handle with approximated computed styles, sized to a narrow
// viewport so the responsiveness check is meaningful.
package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"audit-server/internal/audit"
)

// DefaultViewportWidth is the narrow viewport documents are laid out for.
// Roughly a phone screen, which is what the overflow check cares about.
const DefaultViewportWidth = 375

// Options controls how a document is rendered.
type Options struct {
	// ViewportWidth overrides the default 375px layout width.
	ViewportWidth int
	// Markdown converts the source from Markdown to HTML before parsing.
	Markdown bool
}

// Page is a rendered document. It implements audit.Document and carries the
// style engine that backs its audit.StyleResolver.
type Page struct {
	root        *html.Node // the <html> element
	styles      *styleEngine
	scrollWidth int
	clientWidth int
}

// Render parses the source into a Page. The returned error covers malformed
// input only at the parser level; like a browser, the HTML parser recovers
// from almost anything.
func Render(source string, opts Options) (*Page, error) {
	if opts.Markdown {
		converted, err := ConvertMarkdown(source)
		if err != nil {
			return nil, fmt.Errorf("convert markdown: %w", err)
		}
		source = converted
	}

	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := findElement(doc, "html")
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	viewport := opts.ViewportWidth
	if viewport <= 0 {
		viewport = DefaultViewportWidth
	}

	page := &Page{
		root:        root,
		clientWidth: viewport,
	}
	page.styles = newStyleEngine(root, viewport)
	page.scrollWidth = page.styles.scrollWidth(viewport)
	return page, nil
}

// ElementsByTag returns every element matching one of the tag names, in
// document order across all names.
func (p *Page) ElementsByTag(names ...string) []audit.Element {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	var out []audit.Element
	walk(p.root, func(n *html.Node) {
		if want[n.Data] {
			out = append(out, &element{node: n, page: p})
		}
	})
	return out
}

// RootScrollWidth reports the estimated content width of the root element.
func (p *Page) RootScrollWidth() int { return p.scrollWidth }

// RootClientWidth reports the viewport width the page was rendered for.
func (p *Page) RootClientWidth() int { return p.clientWidth }

// StyleResolver returns the computed-style accessor bound to this page.
func (p *Page) StyleResolver() audit.StyleResolver {
	return func(el audit.Element) audit.Style {
		e, ok := el.(*element)
		if !ok || e.page != p {
			return audit.Style{}
		}
		return p.styles.computed(e.node)
	}
}

// element wraps an html.Node as an audit.Element.
type element struct {
	node *html.Node
	page *Page
}

func (e *element) Tag() string { return e.node.Data }

func (e *element) Attr(name string) string {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// Parent returns the enclosing element, or nil once the walk passes the
// document's root element.
func (e *element) Parent() audit.Element {
	if e.node == e.page.root {
		return nil
	}
	for n := e.node.Parent; n != nil; n = n.Parent {
		if n.Type == html.ElementNode {
			return &element{node: n, page: e.page}
		}
	}
	return nil
}

// walk visits every element node under n in document order.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func nodeAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}
