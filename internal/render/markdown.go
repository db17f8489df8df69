package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// ConvertMarkdown converts Markdown source into a complete HTML page so it
// can be rendered and audited like any other document.
func ConvertMarkdown(source string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(source), &body); err != nil {
		return "", err
	}
	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head><meta charset=\"utf-8\"></head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("\n</body>\n</html>\n")
	return page.String(), nil
}
