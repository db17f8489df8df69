package util

import (
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"log/slog"
	"os"
)

// MustCompileTemplate compiles a template with the given name and content.
// Exits with a fatal error if compilation fails; this runs during
// initialization, where a broken template is unrecoverable.
func MustCompileTemplate(name string, funcs template.FuncMap, content string) *template.Template {
	t, err := template.New(name).Funcs(funcs).Parse(content)
	if err != nil {
		slog.Error("failed to compile template", "template", name, "error", err)
		os.Exit(1)
	}
	return t
}

// ContentHash returns a short stable fingerprint of a document, used to
// deduplicate concurrent audits of identical input.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:8])
}
