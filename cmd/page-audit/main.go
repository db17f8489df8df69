// Page Audit CLI
// Runs the usability checks against local HTML or Markdown files without a running server
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"audit-server/internal/audit"
	"audit-server/internal/render"
)

var (
	targetPath string
	viewport   int
	jsonOutput bool
	outputFile string
	verbose    bool
	watchMode  bool
)

type fileResult struct {
	File   string        `json:"file"`
	Result *audit.Result `json:"result"`
}

func main() {
	flag.StringVar(&targetPath, "path", "", "File, directory, or glob of HTML/Markdown documents to audit")
	flag.IntVar(&viewport, "viewport", render.DefaultViewportWidth, "Viewport width in pixels")
	flag.BoolVar(&jsonOutput, "json", false, "Print results as JSON instead of text")
	flag.StringVar(&outputFile, "output", "", "Also write a standalone HTML report to this file")
	flag.BoolVar(&verbose, "v", false, "Verbose output")
	flag.BoolVar(&watchMode, "watch", false, "Re-run the audit whenever a file changes (single file only)")
	flag.Parse()

	if targetPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: page-audit -path <file|dir|glob> [-viewport 375] [-json] [-output report.html] [-watch]")
		os.Exit(2)
	}

	files, err := resolveTargets(targetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No auditable files found at %s\n", targetPath)
		os.Exit(1)
	}
	if watchMode && len(files) != 1 {
		fmt.Fprintln(os.Stderr, "-watch needs a single file")
		os.Exit(2)
	}

	if err := auditAll(files); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if watchMode {
		if err := watchFile(files[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// resolveTargets expands -path into a sorted file list: a single file, every
// auditable file directly inside a directory, or a glob match.
func resolveTargets(pattern string) ([]string, error) {
	info, err := os.Stat(pattern)
	if err == nil && !info.IsDir() {
		return []string{pattern}, nil
	}
	if err == nil && info.IsDir() {
		entries, err := os.ReadDir(pattern)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && auditableExt(e.Name()) {
				files = append(files, filepath.Join(pattern, e.Name()))
			}
		}
		sort.Strings(files)
		return files, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	var files []string
	for _, m := range matches {
		if auditableExt(m) {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func auditableExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".md", ".markdown":
		return true
	}
	return false
}

func auditAll(files []string) error {
	var results []fileResult
	for _, file := range files {
		result, elapsed, err := auditFile(file)
		if err != nil {
			if len(files) == 1 {
				return err
			}
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", file, err)
			continue
		}
		results = append(results, fileResult{File: file, Result: result})
		if !jsonOutput {
			printResult(file, result, elapsed)
		}
	}
	if len(results) == 0 {
		return fmt.Errorf("no files could be audited")
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			if err := enc.Encode(results[0].Result); err != nil {
				return err
			}
		} else if err := enc.Encode(results); err != nil {
			return err
		}
	}

	if outputFile != "" {
		if err := writeHTMLReport(results); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if !jsonOutput {
			fmt.Printf("Report saved to: %s\n", outputFile)
		}
	}
	return nil
}

func auditFile(file string) (*audit.Result, time.Duration, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, 0, err
	}

	ext := strings.ToLower(filepath.Ext(file))
	markdown := ext == ".md" || ext == ".markdown"

	start := time.Now()
	page, err := render.Render(string(content), render.Options{
		ViewportWidth: viewport,
		Markdown:      markdown,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("render %s: %w", file, err)
	}

	result, err := audit.Analyze(page, page.StyleResolver())
	if err != nil {
		return nil, 0, fmt.Errorf("analyze %s: %w", file, err)
	}
	return result, time.Since(start), nil
}

func printResult(file string, result *audit.Result, elapsed time.Duration) {
	fmt.Printf("Page Audit\n")
	fmt.Printf("========================================\n")
	fmt.Printf("File:     %s\n", file)
	fmt.Printf("Viewport: %dpx\n", viewport)
	if verbose {
		fmt.Printf("Analyzed in %s\n", elapsed.Round(time.Millisecond))
	}
	fmt.Printf("\nScore: %d/100 (%s)\n\n", result.Score, audit.Label(result.Score))

	fmt.Printf("Findings:\n")
	for _, issue := range result.Issues {
		fmt.Printf("  [%-8s] %s\n", issue.Severity, issue.Text)
	}

	fmt.Printf("\nSummary:\n")
	for i, line := range result.Summary {
		fmt.Printf("  %d. %s\n", i+1, line)
	}
	fmt.Println()
}

func watchFile(file string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors often replace the file
	// on save, which drops a watch on the file itself.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return err
	}
	target := filepath.Clean(file)

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", file)

	var lastRun time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire several events per save
			if time.Since(lastRun) < 200*time.Millisecond {
				continue
			}
			lastRun = time.Now()

			fmt.Printf("\n--- %s changed at %s ---\n", file, lastRun.Format("15:04:05"))
			if err := auditAll([]string{file}); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
		}
	}
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Page Audit Report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 760px; margin: 40px auto; padding: 0 20px; color: #333; }
h1 { border-bottom: 2px solid #667eea; padding-bottom: 8px; }
h2 { margin-top: 36px; }
.score { font-size: 48px; font-weight: bold; }
.label { font-size: 18px; color: #666; }
.meta { color: #888; font-size: 13px; }
ul { list-style: none; padding: 0; }
li { padding: 10px 14px; border: 1px solid #e1e4e8; border-radius: 6px; margin-bottom: 8px; }
.critical { border-left: 4px solid #c62828; }
.warning { border-left: 4px solid #f59e0b; }
.ok { border-left: 4px solid #22c55e; }
.badge { font-size: 11px; font-weight: 700; text-transform: uppercase; margin-right: 8px; color: #666; }
ol { color: #444; }
</style>
</head>
<body>
<h1>Page Audit Report</h1>
<p class="meta">Viewport {{.Viewport}}px, generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
{{range .Files}}
<h2>{{.File}}</h2>
<p><span class="score">{{.Result.Score}}</span><span class="label"> / 100 &mdash; {{.Label}}</span></p>
<h3>Findings</h3>
<ul>
{{range .Result.Issues}}<li class="{{.Severity}}"><span class="badge">{{.Severity}}</span>{{.Text}}</li>
{{end}}</ul>
<h3>Summary</h3>
<ol>
{{range .Result.Summary}}<li>{{.}}</li>
{{end}}</ol>
{{end}}
</body>
</html>`))

func writeHTMLReport(results []fileResult) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	type labeled struct {
		File   string
		Result *audit.Result
		Label  string
	}
	data := struct {
		Viewport    int
		GeneratedAt time.Time
		Files       []labeled
	}{Viewport: viewport, GeneratedAt: time.Now()}
	for _, r := range results {
		data.Files = append(data.Files, labeled{File: r.File, Result: r.Result, Label: audit.Label(r.Result.Score)})
	}
	return reportTemplate.Execute(f, data)
}
