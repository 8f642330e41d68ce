// Package report implements stage 5: rendering the ranked set into per-label
// Markdown and HTML reports sized for mobile reading.
package report

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"paperbot/config"
	"paperbot/types"
)

//go:embed templates/report.md.tmpl templates/report.html.tmpl
var templateFS embed.FS

type templateData struct {
	Label    string
	Date     string
	Articles []*types.Article
}

func authorsOrFallback(s string) string {
	if s == "" {
		return "Not Available"
	}
	return s
}

func mdFuncs() texttemplate.FuncMap {
	return texttemplate.FuncMap{
		"authors": authorsOrFallback,
		"abstract": func(s string) string {
			if s == "" {
				return "N/A"
			}
			// Continuation lines stay inside the blockquote.
			return strings.ReplaceAll(s, "\n", "\n> ")
		},
	}
}

func htmlFuncs() htmltemplate.FuncMap {
	return htmltemplate.FuncMap{
		"authors": authorsOrFallback,
		"abstract": func(s string) string {
			if s == "" {
				return "N/A"
			}
			return s
		},
	}
}

// Writer renders ranked output into dated report directories.
type Writer struct {
	reportsDir string
	md         *texttemplate.Template
	html       *htmltemplate.Template
}

// NewWriter parses the embedded templates. Template errors are programmer
// errors, so this only fails when a template edit broke parsing.
func NewWriter(reportsDir string) (*Writer, error) {
	md, err := texttemplate.New("report.md.tmpl").Funcs(mdFuncs()).ParseFS(templateFS, "templates/report.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse markdown template: %w", err)
	}
	html, err := htmltemplate.New("report.html.tmpl").Funcs(htmlFuncs()).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	return &Writer{reportsDir: reportsDir, md: md, html: html}, nil
}

// Write renders one Markdown and one HTML report per label into
// <reportsDir>/YYYY-MM-DD/. The catch-all label is skipped. Returns the
// paths of every file written.
func (w *Writer) Write(ranked types.RankedSet) ([]string, error) {
	date := time.Now().Format("2006-01-02")
	outDir := filepath.Join(w.reportsDir, date)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	var paths []string
	for label, articles := range ranked {
		if label == config.OthersLabel {
			continue
		}
		if len(articles) > config.ReportLimit {
			articles = articles[:config.ReportLimit]
		}

		data := templateData{Label: label, Date: date, Articles: articles}
		base := filepath.Join(outDir, safeFilename(label))

		mdPath := base + ".md"
		if err := w.renderMarkdown(mdPath, data); err != nil {
			return paths, err
		}
		paths = append(paths, mdPath)

		htmlPath := base + ".html"
		if err := w.renderHTML(htmlPath, data); err != nil {
			return paths, err
		}
		paths = append(paths, htmlPath)

		slog.Debug("report written", "label", label, "articles", len(articles))
	}
	slog.Info("reports generated", "labels", len(paths)/2, "dir", outDir)
	return paths, nil
}

func (w *Writer) renderMarkdown(path string, data templateData) error {
	return renderAtomic(path, func(out io.Writer) error {
		return w.md.Execute(out, data)
	})
}

func (w *Writer) renderHTML(path string, data templateData) error {
	return renderAtomic(path, func(out io.Writer) error {
		return w.html.Execute(out, data)
	})
}

// renderAtomic renders into a temp file and renames it into place, so a
// mid-render failure never leaves a truncated report behind.
func renderAtomic(path string, render func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

// safeFilename makes a label usable as a file name.
func safeFilename(label string) string {
	s := strings.ReplaceAll(label, "/", "_")
	return strings.ReplaceAll(s, " ", "_")
}
