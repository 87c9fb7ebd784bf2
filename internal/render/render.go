// Package render writes published ideas as Markdown reports, HTML landing
// pages and a static dashboard.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ideaforge/internal/core"
)

// Options configures output locations.
type Options struct {
	ReportsDir   string // Markdown reports (default "reports")
	LandingDir   string // Landing pages (default "landing")
	DashboardDir string // Dashboard (default "dashboard")
}

// Renderer implements the report, landing and dashboard sinks.
type Renderer struct {
	opts Options
	now  func() time.Time
}

// NewRenderer applies defaults to opts.
func NewRenderer(opts Options) *Renderer {
	if opts.ReportsDir == "" {
		opts.ReportsDir = "reports"
	}
	if opts.LandingDir == "" {
		opts.LandingDir = "landing"
	}
	if opts.DashboardDir == "" {
		opts.DashboardDir = "dashboard"
	}
	return &Renderer{opts: opts, now: time.Now}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug makes a URL- and filename-safe identifier from a name.
func Slug(name string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "idea"
	}
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	return s
}

// RecordSlug is the slug of a record's landing page. The fingerprint keeps
// ideas with the same name apart.
func RecordSlug(rec core.Record) string {
	s := Slug(rec.Idea.Name)
	if rec.Idea.Fingerprint != "" {
		s += "-" + rec.Idea.Fingerprint[:min(6, len(rec.Idea.Fingerprint))]
	}
	return s
}

// WriteFile writes content under dir and returns the file path.
func WriteFile(content []byte, dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return path, nil
}

func scoreText(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d/100", *v)
}
