package notion

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ideaforge/internal/core"
	"ideaforge/internal/ideas"
	"ideaforge/internal/textfix"
)

// PageSource is the part of Client the watcher needs.
type PageSource interface {
	QueryPending(ctx context.Context) ([]Page, error)
	MarkDone(ctx context.Context, pageID string, rec core.Record, links core.Links) error
}

// Reviewer scores an idea.
type Reviewer interface {
	Review(ctx context.Context, idea core.Idea) core.Critique
}

// Renderer produces the report and landing page for a reviewed idea.
type Renderer interface {
	RenderReport(rec core.Record) (string, error)
	RenderLanding(rec core.Record) (string, error)
}

// WatcherConfig controls polling.
type WatcherConfig struct {
	Interval time.Duration // Poll interval
	Workers  int           // Pages processed concurrently per poll
}

// Watcher polls the database for pending pages and reviews each one on
// its own worker goroutine.
type Watcher struct {
	source   PageSource
	reviewer Reviewer
	renderer Renderer
	config   WatcherConfig
	log      *slog.Logger
	now      func() time.Time
}

// NewWatcher applies defaults of one minute and four workers.
func NewWatcher(source PageSource, reviewer Reviewer, renderer Renderer, config WatcherConfig, log *slog.Logger) *Watcher {
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{source: source, reviewer: reviewer, renderer: renderer, config: config, log: log, now: time.Now}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		if n, err := w.Poll(ctx); err != nil {
			w.log.Warn("Notion poll failed", "error", err.Error())
		} else if n > 0 {
			w.log.Info("Notion poll complete", "processed", n)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll processes every pending page once and returns how many succeeded.
// A failing page is logged and left pending for the next poll.
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	pages, err := w.source.QueryPending(ctx)
	if err != nil {
		return 0, err
	}

	results := make([]bool, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.config.Workers)
	for i, page := range pages {
		g.Go(func() error {
			results[i] = w.process(gctx, page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	done := 0
	for _, ok := range results {
		if ok {
			done++
		}
	}
	return done, nil
}

func (w *Watcher) process(ctx context.Context, page Page) bool {
	idea := textfix.NormalizeIdea(page.Idea)
	if idea.Name == "" {
		w.log.Warn("Skipping untitled notion page", "page", page.ID)
		return false
	}
	idea.Fingerprint = ideas.Fingerprint(idea.Name, idea.Description)
	idea.CreatedAt = w.now().UTC()

	critique := w.reviewer.Review(ctx, idea)
	idea.Merge(critique)
	idea.Status = core.StatusPublished
	rec := core.Record{Idea: idea, Critique: &critique, RecordedAt: w.now().UTC()}

	links := core.Links{Workspace: page.URL}
	if w.renderer != nil {
		if path, err := w.renderer.RenderReport(rec); err != nil {
			w.log.Warn("Report rendering failed", "page", page.ID, "error", err.Error())
		} else {
			links.Report = path
		}
		if path, err := w.renderer.RenderLanding(rec); err != nil {
			w.log.Warn("Landing page rendering failed", "page", page.ID, "error", err.Error())
		} else {
			links.Landing = path
		}
	}

	if err := w.source.MarkDone(ctx, page.ID, rec, links); err != nil {
		w.log.Warn("Failed to mark notion page done", "page", page.ID, "error", err.Error())
		return false
	}
	w.log.Info("Reviewed notion idea", "page", page.ID, "idea", idea.Name, "score", critique.CriticScore)
	return true
}
