package pipeline

import (
	"context"

	"ideaforge/internal/core"
	"ideaforge/internal/ideas"
	"ideaforge/internal/knowledge"
)

// IdeaGenerator produces one idea per call.
type IdeaGenerator interface {
	Generate(ctx context.Context, hints ideas.Hints) ideas.Result
}

// IdeaCritic scores an idea and never fails.
type IdeaCritic interface {
	Review(ctx context.Context, idea core.Idea) core.Critique
}

// IdeaStore is the published store plus the rejected log.
type IdeaStore interface {
	Append(rec core.Record) error
	AppendRejected(rec core.Record) error
	List() ([]core.Record, error)
}

// KnowledgeBase stores the aggregate snapshot.
type KnowledgeBase interface {
	Load() (knowledge.Snapshot, error)
	Refresh(src knowledge.RecordSource) (knowledge.Snapshot, error)
}

// ReportRenderer turns a record into a Markdown report and returns its path.
type ReportRenderer interface {
	RenderReport(rec core.Record) (string, error)
}

// LandingRenderer turns a record into a landing page and returns its path.
type LandingRenderer interface {
	RenderLanding(rec core.Record) (string, error)
}

// DashboardRenderer renders the full store into a static dashboard.
type DashboardRenderer interface {
	RenderDashboard(records []core.Record, snap knowledge.Snapshot) (string, error)
}

// WorkspaceSync mirrors a record to a remote workspace and returns its URL.
type WorkspaceSync interface {
	SyncIdea(ctx context.Context, rec core.Record) (string, error)
}

// Notifier delivers a publication. Delivery errors are handled inside.
type Notifier interface {
	Notify(ctx context.Context, pub core.Publication)
}

// EventTracker records analytics events.
type EventTracker interface {
	TrackPublished(rec core.Record)
	TrackRejected(rec core.Record)
}
