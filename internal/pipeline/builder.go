package pipeline

import (
	"fmt"
	"log/slog"
	"time"
)

// Builder helps construct a fully configured Controller.
type Builder struct {
	c Controller
}

// NewBuilder creates a builder with default settings.
func NewBuilder() *Builder {
	return &Builder{c: Controller{
		config: DefaultConfig(),
		log:    slog.Default(),
		now:    time.Now,
	}}
}

// WithConfig sets the controller configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.c.config = config
	return b
}

// WithGenerator sets the idea generator.
func (b *Builder) WithGenerator(g IdeaGenerator) *Builder {
	b.c.generator = g
	return b
}

// WithCritic sets the critic.
func (b *Builder) WithCritic(c IdeaCritic) *Builder {
	b.c.critic = c
	return b
}

// WithStore sets the idea store.
func (b *Builder) WithStore(s IdeaStore) *Builder {
	b.c.store = s
	return b
}

// WithKnowledge sets the knowledge base.
func (b *Builder) WithKnowledge(k KnowledgeBase) *Builder {
	b.c.knowledge = k
	return b
}

// WithReportRenderer sets the Markdown report sink.
func (b *Builder) WithReportRenderer(r ReportRenderer) *Builder {
	b.c.report = r
	return b
}

// WithLandingRenderer sets the landing page sink.
func (b *Builder) WithLandingRenderer(r LandingRenderer) *Builder {
	b.c.landing = r
	return b
}

// WithDashboardRenderer sets the dashboard sink.
func (b *Builder) WithDashboardRenderer(r DashboardRenderer) *Builder {
	b.c.dashboard = r
	return b
}

// WithWorkspaceSync sets the remote workspace sink.
func (b *Builder) WithWorkspaceSync(w WorkspaceSync) *Builder {
	b.c.workspace = w
	return b
}

// WithNotifier sets the chat notifier.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.c.notifier = n
	return b
}

// WithTracker sets the analytics tracker.
func (b *Builder) WithTracker(t EventTracker) *Builder {
	b.c.tracker = t
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.c.log = l
	}
	return b
}

// WithClock overrides time.Now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	if now != nil {
		b.c.now = now
	}
	return b
}

// Build validates required components and returns the controller.
func (b *Builder) Build() (*Controller, error) {
	if b.c.generator == nil {
		return nil, fmt.Errorf("idea generator is required")
	}
	if b.c.critic == nil {
		return nil, fmt.Errorf("critic is required")
	}
	if b.c.store == nil {
		return nil, fmt.Errorf("idea store is required")
	}
	if b.c.config.MaxCycles <= 0 {
		b.c.config.MaxCycles = DefaultConfig().MaxCycles
	}
	b.c.gate = Gate{MinScore: b.c.config.MinScore}
	c := b.c
	return &c, nil
}
