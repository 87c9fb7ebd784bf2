package observability

import (
	"fmt"
	"log/slog"

	"github.com/posthog/posthog-go"

	"ideaforge/internal/core"
)

// Event names.
const (
	EventIdeaPublished = "idea_published"
	EventIdeaRejected  = "idea_rejected"
)

// DistinctID identifies the pipeline process in analytics.
const DistinctID = "ideaforge-pipeline"

// Config holds PostHog settings.
type Config struct {
	Enabled bool
	APIKey  string
	Host    string
}

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

type enqueuer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  enqueuer
	enabled bool
	log     *slog.Logger
}

// NewPostHogClient creates a new PostHog analytics client. A disabled
// config yields a client whose methods do nothing.
func NewPostHogClient(cfg Config, log *slog.Logger) (*PostHogClient, error) {
	if log == nil {
		log = slog.Default()
	}
	if !cfg.Enabled {
		return &PostHogClient{enabled: false, log: log}, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PostHog enabled but missing API key")
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}
	return &PostHogClient{client: client, enabled: true, log: log}, nil
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(event string, properties EventProperties) error {
	if !p.enabled {
		return nil
	}
	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	return p.client.Enqueue(posthog.Capture{
		DistinctId: DistinctID,
		Event:      event,
		Properties: props,
	})
}

func recordProperties(rec core.Record) EventProperties {
	props := EventProperties{
		"idea_id":      rec.Idea.ID,
		"fingerprint":  rec.Idea.Fingerprint,
		"vertical":     rec.Idea.Vertical,
		"type":         rec.Idea.Type,
		"monetization": rec.Idea.Monetization,
	}
	if rec.Critique != nil {
		props["critic_score"] = rec.Critique.CriticScore
		props["virality_score"] = rec.Critique.ViralityScore
		props["generator_score"] = rec.Critique.GeneratorScore
		props["critique_source"] = rec.Critique.Source
	}
	if rec.Reason != "" {
		props["reason"] = rec.Reason
	}
	return props
}

// TrackPublished records an idea_published event.
func (p *PostHogClient) TrackPublished(rec core.Record) {
	if err := p.Capture(EventIdeaPublished, recordProperties(rec)); err != nil {
		p.log.Warn("Failed to track event", "event", EventIdeaPublished, "error", err.Error())
	}
}

// TrackRejected records an idea_rejected event.
func (p *PostHogClient) TrackRejected(rec core.Record) {
	if err := p.Capture(EventIdeaRejected, recordProperties(rec)); err != nil {
		p.log.Warn("Failed to track event", "event", EventIdeaRejected, "error", err.Error())
	}
}

// Close flushes pending events.
func (p *PostHogClient) Close() error {
	if !p.enabled || p.client == nil {
		return nil
	}
	return p.client.Close()
}
