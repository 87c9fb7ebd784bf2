// Package pipeline drives generate, critique and decide cycles and hands
// accepted ideas to the publication sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ideaforge/internal/core"
	"ideaforge/internal/ideas"
	"ideaforge/internal/knowledge"
)

// State of the feedback loop.
type State string

const (
	StateGenerating State = "GENERATING"
	StateCritiquing State = "CRITIQUING"
	StateDeciding   State = "DECIDING"
	StatePublished  State = "PUBLISHED"
	StateRejected   State = "REJECTED"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StatePublished || s == StateRejected
}

// Rejection reasons.
const (
	ReasonGenerationFailed = "generation failed"
	ReasonDuplicatesOnly   = "only duplicate ideas were generated"
	ReasonStoreFailed      = "idea store write failed"
)

// ErrStoreWrite wraps a failure to append a published record.
var ErrStoreWrite = errors.New("pipeline: failed to store published idea")

// Config holds controller settings.
type Config struct {
	MinScore      int  // Inclusive publication threshold
	MaxCycles     int  // Generate-critique-decide cycles per run
	FeedbackHints bool // Tell the next cycle which ideas were rejected
}

// DefaultConfig returns MinScore 65 and 3 cycles.
func DefaultConfig() Config {
	return Config{MinScore: DefaultMinScore, MaxCycles: 3}
}

// RunOptions are per-run inputs.
type RunOptions struct {
	Focus string
}

// Attempt records what one cycle did.
type Attempt struct {
	Cycle     int    `json:"cycle"`
	Idea      string `json:"idea,omitempty"`
	Status    string `json:"status"` // generation status, duplicate, published or rejected
	Score     *int   `json:"score,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Outcome is the terminal result of a run.
type Outcome struct {
	State    State        `json:"state"`
	Record   *core.Record `json:"record,omitempty"`
	Links    core.Links   `json:"links"`
	Reason   string       `json:"reason,omitempty"`
	Cycles   int          `json:"cycles"`
	Attempts []Attempt    `json:"attempts"`
	Trace    []State      `json:"trace"`
}

// Published reports whether the run ended in PUBLISHED.
func (o Outcome) Published() bool { return o.State == StatePublished }

// Controller runs the feedback loop. It is sequential and not safe for
// concurrent Run calls against the same store.
type Controller struct {
	config    Config
	gate      Gate
	generator IdeaGenerator
	critic    IdeaCritic
	store     IdeaStore
	knowledge KnowledgeBase
	report    ReportRenderer
	landing   LandingRenderer
	dashboard DashboardRenderer
	workspace WorkspaceSync
	notifier  Notifier
	tracker   EventTracker
	log       *slog.Logger
	now       func() time.Time
}

type run struct {
	outcome Outcome
}

func (r *run) enter(s State) {
	r.outcome.State = s
	r.outcome.Trace = append(r.outcome.Trace, s)
}

// Run performs at most MaxCycles cycles and always ends in PUBLISHED or
// REJECTED. The error is non-nil only when a passing idea could not be
// written to the store.
func (c *Controller) Run(ctx context.Context, opts RunOptions) (Outcome, error) {
	r := &run{}
	hints := ideas.Hints{Insights: c.promptHints(), Focus: opts.Focus}

	var lastRejected *core.Record
	duplicates, failures := 0, 0

	for cycle := 1; cycle <= c.config.MaxCycles; cycle++ {
		r.outcome.Cycles = cycle
		r.enter(StateGenerating)

		res := c.generator.Generate(ctx, hints)
		if !res.OK() {
			failures++
			c.log.Warn("Cycle produced no idea", "cycle", cycle, "status", res.Status.String())
			r.outcome.Attempts = append(r.outcome.Attempts, Attempt{Cycle: cycle, Status: res.Status.String()})
			continue
		}
		if res.Duplicate {
			duplicates++
			c.log.Info("Discarding duplicate idea", "cycle", cycle, "idea", res.Idea.Name, "fingerprint", res.Idea.Fingerprint)
			r.outcome.Attempts = append(r.outcome.Attempts, Attempt{Cycle: cycle, Idea: res.Idea.Name, Status: "duplicate", Duplicate: true})
			if c.config.FeedbackHints {
				hints.Avoid = append(hints.Avoid, res.Idea.Name)
			}
			continue
		}

		r.enter(StateCritiquing)
		idea := res.Idea
		critique := c.critic.Review(ctx, idea)
		idea.Merge(critique)

		r.enter(StateDeciding)
		score := critique.CriticScore
		if c.gate.Publish(score) {
			r.outcome.Attempts = append(r.outcome.Attempts, Attempt{Cycle: cycle, Idea: idea.Name, Status: "published", Score: core.IntPtr(score)})
			return c.publish(ctx, r, idea, critique)
		}

		c.log.Info("Idea below threshold", "cycle", cycle, "idea", idea.Name, "score", score, "min_score", c.config.MinScore)
		r.outcome.Attempts = append(r.outcome.Attempts, Attempt{Cycle: cycle, Idea: idea.Name, Status: "rejected", Score: core.IntPtr(score)})
		idea.Status = core.StatusRejected
		crit := critique
		lastRejected = &core.Record{
			Idea:     idea,
			Critique: &crit,
			Reason:   fmt.Sprintf("critic score %d below minimum %d after %d cycles", score, c.config.MinScore, c.config.MaxCycles),
		}
		if c.config.FeedbackHints {
			hints.Avoid = append(hints.Avoid, idea.Name)
		}
	}

	r.enter(StateRejected)
	switch {
	case lastRejected != nil:
		lastRejected.RecordedAt = c.now().UTC()
		r.outcome.Record = lastRejected
		r.outcome.Reason = lastRejected.Reason
		if err := c.store.AppendRejected(*lastRejected); err != nil {
			c.log.Error("Failed to write rejected idea", "idea", lastRejected.Idea.Name, "error", err.Error())
		}
		if c.tracker != nil {
			c.tracker.TrackRejected(*lastRejected)
		}
	case duplicates > 0 && failures == 0:
		r.outcome.Reason = ReasonDuplicatesOnly
	default:
		r.outcome.Reason = ReasonGenerationFailed
	}
	c.log.Warn("Run ended without publication", "reason", r.outcome.Reason, "cycles", r.outcome.Cycles)
	return r.outcome, nil
}

func (c *Controller) promptHints() []string {
	if c.knowledge == nil {
		return nil
	}
	snap, err := c.knowledge.Load()
	if err != nil {
		c.log.Warn("Knowledge snapshot unavailable", "error", err.Error())
		return nil
	}
	return knowledge.PromptHints(snap)
}

func (c *Controller) publish(ctx context.Context, r *run, idea core.Idea, critique core.Critique) (Outcome, error) {
	idea.Status = core.StatusPublished
	rec := core.Record{Idea: idea, Critique: &critique, RecordedAt: c.now().UTC()}

	if err := c.store.Append(rec); err != nil {
		r.enter(StateRejected)
		r.outcome.Reason = ReasonStoreFailed
		return r.outcome, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	r.enter(StatePublished)
	r.outcome.Record = &rec
	c.log.Info("Idea published", "idea", idea.Name, "score", critique.CriticScore, "fingerprint", idea.Fingerprint)

	var snap knowledge.Snapshot
	if c.knowledge != nil {
		var err error
		if snap, err = c.knowledge.Refresh(c.store); err != nil {
			c.log.Warn("Knowledge refresh failed", "error", err.Error())
		}
	}

	r.outcome.Links = c.runSinks(ctx, rec, snap)
	if c.tracker != nil {
		c.tracker.TrackPublished(rec)
	}
	return r.outcome, nil
}

// runSinks renders and distributes a published record. Failures are
// logged and never change the outcome.
func (c *Controller) runSinks(ctx context.Context, rec core.Record, snap knowledge.Snapshot) core.Links {
	var links core.Links
	if c.report != nil {
		if path, err := c.report.RenderReport(rec); err != nil {
			c.log.Warn("Report rendering failed", "error", err.Error())
		} else {
			links.Report = path
		}
	}
	if c.landing != nil {
		if path, err := c.landing.RenderLanding(rec); err != nil {
			c.log.Warn("Landing page rendering failed", "error", err.Error())
		} else {
			links.Landing = path
		}
	}
	if c.dashboard != nil {
		records, err := c.store.List()
		if err != nil {
			c.log.Warn("Dashboard skipped, store unreadable", "error", err.Error())
		} else if path, err := c.dashboard.RenderDashboard(records, snap); err != nil {
			c.log.Warn("Dashboard rendering failed", "error", err.Error())
		} else {
			links.Dashboard = path
		}
	}
	if c.workspace != nil {
		if url, err := c.workspace.SyncIdea(ctx, rec); err != nil {
			c.log.Warn("Workspace sync failed", "idea", rec.Idea.Name, "error", err.Error())
		} else {
			links.Workspace = url
		}
	}
	if c.notifier != nil {
		c.notifier.Notify(ctx, core.Publication{Record: rec, Links: links})
	}
	return links
}
