package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Idea status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// Critique sources.
const (
	SourceLLM     = "llm"
	SourceDefault = "default"
)

// Idea represents one generated business concept.
type Idea struct {
	ID             string    `json:"id"`                        // Unique identifier for the idea
	Name           string    `json:"name"`                      // Product name
	Problem        string    `json:"problem"`                   // Problem being solved
	Solution       string    `json:"solution"`                  // Proposed solution
	Description    string    `json:"description"`               // Short pitch
	Vertical       string    `json:"vertical"`                  // Target vertical (e.g., "healthcare", "devtools")
	Type           string    `json:"type"`                      // Idea type (e.g., "saas", "marketplace")
	Monetization   string    `json:"monetization"`              // Monetization model
	Price          Price     `json:"price"`                     // Suggested price, free-form
	Effort         string    `json:"effort"`                    // Effort estimate
	Fingerprint    string    `json:"fingerprint"`               // Short hash of normalized name+description
	GeneratorScore *int      `json:"generator_score,omitempty"` // Score assigned by the generator or critic
	CriticScore    *int      `json:"critic_score,omitempty"`    // Viability score from the critic
	ViralityScore  *int      `json:"virality_score,omitempty"`  // Virality score from the critic
	Status         string    `json:"status"`                    // draft, published, rejected
	CreatedAt      time.Time `json:"created_at"`                // Timestamp when the idea was generated
}

// Critique is the critic's structured verdict on one Idea.
type Critique struct {
	CriticScore    int      `json:"critic_score"`    // Viability, 0-100
	ViralityScore  int      `json:"virality_score"`  // Virality, 0-100
	GeneratorScore int      `json:"generator_score"` // Execution quality, 0-100
	Strengths      []string `json:"strengths"`       // Never empty after validation
	Weaknesses     []string `json:"weaknesses"`      // Never empty after validation
	Summary        string   `json:"summary"`         // One-paragraph verdict
	Source         string   `json:"source"`          // "llm" or "default"
}

// Record is the unit written to the idea store and the rejected log.
type Record struct {
	Idea       Idea      `json:"idea"`
	Critique   *Critique `json:"critique,omitempty"`
	Reason     string    `json:"reason,omitempty"` // Rejection reason, empty for published records
	RecordedAt time.Time `json:"recorded_at"`
}

// Merge folds the critique scores into the idea. Critic and virality scores
// are always taken from the critique; an existing generator score is kept.
func (i *Idea) Merge(c Critique) {
	critic, virality := c.CriticScore, c.ViralityScore
	i.CriticScore = &critic
	i.ViralityScore = &virality
	if i.GeneratorScore == nil {
		gen := c.GeneratorScore
		i.GeneratorScore = &gen
	}
}

// Score returns the critic score and whether one is known.
func (i Idea) Score() (int, bool) {
	if i.CriticScore == nil {
		return 0, false
	}
	return *i.CriticScore, true
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// Price holds a suggested price as text. LLM output uses both JSON numbers
// and strings for it.
type Price string

// UnmarshalJSON accepts a string, a number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(strings.TrimSpace(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

func (p Price) String() string { return string(p) }

// Links points at the artifacts produced for a published idea.
type Links struct {
	Report    string `json:"report,omitempty"`    // Markdown report path
	Landing   string `json:"landing,omitempty"`   // Landing page path or URL
	Dashboard string `json:"dashboard,omitempty"` // Dashboard path or URL
	Workspace string `json:"workspace,omitempty"` // Remote workspace record URL
}

// Publication is what downstream notifiers receive.
type Publication struct {
	Record Record `json:"record"`
	Links  Links  `json:"links"`
}
