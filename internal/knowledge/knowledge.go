// Package knowledge aggregates historical critic scores into a snapshot
// whose hints bias the next generation prompt.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"ideaforge/internal/core"
)

// Quality bands used by insights.
const (
	HighQualityScore = 80
	GoodScore        = 65
)

// Bucket is one histogram bin with inclusive bounds.
type Bucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Ranked is an aggregate for one vertical, type or monetization model.
type Ranked struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Snapshot is the persisted aggregate over all historical ideas.
type Snapshot struct {
	TotalIdeas      int       `json:"total_ideas"`      // All ideas, scored or not
	ScoredIdeas     int       `json:"scored_ideas"`     // Ideas with a critic score
	AverageScore    float64   `json:"average_score"`    // Mean critic score over scored ideas
	MedianScore     float64   `json:"median_score"`     // Median critic score over scored ideas
	Distribution    []Bucket  `json:"distribution"`     // Fixed 4-bucket histogram
	TopVerticals    []Ranked  `json:"top_verticals"`    // Up to 5, by average score
	TopTypes        []Ranked  `json:"top_types"`        // Up to 3, by average score
	TopMonetization []Ranked  `json:"top_monetization"` // Up to 3, by frequency
	Insights        []string  `json:"insights"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func emptyBuckets() []Bucket {
	return []Bucket{
		{Label: "0-50", Min: 0, Max: 50},
		{Label: "51-70", Min: 51, Max: 70},
		{Label: "71-80", Min: 71, Max: 80},
		{Label: "81-100", Min: 81, Max: 100},
	}
}

// Analyze recomputes the snapshot from the full record set. Ties keep
// insertion order.
func Analyze(records []core.Record, now time.Time) Snapshot {
	snap := Snapshot{
		TotalIdeas:   len(records),
		Distribution: emptyBuckets(),
		UpdatedAt:    now,
	}

	var scores []float64
	verticals := newGrouping()
	types := newGrouping()
	monetization := newGrouping()

	for _, rec := range records {
		idea := rec.Idea
		monetization.add(idea.Monetization, 0, false)

		score, ok := idea.Score()
		if !ok {
			continue
		}
		scores = append(scores, float64(score))
		for i := range snap.Distribution {
			b := &snap.Distribution[i]
			if score >= b.Min && score <= b.Max {
				b.Count++
				break
			}
		}
		verticals.add(idea.Vertical, score, true)
		types.add(idea.Type, score, true)
	}

	snap.ScoredIdeas = len(scores)
	if len(scores) > 0 {
		snap.AverageScore, _ = stats.Mean(scores)
		snap.MedianScore, _ = stats.Median(scores)
		snap.AverageScore = round1(snap.AverageScore)
		snap.MedianScore = round1(snap.MedianScore)
	}
	snap.TopVerticals = verticals.byAverage(5)
	snap.TopTypes = types.byAverage(3)
	snap.TopMonetization = monetization.byCount(3)
	snap.Insights = Insights(snap)
	return snap
}

func round1(v float64) float64 {
	r, err := stats.Round(v, 1)
	if err != nil {
		return v
	}
	return r
}

type grouping struct {
	order  []string
	scores map[string][]float64
	counts map[string]int
}

func newGrouping() *grouping {
	return &grouping{scores: map[string][]float64{}, counts: map[string]int{}}
}

func (g *grouping) add(name string, score int, scored bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	if _, seen := g.counts[name]; !seen {
		g.order = append(g.order, name)
	}
	g.counts[name]++
	if scored {
		g.scores[name] = append(g.scores[name], float64(score))
	}
}

func (g *grouping) byAverage(limit int) []Ranked {
	ranked := []Ranked{}
	for _, name := range g.order {
		s := g.scores[name]
		if len(s) == 0 {
			continue
		}
		avg, _ := stats.Mean(s)
		ranked = append(ranked, Ranked{Name: name, Average: round1(avg), Count: len(s)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Average > ranked[j].Average })
	return head(ranked, limit)
}

func (g *grouping) byCount(limit int) []Ranked {
	ranked := make([]Ranked, 0, len(g.order))
	for _, name := range g.order {
		r := Ranked{Name: name, Count: g.counts[name]}
		if s := g.scores[name]; len(s) > 0 {
			avg, _ := stats.Mean(s)
			r.Average = round1(avg)
		}
		ranked = append(ranked, r)
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	return head(ranked, limit)
}

func head(r []Ranked, n int) []Ranked {
	if len(r) > n {
		return r[:n]
	}
	return r
}

// QualityLabel maps an average score to its band.
func QualityLabel(avg float64) string {
	switch {
	case avg >= HighQualityScore:
		return "high quality"
	case avg >= GoodScore:
		return "good"
	default:
		return "needs improvement"
	}
}

// Insights renders human-readable observations from a snapshot.
func Insights(s Snapshot) []string {
	if s.ScoredIdeas == 0 {
		return []string{}
	}
	out := []string{
		fmt.Sprintf("Overall quality: %s (avg: %.1f over %d ideas)", QualityLabel(s.AverageScore), s.AverageScore, s.ScoredIdeas),
	}
	if len(s.TopVerticals) > 0 {
		v := s.TopVerticals[0]
		out = append(out, fmt.Sprintf("Best vertical: %s (avg: %.1f)", v.Name, v.Average))
	}
	if len(s.TopTypes) > 0 {
		t := s.TopTypes[0]
		out = append(out, fmt.Sprintf("Best idea type: %s (avg: %.1f)", t.Name, t.Average))
	}
	if len(s.TopMonetization) > 0 {
		m := s.TopMonetization[0]
		out = append(out, fmt.Sprintf("Most used monetization: %s (%d ideas)", m.Name, m.Count))
	}
	return out
}

// MaxHints caps PromptHints.
const MaxHints = 5

// PromptHints returns short strings for direct interpolation into the
// generation prompt.
func PromptHints(s Snapshot) []string {
	if s.ScoredIdeas == 0 {
		return nil
	}
	hints := []string{}
	if names := names(s.TopVerticals, 3); names != "" {
		hints = append(hints, "Verticals that scored well: "+names)
	}
	if names := names(s.TopTypes, 3); names != "" {
		hints = append(hints, "Idea types that scored well: "+names)
	}
	if names := names(s.TopMonetization, 3); names != "" {
		hints = append(hints, "Common monetization models: "+names)
	}
	hints = append(hints, fmt.Sprintf("Average critic score so far is %.0f (%s); aim higher", s.AverageScore, QualityLabel(s.AverageScore)))
	if len(hints) > MaxHints {
		hints = hints[:MaxHints]
	}
	return hints
}

func names(r []Ranked, n int) string {
	r = head(r, n)
	parts := make([]string, len(r))
	for i, x := range r {
		parts[i] = x.Name
	}
	return strings.Join(parts, ", ")
}

// RecordSource lists the published records.
type RecordSource interface {
	List() ([]core.Record, error)
}

// Base persists the snapshot to a JSON document that is fully overwritten
// on every refresh.
type Base struct {
	path string
	now  func() time.Time
}

// SnapshotFile is the default file name inside the data directory.
const SnapshotFile = "knowledge.json"

// NewBase returns a knowledge base stored under dataDir.
func NewBase(dataDir string) *Base {
	return &Base{path: filepath.Join(dataDir, SnapshotFile), now: time.Now}
}

// Path returns the snapshot file location.
func (b *Base) Path() string { return b.path }

// Refresh recomputes the snapshot from src and saves it.
func (b *Base) Refresh(src RecordSource) (Snapshot, error) {
	records, err := src.List()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list records: %w", err)
	}
	snap := Analyze(records, b.now().UTC())
	if err := b.Save(snap); err != nil {
		return snap, err
	}
	return snap, nil
}

// Load reads the last saved snapshot. A missing file yields an empty one.
func (b *Base) Load() (Snapshot, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{Distribution: emptyBuckets()}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read knowledge snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse knowledge snapshot: %w", err)
	}
	return snap, nil
}

// Save overwrites the snapshot file.
func (b *Base) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create knowledge directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal knowledge snapshot: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write knowledge snapshot: %w", err)
	}
	return os.Rename(tmp, b.path)
}
