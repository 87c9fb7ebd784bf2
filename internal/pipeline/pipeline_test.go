package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/core"
	"ideaforge/internal/ideas"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/logger"
	"ideaforge/internal/store"
)

// scriptedGenerator returns results in order, repeating the last one.
type scriptedGenerator struct {
	results []ideas.Result
	hints   []ideas.Hints
	calls   int
}

func (g *scriptedGenerator) Generate(_ context.Context, h ideas.Hints) ideas.Result {
	g.hints = append(g.hints, h)
	i := g.calls
	if i >= len(g.results) {
		i = len(g.results) - 1
	}
	g.calls++
	return g.results[i]
}

type scriptedCritic struct {
	scores []int
	calls  int
}

func (c *scriptedCritic) Review(_ context.Context, _ core.Idea) core.Critique {
	i := c.calls
	if i >= len(c.scores) {
		i = len(c.scores) - 1
	}
	c.calls++
	return core.Critique{
		CriticScore:    c.scores[i],
		ViralityScore:  50,
		GeneratorScore: 60,
		Strengths:      []string{"s"},
		Weaknesses:     []string{"w"},
		Summary:        "ok",
		Source:         core.SourceLLM,
	}
}

func okIdea(name string) ideas.Result {
	return ideas.Result{Status: ideas.StatusOK, Idea: core.Idea{
		ID:          name + "-id",
		Name:        name,
		Description: name + " does things",
		Vertical:    "fintech",
		Fingerprint: ideas.Fingerprint(name, name+" does things"),
	}}
}

type failingStore struct{ store.Store }

func (failingStore) Append(core.Record) error { return errors.New("disk full") }

type recordingNotifier struct{ pubs []core.Publication }

func (n *recordingNotifier) Notify(_ context.Context, p core.Publication) { n.pubs = append(n.pubs, p) }

type brokenReport struct{}

func (brokenReport) RenderReport(core.Record) (string, error) { return "", errors.New("template error") }

type staticLanding struct{}

func (staticLanding) RenderLanding(r core.Record) (string, error) { return "landing/" + r.Idea.Name, nil }

type brokenWorkspace struct{}

func (brokenWorkspace) SyncIdea(context.Context, core.Record) (string, error) {
	return "", errors.New("notion 502")
}

type countingTracker struct{ published, rejected int }

func (t *countingTracker) TrackPublished(core.Record) { t.published++ }
func (t *countingTracker) TrackRejected(core.Record)  { t.rejected++ }

type fixture struct {
	gen     *scriptedGenerator
	critic  *scriptedCritic
	store   *store.JSONStore
	kb      *knowledge.Base
	builder *Builder
}

func newFixture(t *testing.T, results []ideas.Result, scores []int) *fixture {
	t.Helper()
	dir := t.TempDir()
	s, err := store.NewJSONStore(dir)
	require.NoError(t, err)
	f := &fixture{
		gen:    &scriptedGenerator{results: results},
		critic: &scriptedCritic{scores: scores},
		store:  s,
		kb:     knowledge.NewBase(dir),
	}
	f.builder = NewBuilder().
		WithGenerator(f.gen).
		WithCritic(f.critic).
		WithStore(f.store).
		WithKnowledge(f.kb).
		WithLogger(logger.Discard()).
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })
	return f
}

func (f *fixture) run(t *testing.T) Outcome {
	t.Helper()
	c, err := f.builder.Build()
	require.NoError(t, err)
	out, err := c.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	return out
}

func TestAcceptance(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("ShiftSwap")}, []int{78})
	out := f.run(t)

	assert.Equal(t, StatePublished, out.State)
	assert.Equal(t, 1, out.Cycles)
	assert.Equal(t, []State{StateGenerating, StateCritiquing, StateDeciding, StatePublished}, out.Trace)

	published, err := f.store.List()
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "ShiftSwap", published[0].Idea.Name)
	assert.Equal(t, core.StatusPublished, published[0].Idea.Status)
	assert.Equal(t, 78, *published[0].Idea.CriticScore)

	rejected, err := f.store.ListRejected()
	require.NoError(t, err)
	assert.Empty(t, rejected)

	snap, err := f.kb.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalIdeas)
	assert.InDelta(t, 78.0, snap.AverageScore, 0.01)
}

func TestRejectionAfterExhaustion(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("One"), okIdea("Two"), okIdea("Three")}, []int{50, 50, 50})
	tracker := &countingTracker{}
	f.builder.WithTracker(tracker)
	out := f.run(t)

	assert.Equal(t, StateRejected, out.State)
	assert.Equal(t, 3, out.Cycles)
	assert.Equal(t, 3, f.gen.calls)
	assert.Equal(t, 3, f.critic.calls)

	rejected, err := f.store.ListRejected()
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, "Three", rejected[0].Idea.Name)
	assert.Equal(t, core.StatusRejected, rejected[0].Idea.Status)
	assert.Contains(t, rejected[0].Reason, "below minimum 65")
	require.NotNil(t, rejected[0].Critique)
	assert.Equal(t, 50, rejected[0].Critique.CriticScore)

	published, err := f.store.List()
	require.NoError(t, err)
	assert.Empty(t, published)
	assert.Equal(t, 1, tracker.rejected)
	assert.Zero(t, tracker.published)
}

func TestRetryThenPublish(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("Weak"), okIdea("Strong")}, []int{40, 90})
	out := f.run(t)

	assert.Equal(t, StatePublished, out.State)
	assert.Equal(t, 2, out.Cycles)
	assert.Equal(t, "Strong", out.Record.Idea.Name)

	rejected, err := f.store.ListRejected()
	require.NoError(t, err)
	assert.Empty(t, rejected, "intermediate low scores are not logged")
}

func TestGenerationFailureExhaustion(t *testing.T) {
	fail := ideas.Result{Status: ideas.StatusParseError, Err: errors.New("bad json")}
	f := newFixture(t, []ideas.Result{fail}, []int{99})
	out := f.run(t)

	assert.Equal(t, StateRejected, out.State)
	assert.Equal(t, ReasonGenerationFailed, out.Reason)
	assert.Equal(t, 3, f.gen.calls)
	assert.Zero(t, f.critic.calls)
	assert.Nil(t, out.Record)

	rejected, err := f.store.ListRejected()
	require.NoError(t, err)
	assert.Empty(t, rejected)
}

func TestDuplicateConsumesCycleWithoutRejection(t *testing.T) {
	dup := okIdea("Again")
	dup.Duplicate = true
	f := newFixture(t, []ideas.Result{dup, okIdea("Fresh")}, []int{70})
	out := f.run(t)

	assert.Equal(t, StatePublished, out.State)
	assert.Equal(t, 2, out.Cycles)
	assert.Equal(t, 1, f.critic.calls)
	require.Len(t, out.Attempts, 2)
	assert.True(t, out.Attempts[0].Duplicate)
}

func TestDuplicatesOnly(t *testing.T) {
	dup := okIdea("Again")
	dup.Duplicate = true
	f := newFixture(t, []ideas.Result{dup}, []int{99})
	out := f.run(t)

	assert.Equal(t, StateRejected, out.State)
	assert.Equal(t, ReasonDuplicatesOnly, out.Reason)
	rejected, err := f.store.ListRejected()
	require.NoError(t, err)
	assert.Empty(t, rejected)
}

func TestStoreFailureIsNotPublished(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("ShiftSwap")}, []int{90})
	f.builder.WithStore(failingStore{f.store})
	c, err := f.builder.Build()
	require.NoError(t, err)

	out, err := c.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreWrite)
	assert.Equal(t, StateRejected, out.State)
	assert.Equal(t, ReasonStoreFailed, out.Reason)
}

func TestSinkFailuresDoNotChangeOutcome(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("ShiftSwap")}, []int{80})
	notifier := &recordingNotifier{}
	tracker := &countingTracker{}
	f.builder.
		WithReportRenderer(brokenReport{}).
		WithLandingRenderer(staticLanding{}).
		WithWorkspaceSync(brokenWorkspace{}).
		WithNotifier(notifier).
		WithTracker(tracker)
	out := f.run(t)

	assert.Equal(t, StatePublished, out.State)
	assert.Empty(t, out.Links.Report)
	assert.Equal(t, "landing/ShiftSwap", out.Links.Landing)
	assert.Empty(t, out.Links.Workspace)
	require.Len(t, notifier.pubs, 1)
	assert.Equal(t, "ShiftSwap", notifier.pubs[0].Record.Idea.Name)
	assert.Equal(t, "landing/ShiftSwap", notifier.pubs[0].Links.Landing)
	assert.Equal(t, 1, tracker.published)
}

func TestGeneratorScoreIsKept(t *testing.T) {
	res := okIdea("Scored")
	res.Idea.GeneratorScore = core.IntPtr(88)
	f := newFixture(t, []ideas.Result{res}, []int{70})
	out := f.run(t)

	require.NotNil(t, out.Record)
	assert.Equal(t, 88, *out.Record.Idea.GeneratorScore)
	assert.Equal(t, 60, out.Record.Critique.GeneratorScore)
}

func TestCycleBudget(t *testing.T) {
	for cycles := 1; cycles <= 5; cycles++ {
		t.Run(fmt.Sprintf("max_%d", cycles), func(t *testing.T) {
			f := newFixture(t, []ideas.Result{okIdea("Low")}, []int{10})
			f.builder.WithConfig(Config{MinScore: 65, MaxCycles: cycles})
			out := f.run(t)

			assert.True(t, out.State.Terminal())
			assert.Equal(t, cycles, f.gen.calls)
			assert.LessOrEqual(t, out.Cycles, cycles)
			assert.Len(t, out.Trace, cycles*3+1)
		})
	}
}

func TestFeedbackHints(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("First"), okIdea("Second")}, []int{20, 90})
	f.builder.WithConfig(Config{MinScore: 65, MaxCycles: 3, FeedbackHints: true})
	f.run(t)

	require.Len(t, f.gen.hints, 2)
	assert.Empty(t, f.gen.hints[0].Avoid)
	assert.Equal(t, []string{"First"}, f.gen.hints[1].Avoid)
}

func TestIndependentRetriesByDefault(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("First"), okIdea("Second")}, []int{20, 90})
	f.run(t)

	require.Len(t, f.gen.hints, 2)
	assert.Empty(t, f.gen.hints[1].Avoid)
}

func TestKnowledgeHintsReachGenerator(t *testing.T) {
	f := newFixture(t, []ideas.Result{okIdea("A"), okIdea("B")}, []int{85})
	f.run(t)
	f.run(t)

	require.Len(t, f.gen.hints, 2)
	assert.Empty(t, f.gen.hints[0].Insights)
	assert.NotEmpty(t, f.gen.hints[1].Insights)
}

func TestBuildRequiresComponents(t *testing.T) {
	_, err := NewBuilder().Build()
	assert.Error(t, err)
	_, err = NewBuilder().WithGenerator(&scriptedGenerator{}).Build()
	assert.Error(t, err)
	_, err = NewBuilder().WithGenerator(&scriptedGenerator{}).WithCritic(&scriptedCritic{}).Build()
	assert.Error(t, err)
}

func TestGate(t *testing.T) {
	g := Gate{MinScore: 65}
	assert.True(t, g.Publish(78))
	assert.True(t, g.Publish(65))
	assert.False(t, g.Publish(64))

	// Monotonic: once a score publishes, every higher score does too.
	for s1 := 0; s1 <= 100; s1++ {
		for s2 := s1 + 1; s2 <= 100; s2++ {
			if g.Publish(s1) {
				assert.True(t, g.Publish(s2), "s1=%d s2=%d", s1, s2)
			}
		}
	}
}
