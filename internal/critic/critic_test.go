package critic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"ideaforge/internal/core"
	"ideaforge/internal/llm"
	"ideaforge/internal/logger"
)

type scriptedLLM struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedLLM) Complete(_ context.Context, _ string, _ llm.Options) (llm.Response, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return llm.Response{}, s.errs[i]
	}
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return llm.Response{Text: s.replies[i]}, nil
}

var idea = core.Idea{Name: "ShiftSwap", Description: "Swap shifts in one tap", Price: "49"}

func TestReviewParsesCritique(t *testing.T) {
	fake := &scriptedLLM{replies: []string{"```json\n" + `{
		"critic_score": 78,
		"virality_score": "61",
		"generator_score": 72.6,
		"strengths": ["Clear buyer", "Simple onboarding"],
		"weaknesses": ["Crowded HR market"],
		"summary": "Solid niche play."
	}` + "\n```"}}

	c := New(fake, DefaultConfig(), logger.Discard())
	got := c.Review(context.Background(), idea)

	assert.Equal(t, 78, got.CriticScore)
	assert.Equal(t, 61, got.ViralityScore)
	assert.Equal(t, 73, got.GeneratorScore)
	assert.Equal(t, []string{"Clear buyer", "Simple onboarding"}, got.Strengths)
	assert.Equal(t, "Solid niche play.", got.Summary)
	assert.Equal(t, core.SourceLLM, got.Source)
	assert.Equal(t, 1, fake.calls)
}

func TestReviewProseFallsBackToDefaults(t *testing.T) {
	fake := &scriptedLLM{replies: []string{"This idea is pretty interesting, I would rate it highly."}}

	c := New(fake, DefaultConfig(), logger.Discard())
	got := c.Review(context.Background(), idea)

	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, 68, got.CriticScore)
	assert.Equal(t, 55, got.ViralityScore)
	assert.Equal(t, 70, got.GeneratorScore)
	assert.NotEmpty(t, got.Strengths)
	assert.NotEmpty(t, got.Weaknesses)
	assert.Equal(t, core.SourceDefault, got.Source)
}

func TestReviewRetriesAfterLLMError(t *testing.T) {
	fake := &scriptedLLM{
		errs:    []error{llm.ErrExhausted, nil},
		replies: []string{"", `{"critic_score": 90}`},
	}
	c := New(fake, DefaultConfig(), logger.Discard())
	got := c.Review(context.Background(), idea)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, 90, got.CriticScore)
	assert.Equal(t, core.SourceLLM, got.Source)
}

func TestReviewAllErrors(t *testing.T) {
	boom := errors.New("boom")
	fake := &scriptedLLM{errs: []error{boom, boom, boom}, replies: []string{""}}
	got := New(fake, DefaultConfig(), logger.Discard()).Review(context.Background(), idea)
	assert.Equal(t, DefaultCritique(), got)
}

func TestParsePartialBackfills(t *testing.T) {
	partial := []string{
		`{"critic_score": 80, "strengths": []}`,
		`{"critic_score": "80", "virality_score": {"x": 1}}`,
		`{"viability": 80, "strengths": "one string", "weaknesses": [""]}`,
	}
	for _, raw := range partial {
		got, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 80, got.CriticScore, raw)
		assert.Equal(t, DefaultViralityScore, got.ViralityScore, raw)
		assert.Equal(t, DefaultGeneratorScore, got.GeneratorScore, raw)
		assert.NotEmpty(t, got.Strengths, raw)
		assert.NotEmpty(t, got.Weaknesses, raw)
		assert.NotEmpty(t, got.Summary, raw)
		assert.Equal(t, core.SourceLLM, got.Source, raw)
	}
}

func TestParseRequiresAScore(t *testing.T) {
	for _, raw := range []string{
		`{}`,
		`{"verdict": "meh"}`,
		`{"critic_score": null, "strengths": ["x"]}`,
		`{"critic_score": "excellent", "virality_score": {"x": 1}}`,
	} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrNoScores, raw)
	}
}

func TestReviewRetriesWhenScoresMissing(t *testing.T) {
	fake := &scriptedLLM{replies: []string{
		`{"verdict": "meh"}`,
		`{"critic_score": 74, "virality_score": 52, "generator_score": 66, "summary": "Second opinion."}`,
	}}
	got := New(fake, DefaultConfig(), logger.Discard()).Review(context.Background(), idea)

	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, 74, got.CriticScore)
	assert.Equal(t, "Second opinion.", got.Summary)
	assert.Equal(t, core.SourceLLM, got.Source)
}

func TestReviewScorelessRepliesFallBackToDefaults(t *testing.T) {
	fake := &scriptedLLM{replies: []string{`{"verdict": "meh"}`}}
	got := New(fake, DefaultConfig(), logger.Discard()).Review(context.Background(), idea)

	assert.Equal(t, 3, fake.calls)
	assert.Equal(t, DefaultCritique(), got)
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"no json here", "[1,2,3]", `{"critic_score": 5`} {
		_, err := Parse(raw)
		assert.Error(t, err, raw)
	}
}

func TestParseClampsScores(t *testing.T) {
	got, err := Parse(`{"critic_score": 140, "virality_score": -5, "generator_score": "85/100"}`)
	require.NoError(t, err)
	assert.Equal(t, 100, got.CriticScore)
	assert.Equal(t, 0, got.ViralityScore)
	assert.Equal(t, 85, got.GeneratorScore)
}

func TestScore(t *testing.T) {
	cases := map[string]int{`42`: 42, `"42"`: 42, `"42%"`: 42, `41.5`: 42, `"7/10"`: 7}
	for in, want := range cases {
		v, ok := Score(gjson.Parse(in))
		assert.True(t, ok, in)
		assert.Equal(t, want, v, in)
	}
	_, ok := Score(gjson.Parse(`true`))
	assert.False(t, ok)
}

func TestDefaultCritiqueIsIndependent(t *testing.T) {
	a := DefaultCritique()
	a.Strengths[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultCritique().Strengths[0])
}

func TestPromptContainsRubric(t *testing.T) {
	p := BuildPrompt(idea)
	assert.Contains(t, p, "<50 weak | 50-70 basic | 70-85 good | 85+ exceptional")
	assert.Contains(t, p, "ShiftSwap")
	assert.Contains(t, p, "price: 49")
}
