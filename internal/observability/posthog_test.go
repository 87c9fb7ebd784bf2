package observability

import (
	"errors"
	"testing"

	"github.com/posthog/posthog-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/core"
	"ideaforge/internal/logger"
)

type fakeEnqueuer struct {
	messages []posthog.Message
	err      error
	closed   bool
}

func (f *fakeEnqueuer) Enqueue(m posthog.Message) error {
	f.messages = append(f.messages, m)
	return f.err
}

func (f *fakeEnqueuer) Close() error {
	f.closed = true
	return nil
}

func TestDisabledClientIsNoop(t *testing.T) {
	p, err := NewPostHogClient(Config{}, logger.Discard())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Capture("x", nil))
	p.TrackPublished(core.Record{})
	assert.NoError(t, p.Close())
}

func TestEnabledRequiresKey(t *testing.T) {
	_, err := NewPostHogClient(Config{Enabled: true}, logger.Discard())
	assert.Error(t, err)
}

func TestTrackEvents(t *testing.T) {
	fake := &fakeEnqueuer{}
	p := &PostHogClient{client: fake, enabled: true, log: logger.Discard()}

	rec := core.Record{
		Idea:     core.Idea{ID: "i1", Vertical: "fintech"},
		Critique: &core.Critique{CriticScore: 81, Source: core.SourceLLM},
	}
	p.TrackPublished(rec)
	rec.Reason = "too low"
	p.TrackRejected(rec)

	require.Len(t, fake.messages, 2)
	first := fake.messages[0].(posthog.Capture)
	assert.Equal(t, EventIdeaPublished, first.Event)
	assert.Equal(t, DistinctID, first.DistinctId)
	assert.Equal(t, 81, first.Properties["critic_score"])
	assert.Equal(t, "fintech", first.Properties["vertical"])

	second := fake.messages[1].(posthog.Capture)
	assert.Equal(t, EventIdeaRejected, second.Event)
	assert.Equal(t, "too low", second.Properties["reason"])

	require.NoError(t, p.Close())
	assert.True(t, fake.closed)
}

func TestTrackSwallowsErrors(t *testing.T) {
	fake := &fakeEnqueuer{err: errors.New("queue full")}
	p := &PostHogClient{client: fake, enabled: true, log: logger.Discard()}
	p.TrackPublished(core.Record{})
	assert.Len(t, fake.messages, 1)
}
