package handlers

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/core"
	"ideaforge/internal/knowledge"
	"ideaforge/internal/pipeline"
)

func TestNewestFirst(t *testing.T) {
	records := []core.Record{
		{Idea: core.Idea{Name: "a"}},
		{Idea: core.Idea{Name: "b"}},
		{Idea: core.Idea{Name: "c"}},
	}

	got := newestFirst(records, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Idea.Name)
	assert.Equal(t, "b", got[1].Idea.Name)

	assert.Len(t, newestFirst(records, 0), 3)
	assert.Equal(t, "a", records[0].Idea.Name, "input is not modified")
}

func TestPrintOutcome(t *testing.T) {
	rec := core.Record{Idea: core.Idea{Name: "Dock Scheduler", CriticScore: core.IntPtr(72)}}
	outcome := pipeline.Outcome{
		State:  pipeline.StatePublished,
		Record: &rec,
		Cycles: 2,
		Links:  core.Links{Report: "reports/x.md"},
		Attempts: []pipeline.Attempt{
			{Cycle: 1, Status: "rejected", Idea: "Earlier", Score: core.IntPtr(40)},
			{Cycle: 2, Status: "published", Idea: "Dock Scheduler", Score: core.IntPtr(72)},
		},
	}

	var buf bytes.Buffer
	printOutcome(&buf, 1, outcome)

	out := buf.String()
	assert.Contains(t, out, "PUBLISHED after 2 cycle(s)")
	assert.Contains(t, out, "Earlier (40)")
	assert.Contains(t, out, "Dock Scheduler")
	assert.Contains(t, out, "reports/x.md")
}

func TestPrintSnapshotEmpty(t *testing.T) {
	var buf bytes.Buffer
	printSnapshot(&buf, knowledge.Analyze(nil, time.Time{}))
	assert.Contains(t, buf.String(), "No scored ideas yet")
}

func TestPrintRecordsRejectedShowsReason(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, []core.Record{{Idea: core.Idea{Name: "Nope", Fingerprint: "abc"}, Reason: "critic score 40 below minimum 65"}}, true)
	assert.Contains(t, buf.String(), "Nope")
	assert.Contains(t, buf.String(), "below minimum 65")
}

func TestRunRejectsOutOfRangeMinScore(t *testing.T) {
	for _, v := range []string{"500", "-1"} {
		cmd := NewRunCmd()
		cmd.SetArgs([]string{"--min-score", v})
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		err := cmd.Execute()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "--min-score must be between 0 and 100")
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"run", "analyze", "list", "browse", "dashboard", "export", "serve", "watch"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
