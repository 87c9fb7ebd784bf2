package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ideaforge/internal/core"
)

func sampleRecords() []core.Record {
	return []core.Record{
		{
			Idea: core.Idea{
				Name:          "ShiftSwap",
				Description:   "Shift trading for nurses",
				Vertical:      "healthcare",
				Type:          "saas",
				Monetization:  "subscription",
				Price:         "29",
				Fingerprint:   "abc123def456",
				Status:        core.StatusPublished,
				CriticScore:   core.IntPtr(81),
				ViralityScore: core.IntPtr(60),
			},
			Critique: &core.Critique{
				CriticScore: 81,
				Strengths:   []string{"clear buyer", "urgent pain"},
				Weaknesses:  []string{"crowded"},
			},
			RecordedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Idea:       core.Idea{Name: "Unscored", Fingerprint: "000000000000"},
			RecordedAt: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.xlsx")
	require.NoError(t, WriteXLSX(path, sampleRecords()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Ideas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "ShiftSwap", rows[1][0])
	assert.Equal(t, "81", rows[1][2])
	assert.Equal(t, "clear buyer; urgent pain", rows[1][13])
	assert.Equal(t, "Unscored", rows[2][0])
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.csv")
	require.NoError(t, WriteCSV(path, sampleRecords()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "81", rows[1][2])
	assert.Equal(t, "60", rows[1][3])
	assert.Equal(t, "", rows[2][2])
	assert.Equal(t, "2025-03-01 10:00:00", rows[1][len(Headers)-1])
}

func TestWriteDetectsFormat(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, Write(filepath.Join(dir, "out", "ideas.csv"), "", sampleRecords()))
	assert.FileExists(t, filepath.Join(dir, "out", "ideas.csv"))

	require.NoError(t, Write(filepath.Join(dir, "Ideas.XLSX"), FormatXLSX, sampleRecords()))
	assert.FileExists(t, filepath.Join(dir, "Ideas.XLSX"))

	err := Write(filepath.Join(dir, "ideas.txt"), "", nil)
	assert.ErrorContains(t, err, "unsupported export format")
}
