package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideaforge/internal/core"
	"ideaforge/internal/knowledge"
)

func sampleRecord(name string, score int) core.Record {
	return core.Record{
		Idea: core.Idea{
			Name:           name,
			Problem:        "Teams lose **hours** to manual scheduling",
			Solution:       "Automated shift matching",
			Description:    "Swap shifts in one tap",
			Vertical:       "hr tech",
			Type:           "saas",
			Monetization:   "subscription",
			Price:          "49",
			Effort:         "medium",
			Fingerprint:    "abcdef123456",
			CriticScore:    core.IntPtr(score),
			ViralityScore:  core.IntPtr(60),
			GeneratorScore: core.IntPtr(72),
			CreatedAt:      time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
		},
		Critique: &core.Critique{
			CriticScore: score,
			Strengths:   []string{"Clear buyer", "Low CAC"},
			Weaknesses:  []string{"Crowded market"},
			Summary:     "Promising niche.",
			Source:      core.SourceLLM,
		},
		RecordedAt: time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC),
	}
}

func newTestRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	dir := t.TempDir()
	return NewRenderer(Options{
		ReportsDir:   filepath.Join(dir, "reports"),
		LandingDir:   filepath.Join(dir, "landing"),
		DashboardDir: filepath.Join(dir, "dashboard"),
	}), dir
}

func document(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "shift-swap-pro", Slug("Shift Swap   Pro!"))
	assert.Equal(t, "caf", Slug("Café"))
	assert.Equal(t, "idea", Slug("!!!"))
	assert.LessOrEqual(t, len(Slug(strings.Repeat("long name ", 20))), 60)
	assert.Equal(t, "shiftswap-abcdef", RecordSlug(sampleRecord("ShiftSwap", 80)))
}

func TestRenderReport(t *testing.T) {
	r, dir := newTestRenderer(t)
	path, err := r.RenderReport(sampleRecord("ShiftSwap", 81))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "2026-02-01_shiftswap-abcdef.md"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	md := string(content)
	assert.Contains(t, md, "# ShiftSwap")
	assert.Contains(t, md, "| 81/100 | 60/100 | 72/100 |")
	assert.Contains(t, md, "- Clear buyer")
	assert.Contains(t, md, "- Crowded market")
	assert.NotContains(t, md, "conservative defaults")
}

func TestReportMarksDefaultCritique(t *testing.T) {
	rec := sampleRecord("ShiftSwap", 68)
	rec.Critique.Source = core.SourceDefault
	assert.Contains(t, ReportMarkdown(rec), "conservative defaults")
}

func TestRenderLanding(t *testing.T) {
	r, dir := newTestRenderer(t)
	path, err := r.RenderLanding(sampleRecord("ShiftSwap", 81))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "landing", "shiftswap-abcdef", "index.html"), path)

	doc := document(t, path)
	assert.Equal(t, "ShiftSwap", doc.Find("#idea-name").Text())
	assert.Equal(t, "Viability 81/100", doc.Find(`[data-axis="critic"]`).Text())
	assert.Equal(t, "hours", doc.Find("#problem strong").Text())
	assert.Equal(t, 2, doc.Find("ul.strengths li").Length())
}

func TestLandingEscapesHTML(t *testing.T) {
	rec := sampleRecord("<script>alert(1)</script>", 70)
	page, err := LandingHTML(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(page), "<script>alert(1)</script>")
}

func TestLandingDropsRawHTMLInMarkdown(t *testing.T) {
	rec := sampleRecord("ShiftSwap", 70)
	rec.Idea.Problem = "<script>alert(1)</script>"
	rec.Idea.Solution = `Try <img src=x onerror="alert(2)"> **now**`

	page, err := LandingHTML(rec)
	require.NoError(t, err)
	out := string(page)
	assert.NotContains(t, out, "<script>alert(1)")
	assert.NotContains(t, out, "onerror")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "<strong>now</strong>")
}

func TestMarkdownSkipsHTML(t *testing.T) {
	out := string(Markdown("<div onclick=\"x()\">hi</div>\n\nplain *text*"))
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "<em>text</em>")
}

func TestRenderDashboard(t *testing.T) {
	r, _ := newTestRenderer(t)
	records := []core.Record{sampleRecord("Low", 55), sampleRecord("High", 90)}
	snap := knowledge.Analyze(records, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))

	path, err := r.RenderDashboard(records, snap)
	require.NoError(t, err)

	doc := document(t, path)
	rows := doc.Find("#ideas tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, "High", rows.First().Find("a").Text())
	href, _ := rows.First().Find("a").Attr("href")
	assert.Equal(t, "../landing/high-abcdef/", href)
	assert.Contains(t, doc.Find("#total").Text(), "2")
	assert.Equal(t, 4, doc.Find("#distribution li").Length())
}

func TestDashboardEmpty(t *testing.T) {
	page, err := DashboardHTML(nil, knowledge.Analyze(nil, time.Now()), "/ideas/")
	require.NoError(t, err)
	assert.Contains(t, string(page), "No ideas published yet.")
}

func TestMarkdown(t *testing.T) {
	assert.Empty(t, string(Markdown("")))
	assert.Contains(t, string(Markdown("**bold**")), "<strong>bold</strong>")
}
