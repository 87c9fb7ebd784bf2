package render

import (
	"fmt"
	"strings"

	"ideaforge/internal/core"
)

// ReportMarkdown builds the Markdown report for one record.
func ReportMarkdown(rec core.Record) string {
	idea := rec.Idea
	var md strings.Builder

	md.WriteString(fmt.Sprintf("# %s\n\n", idea.Name))
	md.WriteString(fmt.Sprintf("> %s\n\n", idea.Description))

	md.WriteString("| Critic | Virality | Execution | Vertical | Type | Effort |\n")
	md.WriteString("|---|---|---|---|---|---|\n")
	md.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n\n",
		scoreText(idea.CriticScore), scoreText(idea.ViralityScore), scoreText(idea.GeneratorScore),
		orDash(idea.Vertical), orDash(idea.Type), orDash(idea.Effort)))

	md.WriteString("## Problem\n\n")
	md.WriteString(orDash(idea.Problem) + "\n\n")
	md.WriteString("## Solution\n\n")
	md.WriteString(orDash(idea.Solution) + "\n\n")
	md.WriteString("## Business Model\n\n")
	md.WriteString(fmt.Sprintf("- **Monetization:** %s\n", orDash(idea.Monetization)))
	md.WriteString(fmt.Sprintf("- **Price:** %s\n\n", orDash(idea.Price.String())))

	if c := rec.Critique; c != nil {
		md.WriteString("## Critique\n\n")
		md.WriteString(c.Summary + "\n\n")
		md.WriteString("**Strengths**\n\n")
		for _, s := range c.Strengths {
			md.WriteString("- " + s + "\n")
		}
		md.WriteString("\n**Weaknesses**\n\n")
		for _, w := range c.Weaknesses {
			md.WriteString("- " + w + "\n")
		}
		md.WriteString("\n")
		if c.Source == core.SourceDefault {
			md.WriteString("*Scores are conservative defaults; the automated review was unavailable.*\n\n")
		}
	}

	md.WriteString("---\n\n")
	md.WriteString(fmt.Sprintf("Fingerprint `%s` · generated %s\n", idea.Fingerprint, idea.CreatedAt.Format("2006-01-02 15:04 MST")))
	return md.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderReport writes reports/<date>_<slug>.md.
func (r *Renderer) RenderReport(rec core.Record) (string, error) {
	date := rec.RecordedAt
	if date.IsZero() {
		date = r.now()
	}
	filename := fmt.Sprintf("%s_%s.md", date.UTC().Format("2006-01-02"), RecordSlug(rec))
	return WriteFile([]byte(ReportMarkdown(rec)), r.opts.ReportsDir, filename)
}
