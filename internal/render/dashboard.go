package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"sort"

	"ideaforge/internal/core"
	"ideaforge/internal/knowledge"
)

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Idea dashboard</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;width:100%}
th,td{text-align:left;padding:.5rem;border-bottom:1px solid #e4e7eb}
.stats{display:flex;gap:2rem;margin-bottom:2rem}
.stat strong{display:block;font-size:1.75rem}
</style>
</head>
<body>
<h1>Idea dashboard</h1>
<div class="stats">
<div class="stat" id="total"><strong>{{.Snapshot.TotalIdeas}}</strong>ideas</div>
<div class="stat" id="average"><strong>{{printf "%.1f" .Snapshot.AverageScore}}</strong>average score</div>
<div class="stat" id="median"><strong>{{printf "%.1f" .Snapshot.MedianScore}}</strong>median score</div>
</div>
{{if .Snapshot.Insights}}<h2>Insights</h2>
<ul id="insights">{{range .Snapshot.Insights}}<li>{{.}}</li>{{end}}</ul>{{end}}
<h2>Score distribution</h2>
<ul id="distribution">{{range .Snapshot.Distribution}}<li>{{.Label}}: {{.Count}}</li>{{end}}</ul>
<h2>Ideas</h2>
<table id="ideas">
<thead><tr><th>Name</th><th>Vertical</th><th>Critic</th><th>Virality</th><th>Execution</th><th>Published</th></tr></thead>
<tbody>
{{range .Records}}<tr data-fingerprint="{{.Idea.Fingerprint}}">
<td><a href="{{$.LandingBase}}{{slug .}}/">{{.Idea.Name}}</a></td>
<td>{{.Idea.Vertical}}</td>
<td>{{score .Idea.CriticScore}}</td>
<td>{{score .Idea.ViralityScore}}</td>
<td>{{score .Idea.GeneratorScore}}</td>
<td>{{.RecordedAt.Format "2006-01-02"}}</td>
</tr>
{{else}}<tr><td colspan="6">No ideas published yet.</td></tr>
{{end}}</tbody>
</table>
<footer><small>Updated {{.Snapshot.UpdatedAt.Format "2006-01-02 15:04 MST"}}</small></footer>
</body>
</html>
`))

type dashboardData struct {
	Records     []core.Record
	Snapshot    knowledge.Snapshot
	LandingBase string
}

// DashboardHTML renders the dashboard, best critic score first.
// landingBase prefixes landing page links.
func DashboardHTML(records []core.Record, snap knowledge.Snapshot, landingBase string) ([]byte, error) {
	sorted := append([]core.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := sorted[i].Idea.Score()
		b, _ := sorted[j].Idea.Score()
		return a > b
	})
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, dashboardData{Records: sorted, Snapshot: snap, LandingBase: landingBase}); err != nil {
		return nil, fmt.Errorf("failed to render dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDashboard writes dashboard/index.html.
func (r *Renderer) RenderDashboard(records []core.Record, snap knowledge.Snapshot) (string, error) {
	base := "../landing/"
	if rel, err := filepath.Rel(r.opts.DashboardDir, r.opts.LandingDir); err == nil {
		base = filepath.ToSlash(rel) + "/"
	}
	page, err := DashboardHTML(records, snap, base)
	if err != nil {
		return "", err
	}
	return WriteFile(page, r.opts.DashboardDir, "index.html")
}
