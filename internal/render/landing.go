package render

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"ideaforge/internal/core"
)

var landingTemplate = template.Must(template.New("landing").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Idea.Name}}</title>
<meta name="description" content="{{.Idea.Description}}">
<style>
body{font-family:system-ui,sans-serif;max-width:760px;margin:0 auto;padding:2rem;color:#1f2933;line-height:1.6}
.hero{padding:3rem 0;border-bottom:1px solid #e4e7eb}
.hero h1{font-size:2.5rem;margin:0}
.tagline{font-size:1.25rem;color:#52606d}
.scores{display:flex;gap:1rem;margin:1.5rem 0}
.score{background:#f5f7fa;border-radius:8px;padding:.75rem 1rem}
.cta{display:inline-block;background:#2563eb;color:#fff;padding:.75rem 1.5rem;border-radius:6px;text-decoration:none}
</style>
</head>
<body>
<section class="hero">
<h1 id="idea-name">{{.Idea.Name}}</h1>
<p class="tagline">{{.Idea.Description}}</p>
<div class="scores">
<span class="score" data-axis="critic">Viability {{score .Idea.CriticScore}}</span>
<span class="score" data-axis="virality">Virality {{score .Idea.ViralityScore}}</span>
<span class="score" data-axis="execution">Execution {{score .Idea.GeneratorScore}}</span>
</div>
{{if .Idea.Price}}<a class="cta" href="#pricing">From {{.Idea.Price}}</a>{{end}}
</section>
<section id="problem"><h2>The problem</h2>{{markdown .Idea.Problem}}</section>
<section id="solution"><h2>The solution</h2>{{markdown .Idea.Solution}}</section>
<section id="pricing"><h2>Pricing</h2><p>{{with .Idea.Monetization}}{{.}}{{else}}To be announced{{end}}{{with .Idea.Price}} · {{.}}{{end}}</p></section>
{{with .Critique}}
<section id="why"><h2>Why it could work</h2>
<ul class="strengths">{{range .Strengths}}<li>{{.}}</li>{{end}}</ul>
</section>
{{end}}
<footer><small>{{.Idea.Vertical}} · {{.Idea.Type}} · {{.Idea.Fingerprint}}</small></footer>
</body>
</html>
`))

// LandingHTML renders the landing page for one record.
func LandingHTML(rec core.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := landingTemplate.Execute(&buf, rec); err != nil {
		return nil, fmt.Errorf("failed to render landing page: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderLanding writes landing/<slug>/index.html.
func (r *Renderer) RenderLanding(rec core.Record) (string, error) {
	page, err := LandingHTML(rec)
	if err != nil {
		return "", err
	}
	return WriteFile(page, filepath.Join(r.opts.LandingDir, RecordSlug(rec)), "index.html")
}
