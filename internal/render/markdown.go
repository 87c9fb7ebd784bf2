package render

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown converts Markdown text to HTML for template output. Raw HTML in
// the source is dropped.
func Markdown(text string) template.HTML {
	if text == "" {
		return template.HTML("")
	}
	mdParser := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.Safelink | html.SkipHTML,
	})
	return template.HTML(markdown.ToHTML([]byte(text), mdParser, renderer))
}

var funcs = template.FuncMap{
	"markdown": Markdown,
	"score":    scoreText,
	"slug":     RecordSlug,
}
