package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON strips Markdown code fences and surrounding chatter from an
// LLM response and returns the first complete JSON object. Braces in prose
// before or after the object are skipped. When no object decodes the
// outermost brace span, or the trimmed text, is returned so the caller's
// decoder reports it.
func ExtractJSON(raw string) string {
	content := strings.TrimSpace(raw)

	if start := strings.Index(content, "```"); start >= 0 {
		body := content[start+3:]
		body = strings.TrimPrefix(body, "json")
		body = strings.TrimPrefix(body, "JSON")
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		content = strings.TrimSpace(body)
	}

	for i := strings.IndexByte(content, '{'); i >= 0; {
		var obj json.RawMessage
		if err := json.NewDecoder(strings.NewReader(content[i:])).Decode(&obj); err == nil {
			return string(obj)
		}
		next := strings.IndexByte(content[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first >= 0 && last > first {
		return content[first : last+1]
	}
	return content
}
