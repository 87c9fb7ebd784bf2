package ideas

import (
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Hints bias the generation prompt. They only change the wording.
type Hints struct {
	Insights []string // Knowledge base hints
	Avoid    []string // Names of ideas the next attempt should not repeat
	Focus    string   // Optional vertical or theme requested by the user
}

// ideaKeys is the fixed key set the model must return.
var ideaKeys = []string{"name", "problem", "solution", "description", "vertical", "type", "monetization", "price", "effort", "score"}

// BuildPrompt assembles the generation prompt.
func BuildPrompt(h Hints) string {
	var prompt strings.Builder

	prompt.WriteString("You are a startup analyst. Invent ONE original, specific business idea that a small team could launch within a few months.\n\n")

	if h.Focus != "" {
		prompt.WriteString(fmt.Sprintf("**FOCUS:** %s\n\n", h.Focus))
	}

	if len(h.Insights) > 0 {
		prompt.WriteString("**WHAT HAS WORKED BEFORE:**\n")
		for _, hint := range h.Insights {
			prompt.WriteString(fmt.Sprintf("- %s\n", hint))
		}
		prompt.WriteString("\n")
	}

	if len(h.Avoid) > 0 {
		prompt.WriteString("**DO NOT REPEAT THESE IDEAS:**\n")
		for _, name := range h.Avoid {
			prompt.WriteString(fmt.Sprintf("- %s\n", name))
		}
		prompt.WriteString("\n")
	}

	prompt.WriteString("**REQUIREMENTS:**\n")
	prompt.WriteString("- Solve a concrete, painful problem for a clearly defined customer\n")
	prompt.WriteString("- Name a realistic price and monetization model\n")
	prompt.WriteString("- Keep the description under 40 words\n")
	prompt.WriteString("- score is your own 0-100 estimate of the idea's potential\n\n")

	prompt.WriteString("**OUTPUT FORMAT:**\n")
	prompt.WriteString("Return a single JSON object with exactly these keys: ")
	prompt.WriteString(strings.Join(ideaKeys, ", "))
	prompt.WriteString(".\n")
	prompt.WriteString("effort is one of: low, medium, high. All values except price and score are strings.\n")
	prompt.WriteString("Do NOT wrap the JSON in Markdown code fences and do not add any text before or after it.\n")

	return prompt.String()
}

// Schema is the structured output schema for the idea object.
func Schema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":         str("Short product name"),
			"problem":      str("The problem being solved"),
			"solution":     str("How the product solves it"),
			"description":  str("One-sentence pitch"),
			"vertical":     str("Target industry vertical"),
			"type":         str("Idea type, e.g. saas, marketplace, app"),
			"monetization": str("Monetization model"),
			"price":        str("Suggested price"),
			"effort":       {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
			"score":        {Type: genai.TypeInteger, Description: "Self-assessed potential 0-100"},
		},
		Required: []string{"name", "problem", "solution", "description", "vertical", "type", "monetization", "price", "effort"},
	}
}
