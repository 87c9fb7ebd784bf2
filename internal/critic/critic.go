// Package critic scores ideas with a strict rubric and always returns a
// complete Critique.
package critic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"ideaforge/internal/core"
	"ideaforge/internal/llm"
)

// Defaults used when the critic answer is missing or malformed.
const (
	DefaultCriticScore    = 68
	DefaultViralityScore  = 55
	DefaultGeneratorScore = 70
	DefaultSummary        = "Automated review unavailable; conservative default scores were applied."
)

var (
	defaultStrengths  = []string{"Addresses a recognizable problem", "Clear path to a first version"}
	defaultWeaknesses = []string{"Market demand not yet validated", "Competitive landscape unclear"}
)

// ErrNoScores is returned by Parse when the object carries none of the
// three scores.
var ErrNoScores = errors.New("critique response has no usable score")

// Config holds critic settings.
type Config struct {
	MaxAttempts int // Full LLM call attempts before defaults are used
	Temperature float32
	MaxTokens   int32
}

// DefaultConfig returns a low-temperature, 3-attempt configuration.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, Temperature: 0.3, MaxTokens: 1024}
}

// Critic reviews ideas.
type Critic struct {
	client llm.Completer
	config Config
	log    *slog.Logger
}

// New creates a critic.
func New(client llm.Completer, config Config, log *slog.Logger) *Critic {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if log == nil {
		log = slog.Default()
	}
	return &Critic{client: client, config: config, log: log}
}

// Review scores the idea. It never fails: after the attempts are used up
// the default critique is returned.
func (c *Critic) Review(ctx context.Context, idea core.Idea) core.Critique {
	prompt := BuildPrompt(idea)
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		resp, err := c.client.Complete(ctx, prompt, llm.Options{
			Temperature: c.config.Temperature,
			MaxTokens:   c.config.MaxTokens,
			JSON:        true,
			Schema:      Schema(),
		})
		if err != nil {
			c.log.Warn("Critique call failed", "idea", idea.Name, "attempt", attempt, "error", err.Error())
			continue
		}
		critique, err := Parse(resp.Text)
		if err != nil {
			c.log.Warn("Critique response unusable", "idea", idea.Name, "attempt", attempt, "error", err.Error())
			continue
		}
		return critique
	}
	c.log.Warn("Using default critique", "idea", idea.Name)
	return DefaultCritique()
}

// DefaultCritique is the conservative fallback verdict.
func DefaultCritique() core.Critique {
	return core.Critique{
		CriticScore:    DefaultCriticScore,
		ViralityScore:  DefaultViralityScore,
		GeneratorScore: DefaultGeneratorScore,
		Strengths:      append([]string(nil), defaultStrengths...),
		Weaknesses:     append([]string(nil), defaultWeaknesses...),
		Summary:        DefaultSummary,
		Source:         core.SourceDefault,
	}
}

// Parse extracts a critique from a raw response. It fails when the response
// holds no JSON object or when no score resolves; other missing or malformed
// fields are backfilled.
func Parse(raw string) (core.Critique, error) {
	body := llm.ExtractJSON(raw)
	if !gjson.Valid(body) {
		return core.Critique{}, fmt.Errorf("critique response is not valid JSON")
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return core.Critique{}, fmt.Errorf("critique response is not a JSON object")
	}

	c := core.Critique{Source: core.SourceLLM}
	var okCritic, okVirality, okGenerator bool
	c.CriticScore, okCritic = scoreField(doc, DefaultCriticScore, "critic_score", "viability_score", "viability", "score")
	c.ViralityScore, okVirality = scoreField(doc, DefaultViralityScore, "virality_score", "virality")
	c.GeneratorScore, okGenerator = scoreField(doc, DefaultGeneratorScore, "generator_score", "execution_score", "execution")
	if !okCritic && !okVirality && !okGenerator {
		return core.Critique{}, ErrNoScores
	}
	c.Strengths = listField(doc, "strengths")
	c.Weaknesses = listField(doc, "weaknesses")
	c.Summary = strings.TrimSpace(doc.Get("summary").String())
	return Validate(c), nil
}

// Validate clamps scores and backfills empty fields.
func Validate(c core.Critique) core.Critique {
	c.CriticScore = clamp(float64(c.CriticScore))
	c.ViralityScore = clamp(float64(c.ViralityScore))
	c.GeneratorScore = clamp(float64(c.GeneratorScore))
	if len(c.Strengths) == 0 {
		c.Strengths = append([]string(nil), defaultStrengths...)
	}
	if len(c.Weaknesses) == 0 {
		c.Weaknesses = append([]string(nil), defaultWeaknesses...)
	}
	if c.Summary == "" {
		c.Summary = DefaultSummary
	}
	if c.Source == "" {
		c.Source = core.SourceLLM
	}
	return c
}

func scoreField(doc gjson.Result, def int, keys ...string) (int, bool) {
	for _, key := range keys {
		if v, ok := Score(doc.Get(key)); ok {
			return v, true
		}
	}
	return def, false
}

// Score coerces a JSON value into a 0-100 score. Numbers, numeric strings
// and "85/100" style strings are accepted.
func Score(r gjson.Result) (int, bool) {
	switch r.Type {
	case gjson.Number:
		return clamp(r.Float()), true
	case gjson.String:
		s := strings.TrimSpace(r.String())
		s = strings.TrimSuffix(s, "%")
		if i := strings.Index(s, "/"); i > 0 {
			s = s[:i]
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return clamp(f), true
	default:
		return 0, false
	}
}

func clamp(f float64) int {
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func listField(doc gjson.Result, key string) []string {
	v := doc.Get(key)
	var out []string
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	case v.Type == gjson.String && strings.TrimSpace(v.String()) != "":
		out = append(out, strings.TrimSpace(v.String()))
	}
	return out
}

// BuildPrompt embeds the scoring rubric and the idea.
func BuildPrompt(idea core.Idea) string {
	var prompt strings.Builder

	prompt.WriteString("You are a skeptical venture investor. Score the business idea below honestly. Most ideas are average; reserve high scores for truly exceptional ones.\n\n")

	prompt.WriteString("**IDEA:**\n")
	prompt.WriteString(fmt.Sprintf("Name: %s\n", idea.Name))
	prompt.WriteString(fmt.Sprintf("Problem: %s\n", idea.Problem))
	prompt.WriteString(fmt.Sprintf("Solution: %s\n", idea.Solution))
	prompt.WriteString(fmt.Sprintf("Description: %s\n", idea.Description))
	prompt.WriteString(fmt.Sprintf("Vertical: %s\n", idea.Vertical))
	prompt.WriteString(fmt.Sprintf("Type: %s\n", idea.Type))
	prompt.WriteString(fmt.Sprintf("Monetization: %s (price: %s)\n", idea.Monetization, idea.Price))
	prompt.WriteString(fmt.Sprintf("Effort: %s\n\n", idea.Effort))

	prompt.WriteString("**RUBRIC:**\n")
	prompt.WriteString("critic_score (viability: market size, willingness to pay, competition):\n")
	prompt.WriteString("  <50 weak | 50-70 basic | 70-85 good | 85+ exceptional\n")
	prompt.WriteString("virality_score (word of mouth, shareability, network effects):\n")
	prompt.WriteString("  <40 none | 40-60 some | 60-80 strong | 80+ built-in virality\n")
	prompt.WriteString("generator_score (execution quality of the idea as written: clarity, specificity, feasibility):\n")
	prompt.WriteString("  <50 vague | 50-70 rough | 70-85 solid | 85+ ready to build\n\n")

	prompt.WriteString("**OUTPUT FORMAT:**\n")
	prompt.WriteString("Return a single JSON object with keys critic_score, virality_score, generator_score (integers 0-100), ")
	prompt.WriteString("strengths (array of strings), weaknesses (array of strings), summary (one paragraph).\n")
	prompt.WriteString("Do NOT wrap the JSON in Markdown code fences.\n")

	return prompt.String()
}

// Schema is the structured output schema for a critique.
func Schema() *genai.Schema {
	score := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeInteger, Description: desc}
	}
	list := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"critic_score":    score("Viability 0-100"),
			"virality_score":  score("Virality 0-100"),
			"generator_score": score("Execution quality 0-100"),
			"strengths":       list("Concrete strengths"),
			"weaknesses":      list("Concrete weaknesses"),
			"summary":         {Type: genai.TypeString, Description: "One-paragraph verdict"},
		},
		Required: []string{"critic_score", "virality_score", "generator_score", "strengths", "weaknesses", "summary"},
	}
}
