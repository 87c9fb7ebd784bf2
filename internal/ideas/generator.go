// Package ideas generates one business idea per call from an LLM.
package ideas

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"ideaforge/internal/core"
	"ideaforge/internal/llm"
	"ideaforge/internal/textfix"
)

// Status tags a generation result.
type Status int

const (
	StatusOK              Status = iota
	StatusLLMError               // The LLM wrapper exhausted its budget
	StatusParseError             // The response held no decodable JSON object
	StatusValidationError        // The JSON lacked a required field
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusLLMError:
		return "llm_error"
	case StatusParseError:
		return "parse_error"
	case StatusValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of one generation. Idea is only set for StatusOK.
type Result struct {
	Status    Status
	Idea      core.Idea
	Duplicate bool // Fingerprint already present in the idea store
	Err       error
	Raw       string
}

// OK reports whether an idea was produced.
func (r Result) OK() bool { return r.Status == StatusOK }

// FingerprintChecker reports whether a fingerprint is already published.
type FingerprintChecker interface {
	HasFingerprint(fp string) (bool, error)
}

// Config holds generation options.
type Config struct {
	Temperature float32
	MaxTokens   int32
}

// DefaultConfig returns creative settings for idea generation.
func DefaultConfig() Config {
	return Config{Temperature: 0.9, MaxTokens: 1024}
}

// Generator produces ideas.
type Generator struct {
	client llm.Completer
	dedup  FingerprintChecker
	config Config
	log    *slog.Logger
	now    func() time.Time
}

// NewGenerator creates a generator. dedup may be nil to skip duplicate checks.
func NewGenerator(client llm.Completer, dedup FingerprintChecker, config Config, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{client: client, dedup: dedup, config: config, log: log, now: time.Now}
}

// Generate runs one prompt and parses the answer.
func (g *Generator) Generate(ctx context.Context, hints Hints) Result {
	resp, err := g.client.Complete(ctx, BuildPrompt(hints), llm.Options{
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
		JSON:        true,
		Schema:      Schema(),
	})
	if err != nil {
		g.log.Warn("Idea generation failed", "error", err.Error())
		return Result{Status: StatusLLMError, Err: err}
	}

	result := Parse(resp.Text)
	if !result.OK() {
		g.log.Warn("Idea response rejected", "status", result.Status.String(), "error", result.Err.Error())
		return result
	}

	idea := result.Idea
	idea.ID = uuid.NewString()
	idea.Status = core.StatusDraft
	idea.CreatedAt = g.now().UTC()
	result.Idea = idea

	if g.dedup != nil {
		dup, err := g.dedup.HasFingerprint(idea.Fingerprint)
		if err != nil {
			g.log.Warn("Duplicate check failed", "fingerprint", idea.Fingerprint, "error", err.Error())
		}
		result.Duplicate = dup
	}
	return result
}

// Parse decodes a raw LLM response into an idea. Fields are read loosely:
// numbers and arrays are accepted where text is expected. Text fields are
// repaired for double encoding before the fingerprint is computed.
func Parse(raw string) Result {
	body := llm.ExtractJSON(raw)
	if !gjson.Valid(body) {
		return Result{Status: StatusParseError, Err: fmt.Errorf("failed to parse idea JSON: response is not valid JSON"), Raw: raw}
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return Result{Status: StatusParseError, Err: fmt.Errorf("failed to parse idea JSON: expected an object"), Raw: raw}
	}

	idea := core.Idea{
		Name:         clean(text(doc.Get("name"))),
		Problem:      clean(text(doc.Get("problem"))),
		Solution:     clean(text(doc.Get("solution"))),
		Description:  clean(text(doc.Get("description"))),
		Vertical:     clean(text(doc.Get("vertical"))),
		Type:         clean(text(doc.Get("type"))),
		Monetization: clean(text(doc.Get("monetization"))),
		Price:        core.Price(clean(text(doc.Get("price")))),
		Effort:       strings.ToLower(clean(text(doc.Get("effort")))),
	}

	var missing []string
	if idea.Name == "" {
		missing = append(missing, "name")
	}
	if idea.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return Result{Status: StatusValidationError, Err: fmt.Errorf("idea is missing required fields: %s", strings.Join(missing, ", ")), Raw: raw}
	}

	if score, ok := parseScore(text(doc.Get("score"))); ok {
		idea.GeneratorScore = &score
	}
	idea.Fingerprint = Fingerprint(idea.Name, idea.Description)
	return Result{Status: StatusOK, Idea: idea, Raw: raw}
}

// text flattens a JSON value to a string. Arrays are joined with ", ";
// objects and null read as empty.
func text(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return r.String()
	case r.Type == gjson.Number:
		return strconv.FormatFloat(r.Float(), 'f', -1, 64)
	case r.Type == gjson.True || r.Type == gjson.False:
		return r.Raw
	case r.IsArray():
		var parts []string
		for _, item := range r.Array() {
			if s := strings.TrimSpace(text(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func clean(s string) string {
	return strings.TrimSpace(textfix.Normalize(s))
}

func parseScore(s string) (int, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return int(math.Round(math.Max(0, math.Min(100, f)))), true
}
