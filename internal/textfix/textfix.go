// Package textfix repairs text that was UTF-8 encoded twice, a failure mode
// seen in LLM responses ("CafÃ©" instead of "Café").
package textfix

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"ideaforge/internal/core"
)

// mojibake lists the UTF-8 bytes of é, ó, ñ, á and í misread as Latin-1.
var mojibake = []string{"Ã©", "Ã³", "Ã±", "Ã¡", "Ã­"}

// IsDoubleEncoded reports whether s contains one of the telltale sequences.
func IsDoubleEncoded(s string) bool {
	for _, m := range mojibake {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// Normalize reverses double encoding. Text without the telltale sequences
// is returned as is, and so is text that cannot be repaired. The repair is
// repeated until the text is clean, which makes Normalize idempotent.
func Normalize(s string) string {
	for IsDoubleEncoded(s) {
		fixed, ok := repair(s)
		if !ok {
			return s
		}
		s = fixed
	}
	return s
}

func repair(s string) (string, bool) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return "", false
	}
	if !utf8.ValidString(latin1) || latin1 == s {
		return "", false
	}
	return latin1, true
}

// NormalizeIdea repairs every text field of an idea.
func NormalizeIdea(idea core.Idea) core.Idea {
	idea.Name = Normalize(idea.Name)
	idea.Problem = Normalize(idea.Problem)
	idea.Solution = Normalize(idea.Solution)
	idea.Description = Normalize(idea.Description)
	idea.Vertical = Normalize(idea.Vertical)
	idea.Type = Normalize(idea.Type)
	idea.Monetization = Normalize(idea.Monetization)
	idea.Price = core.Price(Normalize(string(idea.Price)))
	idea.Effort = Normalize(idea.Effort)
	return idea
}
