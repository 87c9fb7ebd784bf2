package core

import (
	"encoding/json"
	"testing"
)

func TestMergeKeepsGeneratorScore(t *testing.T) {
	idea := Idea{Name: "Ledgerly", GeneratorScore: IntPtr(81)}
	idea.Merge(Critique{CriticScore: 72, ViralityScore: 60, GeneratorScore: 55})

	if *idea.CriticScore != 72 {
		t.Errorf("Expected critic score 72, got %d", *idea.CriticScore)
	}
	if *idea.ViralityScore != 60 {
		t.Errorf("Expected virality score 60, got %d", *idea.ViralityScore)
	}
	if *idea.GeneratorScore != 81 {
		t.Errorf("Expected generator score to stay 81, got %d", *idea.GeneratorScore)
	}
}

func TestMergeFillsMissingGeneratorScore(t *testing.T) {
	idea := Idea{Name: "Ledgerly"}
	idea.Merge(Critique{CriticScore: 40, ViralityScore: 30, GeneratorScore: 70})

	if idea.GeneratorScore == nil || *idea.GeneratorScore != 70 {
		t.Fatalf("Expected generator score 70, got %v", idea.GeneratorScore)
	}
	score, ok := idea.Score()
	if !ok || score != 40 {
		t.Errorf("Expected Score() = 40, true; got %d, %v", score, ok)
	}
}

func TestScoreUnknown(t *testing.T) {
	if _, ok := (Idea{}).Score(); ok {
		t.Error("Expected no score for an unscored idea")
	}
}

func TestPriceUnmarshal(t *testing.T) {
	cases := map[string]Price{
		`{"price": 29}`:          "29",
		`{"price": 9.99}`:        "9.99",
		`{"price": "$19/month"}`: "$19/month",
		`{"price": null}`:        "",
	}
	for input, want := range cases {
		var v struct {
			Price Price `json:"price"`
		}
		if err := json.Unmarshal([]byte(input), &v); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", input, err)
		}
		if v.Price != want {
			t.Errorf("Unmarshal(%s) = %q, want %q", input, v.Price, want)
		}
	}
}

func TestPriceRejectsObjects(t *testing.T) {
	var v struct {
		Price Price `json:"price"`
	}
	if err := json.Unmarshal([]byte(`{"price": {"amount": 1}}`), &v); err == nil {
		t.Error("Expected an error for an object price")
	}
}
