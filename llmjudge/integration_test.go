package llmjudge_test

import (
	"context"
	"testing"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/graph"
	"github.com/datar-psa/stargraph/internal/testutils"
	"github.com/datar-psa/stargraph/llmjudge"
)

const testModel = "publishers/google/models/gemini-2.5-flash"

// TestFactuality_Integration tests the Factuality criterion with real Gemini API calls
func TestFactuality_Integration(t *testing.T) {
	config := testutils.DefaultGeminiTestConfig("factuality")
	testutils.SkipUnlessRecorded(t, config)

	ctx := context.Background()
	backend := testutils.NewGeminiBackend(t, config, testModel)

	tests := []struct {
		name     string
		input    string
		output   string
		expected string
		minScore float64
		maxScore float64
	}{
		{
			name:     "correct capital answer",
			input:    "What is the capital of France?",
			output:   "Paris",
			expected: "Paris",
			minScore: 0.9,
			maxScore: 1.0,
		},
		{
			name:     "wrong capital answer",
			input:    "What is the capital of France?",
			output:   "London is the capital of France.",
			expected: "Paris",
			minScore: 0.0,
			maxScore: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := llmjudge.Factuality(llmjudge.FactualityOptions{Input: tt.input, Expected: tt.expected})
			if err != nil {
				t.Fatalf("Factuality() unexpected error = %v", err)
			}
			g, err := graph.NewNumeric(backend, "", []api.Node{n})
			if err != nil {
				t.Fatalf("graph.NewNumeric() unexpected error = %v", err)
			}
			if _, err := g.Evaluate(ctx, tt.output); err != nil {
				t.Fatalf("Evaluate() unexpected error = %v", err)
			}
			score, err := g.Score(0)
			if err != nil {
				t.Fatalf("Score() unexpected error = %v", err)
			}
			if score < tt.minScore || score > tt.maxScore {
				t.Errorf("Score(0) = %v, want between %v and %v", score, tt.minScore, tt.maxScore)
			}
		})
	}
}

// TestTonality_Integration tests the Tonality criteria with real Gemini API calls
func TestTonality_Integration(t *testing.T) {
	config := testutils.DefaultGeminiTestConfig("tonality")
	testutils.SkipUnlessRecorded(t, config)

	ctx := context.Background()
	backend := testutils.NewGeminiBackend(t, config, testModel)

	nodes, err := llmjudge.Tonality(llmjudge.TonalityOptions{})
	if err != nil {
		t.Fatalf("Tonality() unexpected error = %v", err)
	}
	g, err := graph.NewNumeric(backend, "", nodes)
	if err != nil {
		t.Fatalf("graph.NewNumeric() unexpected error = %v", err)
	}

	content := "Thanks for reaching out! To reset your password, open Settings, choose Security and click Reset password. " +
		"If the email does not arrive within a few minutes, check your spam folder."
	if _, err := g.Evaluate(ctx, content); err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}
	score, err := g.Score(0)
	if err != nil {
		t.Fatalf("Score() unexpected error = %v", err)
	}
	if score < 0.6 || score > 1.0 {
		t.Errorf("Score(0) = %v, want between 0.6 and 1.0", score)
	}
}
