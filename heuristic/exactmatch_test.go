package heuristic

import (
	"context"
	"errors"
	"testing"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/graph"
	"github.com/datar-psa/stargraph/internal/fakebackend"
)

func TestExactMatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     ExactMatchOptions
		content  string
		expected string
		wantPass bool
	}{
		{
			name:     "exact match",
			content:  "4",
			expected: "4",
			wantPass: true,
		},
		{
			name:     "no match",
			content:  "5",
			expected: "4",
		},
		{
			name:     "case sensitive mismatch",
			opts:     ExactMatchOptions{CaseInsensitive: false},
			content:  "Paris",
			expected: "paris",
		},
		{
			name:     "case insensitive match",
			opts:     ExactMatchOptions{CaseInsensitive: true},
			content:  "PARIS",
			expected: "paris",
			wantPass: true,
		},
		{
			name:     "whitespace mismatch",
			content:  "  Paris\n",
			expected: "Paris",
		},
		{
			name:     "trim whitespace match",
			opts:     ExactMatchOptions{TrimWhitespace: true},
			content:  "  Paris\n",
			expected: "Paris",
			wantPass: true,
		},
		{
			name:     "trim and case insensitive",
			opts:     ExactMatchOptions{TrimWhitespace: true, CaseInsensitive: true},
			content:  " PARIS ",
			expected: "paris",
			wantPass: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewExactMatch(tt.expected, tt.opts)
			if err != nil {
				t.Fatalf("NewExactMatch() unexpected error = %v", err)
			}

			res, err := n.Evaluate(ctx, tt.content, nil, "")
			if err != nil {
				t.Fatalf("Evaluate() unexpected error = %v", err)
			}
			r, ok := res.(api.BinaryResult)
			if !ok {
				t.Fatalf("Evaluate() returned %T, want api.BinaryResult", res)
			}
			if r.Pass != tt.wantPass {
				t.Errorf("Pass = %v, want %v", r.Pass, tt.wantPass)
			}
			if r.Reason == "" {
				t.Error("Reason is empty")
			}
		})
	}
}

func TestNewExactMatch_NoExpected(t *testing.T) {
	_, err := NewExactMatch("", ExactMatchOptions{})
	if !errors.Is(err, api.ErrNoExpectedValue) {
		t.Errorf("NewExactMatch() error = %v, want %v", err, api.ErrNoExpectedValue)
	}
}

func TestExactMatch_InGraph(t *testing.T) {
	backend := &fakebackend.Backend{Structured: map[string]any{"pass": true, "reason": "ok"}}

	n, err := NewExactMatch("Paris", ExactMatchOptions{TrimWhitespace: true})
	if err != nil {
		t.Fatalf("NewExactMatch() unexpected error = %v", err)
	}
	g, err := graph.NewBinary(backend, "", []api.Node{n})
	if err != nil {
		t.Fatalf("graph.NewBinary() unexpected error = %v", err)
	}

	if _, err := g.Evaluate(context.Background(), "Paris "); err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}
	allPass, err := g.AllPass()
	if err != nil {
		t.Fatalf("AllPass() unexpected error = %v", err)
	}
	if !allPass {
		t.Error("AllPass() = false, want true")
	}
	if calls := backend.Calls(); len(calls) != 0 {
		t.Errorf("backend called %d times, want 0", len(calls))
	}
}
