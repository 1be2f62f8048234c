package llmjudge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/graph"
	"github.com/datar-psa/stargraph/internal/fakebackend"
	"github.com/datar-psa/stargraph/node"
)

func developerMessages(messages []api.Message) []string {
	var out []string
	for _, m := range messages {
		if m.Role == api.RoleDeveloper {
			out = append(out, m.Content)
		}
	}
	return out
}

func TestRubric(t *testing.T) {
	backend := &fakebackend.Backend{Structured: map[string]any{"score": 0.75, "reason": "clear"}}

	n, err := Rubric("Clarity of the response", []string{"unclear", "somewhat clear", "clear"}, node.WithWeight(2))
	if err != nil {
		t.Fatalf("Rubric() unexpected error = %v", err)
	}

	res, err := n.Evaluate(context.Background(), "some content", backend, "")
	if err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}
	if diff := cmp.Diff(api.NumericResult{Score: 1.5, Reason: "clear"}, res); diff != "" {
		t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
	}

	calls := backend.Calls()
	if len(calls) != 1 {
		t.Fatalf("backend called %d times, want 1", len(calls))
	}
	want := []string{
		"Evaluation criteria: Clarity of the response",
		"Possible verdicts:\n" +
			"- 0.00 if the response is: unclear\n" +
			"- 0.50 if the response is: somewhat clear\n" +
			"- 1.00 if the response is: clear",
	}
	if diff := cmp.Diff(want, developerMessages(calls[0].Messages)); diff != "" {
		t.Errorf("developer messages mismatch (-want +got):\n%s", diff)
	}
}

func TestRubric_Errors(t *testing.T) {
	tests := []struct {
		name      string
		criterion string
		levels    []string
		wantErr   error
	}{
		{name: "no levels", criterion: "Clarity", wantErr: ErrTooFewLevels},
		{name: "single level", criterion: "Clarity", levels: []string{"clear"}, wantErr: ErrTooFewLevels},
		{name: "no criterion", levels: []string{"bad", "good"}, wantErr: api.ErrNoCriterion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rubric(tt.criterion, tt.levels)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Rubric() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactuality(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		opts       FactualityOptions
		structured map[string]any
		wantScore  float64
		wantReason string
		wantInput  bool
	}{
		{
			name:       "fully correct",
			opts:       FactualityOptions{Input: "What is the capital of France?", Expected: "Paris"},
			structured: map[string]any{"score": 1, "reason": "Both state Paris"},
			wantScore:  1,
			wantReason: "Both state Paris",
			wantInput:  true,
		},
		{
			name:       "partially correct without question",
			opts:       FactualityOptions{Expected: "Paris, on the Seine"},
			structured: map[string]any{"score": 0.5, "reason": "Misses the river"},
			wantScore:  0.5,
			wantReason: "Misses the river",
		},
		{
			name:       "unparsable judgment",
			opts:       FactualityOptions{Expected: "Paris"},
			structured: nil,
			wantScore:  0,
			wantReason: api.FallbackReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakebackend.Backend{Structured: tt.structured}

			n, err := Factuality(tt.opts)
			if err != nil {
				t.Fatalf("Factuality() unexpected error = %v", err)
			}
			res, err := n.Evaluate(ctx, "Paris is the capital of France", backend, "")
			if err != nil {
				t.Fatalf("Evaluate() unexpected error = %v", err)
			}
			r := res.(api.NumericResult)
			if r.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", r.Score, tt.wantScore)
			}
			if r.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", r.Reason, tt.wantReason)
			}

			criterion := n.Criterion()
			if !strings.Contains(criterion, "Expected answer: "+tt.opts.Expected) {
				t.Errorf("Criterion() = %q, missing expected answer", criterion)
			}
			if got := strings.Contains(criterion, "Question: "); got != tt.wantInput {
				t.Errorf("Criterion() contains question = %v, want %v", got, tt.wantInput)
			}
		})
	}
}

func TestFactuality_NoExpected(t *testing.T) {
	_, err := Factuality(FactualityOptions{Input: "What is the capital of France?"})
	if !errors.Is(err, api.ErrNoExpectedValue) {
		t.Errorf("Factuality() error = %v, want %v", err, api.ErrNoExpectedValue)
	}
}

func TestTonality_Weights(t *testing.T) {
	tests := []struct {
		name        string
		opts        TonalityOptions
		wantWeights []float64
		wantNames   []string
	}{
		{
			name:        "defaults to equal weights",
			opts:        TonalityOptions{},
			wantWeights: []float64{0.25, 0.25, 0.25, 0.25},
			wantNames:   []string{"Professionalism", "Kindness", "Clarity", "Helpfulness"},
		},
		{
			name:        "normalizes weights",
			opts:        TonalityOptions{ProfessionalismWeight: 3, KindnessWeight: 1},
			wantWeights: []float64{0.75, 0.25},
			wantNames:   []string{"Professionalism", "Kindness"},
		},
		{
			name:        "ignores negative weights",
			opts:        TonalityOptions{ClarityWeight: 2, HelpfulnessWeight: -1},
			wantWeights: []float64{1},
			wantNames:   []string{"Clarity"},
		},
		{
			name:        "all negative falls back to equal weights",
			opts:        TonalityOptions{ProfessionalismWeight: -1, KindnessWeight: -2},
			wantWeights: []float64{0.25, 0.25, 0.25, 0.25},
			wantNames:   []string{"Professionalism", "Kindness", "Clarity", "Helpfulness"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Tonality(tt.opts)
			if err != nil {
				t.Fatalf("Tonality() unexpected error = %v", err)
			}

			var weights []float64
			var names []string
			for _, n := range nodes {
				w, ok := n.(*node.Weighted)
				if !ok {
					t.Fatalf("node is %T, want *node.Weighted", n)
				}
				weights = append(weights, w.Weight())
				names = append(names, strings.Fields(w.Criterion())[0])
			}
			if diff := cmp.Diff(tt.wantWeights, weights); diff != "" {
				t.Errorf("weights mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantNames, names); diff != "" {
				t.Errorf("dimensions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTonality_NumericGraph(t *testing.T) {
	backend := &fakebackend.Backend{
		Respond: func(messages []api.Message) (map[string]any, error) {
			for _, m := range developerMessages(messages) {
				if strings.HasPrefix(m, "Evaluation criteria: Professionalism") {
					return map[string]any{"score": 1.0, "reason": "impeccable"}, nil
				}
			}
			return map[string]any{"score": 0.5, "reason": "average"}, nil
		},
	}

	nodes, err := Tonality(TonalityOptions{}, node.WithBackendOptions(api.Options{"temperature": 0.2}))
	if err != nil {
		t.Fatalf("Tonality() unexpected error = %v", err)
	}
	g, err := graph.NewNumeric(backend, "judge", nodes)
	if err != nil {
		t.Fatalf("graph.NewNumeric() unexpected error = %v", err)
	}

	if _, err := g.Evaluate(context.Background(), "Thanks for asking! Here is how to reset your password."); err != nil {
		t.Fatalf("Evaluate() unexpected error = %v", err)
	}

	scores, err := g.Scores()
	if err != nil {
		t.Fatalf("Scores() unexpected error = %v", err)
	}
	if diff := cmp.Diff([]float64{0.25, 0.125, 0.125, 0.125}, scores); diff != "" {
		t.Errorf("Scores() mismatch (-want +got):\n%s", diff)
	}

	score, err := g.Score(0)
	if err != nil {
		t.Fatalf("Score() unexpected error = %v", err)
	}
	if score != 0.625 {
		t.Errorf("Score(0) = %v, want 0.625", score)
	}

	for _, call := range backend.Calls() {
		if call.Model != "judge" {
			t.Errorf("call model = %q, want %q", call.Model, "judge")
		}
		if call.Options["temperature"] != 0.2 {
			t.Errorf("call temperature = %v, want 0.2", call.Options["temperature"])
		}
	}
}
