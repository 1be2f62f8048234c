package graph

import (
	"fmt"

	"github.com/datar-psa/stargraph/api"
)

// Numeric is a graph of nodes producing api.NumericResult, i.e. weighted and tool-derived nodes.
type Numeric struct {
	*Graph
}

// NewNumeric creates a graph that only accepts numeric nodes.
func NewNumeric(backend api.Backend, model string, nodes []api.Node, opts ...func(*Options)) (*Numeric, error) {
	if err := requireKind(nodes, api.KindNumeric); err != nil {
		return nil, err
	}
	g, err := New(backend, model, nodes, opts...)
	if err != nil {
		return nil, err
	}
	return &Numeric{Graph: g}, nil
}

// Scores returns the weighted scores of the last evaluation in node order.
func (g *Numeric) Scores() ([]float64, error) {
	results, err := g.Results()
	if err != nil {
		return nil, err
	}
	return Scores(results)
}

// Score scores the last evaluation, see NumericScore.
func (g *Numeric) Score(maxScore float64) (float64, error) {
	results, err := g.Results()
	if err != nil {
		return 0, err
	}
	return NumericScore(results, maxScore)
}

// Scores returns the scores of numeric results in order.
func Scores(results []api.Result) ([]float64, error) {
	scores := make([]float64, len(results))
	for i, res := range results {
		r, ok := res.(api.NumericResult)
		if !ok {
			return nil, fmt.Errorf("%w: result %d is %T", api.ErrMixedKinds, i, res)
		}
		scores[i] = r.Score
	}
	return scores, nil
}

// NumericScore returns the sum of result scores. Weights are already applied by the nodes.
// If maxScore is not 0 the sum is divided by it.
func NumericScore(results []api.Result, maxScore float64) (float64, error) {
	scores, err := Scores(results)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}

	if maxScore != 0 {
		return sum / maxScore, nil
	}
	return sum, nil
}
