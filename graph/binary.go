package graph

import (
	"fmt"

	"github.com/datar-psa/stargraph/api"
)

// Binary is a graph of nodes producing api.BinaryResult.
//
// AllPass reports whether every criterion passed; Score counts passing criteria.
type Binary struct {
	*Graph
}

// NewBinary creates a graph that only accepts binary nodes.
func NewBinary(backend api.Backend, model string, nodes []api.Node, opts ...func(*Options)) (*Binary, error) {
	if err := requireKind(nodes, api.KindBinary); err != nil {
		return nil, err
	}
	g, err := New(backend, model, nodes, opts...)
	if err != nil {
		return nil, err
	}
	return &Binary{Graph: g}, nil
}

// Verdicts returns the pass flags of the last evaluation in node order.
func (g *Binary) Verdicts() ([]bool, error) {
	results, err := g.Results()
	if err != nil {
		return nil, err
	}
	return Verdicts(results)
}

// AllPass returns true if every criterion of the last evaluation passed.
func (g *Binary) AllPass() (bool, error) {
	results, err := g.Results()
	if err != nil {
		return false, err
	}
	return AllPass(results)
}

// Score scores the last evaluation, see BinaryScore.
func (g *Binary) Score(normalize bool) (float64, error) {
	results, err := g.Results()
	if err != nil {
		return 0, err
	}
	return BinaryScore(results, normalize)
}

// Verdicts returns the pass flags of binary results in order.
func Verdicts(results []api.Result) ([]bool, error) {
	verdicts := make([]bool, len(results))
	for i, res := range results {
		r, ok := res.(api.BinaryResult)
		if !ok {
			return nil, fmt.Errorf("%w: result %d is %T", api.ErrMixedKinds, i, res)
		}
		verdicts[i] = r.Pass
	}
	return verdicts, nil
}

// AllPass returns true if every result passed.
// An empty list passes vacuously.
func AllPass(results []api.Result) (bool, error) {
	verdicts, err := Verdicts(results)
	if err != nil {
		return false, err
	}
	for _, pass := range verdicts {
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// BinaryScore returns the number of passed results.
// When normalize is true the count is divided by the number of results, giving a value in [0,1];
// an empty list scores 0 in both modes.
func BinaryScore(results []api.Result, normalize bool) (float64, error) {
	verdicts, err := Verdicts(results)
	if err != nil {
		return 0, err
	}

	passed := 0
	for _, pass := range verdicts {
		if pass {
			passed++
		}
	}

	if normalize {
		if len(verdicts) == 0 {
			return 0, nil
		}
		return float64(passed) / float64(len(verdicts)), nil
	}
	return float64(passed), nil
}

func requireKind(nodes []api.Node, kind api.Kind) error {
	for i, n := range nodes {
		if n != nil && n.Kind() != kind {
			return fmt.Errorf("%w: node %d is %s, graph is %s", api.ErrMixedKinds, i, n.Kind(), kind)
		}
	}
	return nil
}
