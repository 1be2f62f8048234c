package stargraph

import "github.com/datar-psa/stargraph/api"

var (
	// ErrBackendFailed is returned when a model backend call fails
	ErrBackendFailed = api.ErrBackendFailed
	// ErrEvaluationFailed is returned when at least one node of a graph failed to evaluate
	ErrEvaluationFailed = api.ErrEvaluationFailed
	// ErrNotEvaluated is returned when scoring a graph that has not been evaluated yet
	ErrNotEvaluated = api.ErrNotEvaluated
	// ErrMixedKinds is returned when a graph mixes binary and numeric nodes
	ErrMixedKinds = api.ErrMixedKinds
	ErrNoCriterion = api.ErrNoCriterion
	ErrNoTools     = api.ErrNoTools
	ErrNoBackend   = api.ErrNoBackend

	ErrNoExpectedValue = api.ErrNoExpectedValue
)
