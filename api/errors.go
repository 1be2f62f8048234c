package api

import "errors"

var (
	// ErrBackendFailed is returned when a model backend call fails
	ErrBackendFailed = errors.New("model backend call failed")
	// ErrEvaluationFailed is returned when at least one node of a graph failed to evaluate
	ErrEvaluationFailed = errors.New("graph evaluation failed")
	// ErrNotEvaluated is returned when scoring a graph that has not been evaluated yet
	ErrNotEvaluated = errors.New("graph has not been evaluated")
	// ErrMixedKinds is returned when a graph is built from nodes producing different result kinds
	ErrMixedKinds = errors.New("graph nodes must produce the same result kind")
	// ErrNoCriterion is returned when a node is built without a criterion
	ErrNoCriterion = errors.New("criterion is required")
	// ErrNoTools is returned when a tool-derived node is built without tools
	ErrNoTools = errors.New("at least one tool is required")
	// ErrNoBackend is returned when a graph is built without a model backend
	ErrNoBackend = errors.New("model backend is required")
	// ErrNoExpectedValue is returned when a reference based criterion is built without a reference
	ErrNoExpectedValue = errors.New("expected value is required")
)
