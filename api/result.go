package api

import "context"

// Kind identifies which result contract a node produces
type Kind int

const (
	KindBinary Kind = iota + 1
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

const (
	// FallbackReason is reported when the backend produced nothing usable
	FallbackReason = "Unable to parse model response."
	// ToolCallReason is reported for scores derived from a tool invocation
	ToolCallReason = "Tool call"
)

// Result is the judgment produced by evaluating a single node
type Result interface {
	Kind() Kind
}

// BinaryResult is the pass/fail verdict of a binary criterion
type BinaryResult struct {
	Pass   bool   `json:"pass" jsonschema:"required,description=True if the content passes the criteria, false otherwise"`
	Reason string `json:"reason" jsonschema:"required,description=Reasoning behind the verdict"`
}

func (BinaryResult) Kind() Kind { return KindBinary }

// NumericResult is the score of a numeric criterion.
// Score is already multiplied by the node weight.
type NumericResult struct {
	Score  float64 `json:"score" jsonschema:"required,description=Numeric score of the selected verdict"`
	Reason string  `json:"reason" jsonschema:"required,description=Reasoning behind the score"`
}

func (NumericResult) Kind() Kind { return KindNumeric }

// Node is one independently evaluable criterion
type Node interface {
	// Kind reports the result contract produced by Evaluate
	Kind() Kind
	// Evaluate judges content with the backend.
	// Backend failures are returned as errors; unusable model output is mapped
	// to the most conservative result of the node kind.
	Evaluate(ctx context.Context, content string, backend Backend, model string) (Result, error)
}
