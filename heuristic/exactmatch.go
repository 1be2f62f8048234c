// Package heuristic provides criteria that are decided without a model call.
package heuristic

import (
	"context"
	"strings"

	"github.com/datar-psa/stargraph/api"
)

// ExactMatchOptions configures the ExactMatch node
type ExactMatchOptions struct {
	// CaseInsensitive determines if the comparison should ignore case
	CaseInsensitive bool
	// TrimWhitespace determines if leading and trailing whitespace should be trimmed
	TrimWhitespace bool
}

// ExactMatch is a binary node that passes when the content equals the expected value.
// It never calls the graph backend.
type ExactMatch struct {
	expected string
	opts     ExactMatchOptions
}

// NewExactMatch returns a binary node comparing content with expected
func NewExactMatch(expected string, opts ExactMatchOptions) (*ExactMatch, error) {
	if expected == "" {
		return nil, api.ErrNoExpectedValue
	}
	return &ExactMatch{expected: expected, opts: opts}, nil
}

func (n *ExactMatch) Kind() api.Kind { return api.KindBinary }

// Evaluate implements api.Node
func (n *ExactMatch) Evaluate(ctx context.Context, content string, _ api.Backend, _ string) (api.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n.normalize(content) == n.normalize(n.expected) {
		return api.BinaryResult{Pass: true, Reason: "Content matches the expected value"}, nil
	}
	return api.BinaryResult{Pass: false, Reason: "Content does not match the expected value"}, nil
}

func (n *ExactMatch) normalize(s string) string {
	if n.opts.TrimWhitespace {
		s = strings.TrimSpace(s)
	}
	if n.opts.CaseInsensitive {
		s = strings.ToLower(s)
	}
	return s
}

var _ api.Node = (*ExactMatch)(nil)
