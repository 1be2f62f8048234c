package node

import (
	"context"
	"fmt"

	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/schema"
)

const binaryPrompt = `You are a helpful judging assistant.
Evaluate whether the provided content passes the criteria.
Your output is boolean and should be provided in the "pass" field.
Use true if it passes, false if it does not.
Additionally, provide reasoning behind your answer in the "reason" field.`

var binarySchema = schema.MustFor[api.BinaryResult]()

// Binary judges whether content passes a natural-language criterion
type Binary struct {
	criterion string
	opts      Options
}

// NewBinary returns a node producing api.BinaryResult
func NewBinary(criterion string, opts ...func(*Options)) (*Binary, error) {
	if criterion == "" {
		return nil, api.ErrNoCriterion
	}
	return &Binary{criterion: criterion, opts: newOptions(opts)}, nil
}

// Criterion returns the judging rule of the node
func (n *Binary) Criterion() string { return n.criterion }

func (n *Binary) Kind() api.Kind { return api.KindBinary }

// Evaluate implements api.Node
func (n *Binary) Evaluate(ctx context.Context, content string, backend api.Backend, model string) (api.Result, error) {
	messages := []api.Message{
		{Role: api.RoleSystem, Content: binaryPrompt},
		{Role: api.RoleDeveloper, Content: fmt.Sprintf("Evaluation criteria: %s", n.criterion)},
		{Role: api.RoleUser, Content: content},
	}

	raw, err := backend.StructuredComplete(ctx, model, messages, binarySchema, n.opts.callOptions())
	if err != nil {
		return nil, backendError(err)
	}

	var result api.BinaryResult
	if !decode(raw, &result, "pass") {
		clog.FromContext(ctx).With("criterion", n.criterion).Warn("Unusable binary judgment, defaulting to fail")
		return api.BinaryResult{Pass: false, Reason: api.FallbackReason}, nil
	}
	return result, nil
}

var _ api.Node = (*Binary)(nil)
