package node

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
)

const toolPrompt = `You are a helpful judging assistant.
Evaluate whether the provided content passes the criteria determined by function calling.`

// ToolDerived delegates scoring to the tool the model selects.
// Only the first tool result is used; additional calls are ignored.
type ToolDerived struct {
	criterion string
	tools     []api.Tool
	opts      Options
}

// NewToolDerived returns a node producing api.NumericResult.
// criterion should tell the model in which cases each tool has to be called.
func NewToolDerived(criterion string, tools []api.Tool, opts ...func(*Options)) (*ToolDerived, error) {
	if criterion == "" {
		return nil, api.ErrNoCriterion
	}
	if len(tools) == 0 {
		return nil, api.ErrNoTools
	}
	return &ToolDerived{
		criterion: criterion,
		tools:     append([]api.Tool(nil), tools...),
		opts:      newOptions(opts),
	}, nil
}

// Criterion returns the judging rule of the node
func (n *ToolDerived) Criterion() string { return n.criterion }

// Weight returns the score multiplier
func (n *ToolDerived) Weight() float64 { return n.opts.weight }

func (n *ToolDerived) Kind() api.Kind { return api.KindNumeric }

// Evaluate implements api.Node
func (n *ToolDerived) Evaluate(ctx context.Context, content string, backend api.Backend, model string) (api.Result, error) {
	log := clog.FromContext(ctx).With("criterion", n.criterion)

	messages := []api.Message{
		{Role: api.RoleSystem, Content: toolPrompt},
		{Role: api.RoleDeveloper, Content: n.criterion},
		{Role: api.RoleUser, Content: content},
	}

	results, err := backend.ToolComplete(ctx, model, messages, n.tools, n.opts.callOptions())
	if err != nil {
		return nil, backendError(err)
	}

	if len(results) == 0 {
		log.Warn("Model did not call any tool, defaulting to 0")
		return api.NumericResult{Score: 0, Reason: api.FallbackReason}, nil
	}
	if len(results) > 1 {
		log.With("calls", len(results)).Info("Model called several tools, using the first result")
	}

	score, ok := toFloat(results[0])
	if !ok {
		log.With("result", results[0]).Warn("Tool result is not numeric, defaulting to 0")
		return api.NumericResult{Score: 0, Reason: api.FallbackReason}, nil
	}

	return api.NumericResult{Score: score * n.opts.weight, Reason: api.ToolCallReason}, nil
}

var _ api.Node = (*ToolDerived)(nil)
