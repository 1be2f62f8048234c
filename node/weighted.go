package node

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/schema"
)

const weightedPrompt = `You are a helpful judging assistant.
Evaluate which verdict the provided criteria results in.
Your output is numeric and should be provided in the "score" field.
Additionally, provide reasoning behind your answer in the "reason" field.`

var numericSchema = schema.MustFor[api.NumericResult]()

// Weighted scores content against a criterion and a set of verdict descriptions.
// The model score is multiplied by the node weight.
type Weighted struct {
	criterion string
	verdicts  []string
	opts      Options
}

// NewWeighted returns a node producing api.NumericResult.
// verdicts describe which score each outcome of the criterion is worth, e.g. "2 if the answer cites a source".
func NewWeighted(criterion string, verdicts []string, opts ...func(*Options)) (*Weighted, error) {
	if criterion == "" {
		return nil, api.ErrNoCriterion
	}
	return &Weighted{
		criterion: criterion,
		verdicts:  append([]string(nil), verdicts...),
		opts:      newOptions(opts),
	}, nil
}

// Criterion returns the judging rule of the node
func (n *Weighted) Criterion() string { return n.criterion }

// Weight returns the score multiplier
func (n *Weighted) Weight() float64 { return n.opts.weight }

func (n *Weighted) Kind() api.Kind { return api.KindNumeric }

// Evaluate implements api.Node
func (n *Weighted) Evaluate(ctx context.Context, content string, backend api.Backend, model string) (api.Result, error) {
	messages := []api.Message{
		{Role: api.RoleSystem, Content: weightedPrompt},
		{Role: api.RoleDeveloper, Content: fmt.Sprintf("Evaluation criteria: %s", n.criterion)},
		{Role: api.RoleDeveloper, Content: fmt.Sprintf("Possible verdicts:\n%s", formatVerdicts(n.verdicts))},
		{Role: api.RoleUser, Content: content},
	}

	raw, err := backend.StructuredComplete(ctx, model, messages, numericSchema, n.opts.callOptions())
	if err != nil {
		return nil, backendError(err)
	}

	var result api.NumericResult
	if !decode(raw, &result, "score") || !isFinite(result.Score) {
		clog.FromContext(ctx).With("criterion", n.criterion).Warn("Unusable numeric judgment, defaulting to 0")
		return api.NumericResult{Score: 0, Reason: api.FallbackReason}, nil
	}

	result.Score *= n.opts.weight
	return result, nil
}

func formatVerdicts(verdicts []string) string {
	var sb strings.Builder
	for i, v := range verdicts {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(v)
	}
	return sb.String()
}

var _ api.Node = (*Weighted)(nil)
