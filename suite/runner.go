package suite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/graph"
	"github.com/datar-psa/stargraph/heuristic"
	"github.com/datar-psa/stargraph/llmjudge"
	"github.com/datar-psa/stargraph/node"
)

// BuildOptions configures how a suite is turned into a graph
type BuildOptions struct {
	moderation api.ModerationProvider
	model      string
}

// WithModerationProvider sets the provider used by moderation criteria
func WithModerationProvider(provider api.ModerationProvider) func(*BuildOptions) {
	return func(opts *BuildOptions) {
		opts.moderation = provider
	}
}

// WithModel overrides the model declared by the suite
func WithModel(model string) func(*BuildOptions) {
	return func(opts *BuildOptions) {
		opts.model = model
	}
}

// Runner evaluates content against a built suite
type Runner struct {
	suite    *Suite
	model    string
	criteria []string
	binary   *graph.Binary
	numeric  *graph.Numeric
}

// Report is the outcome of one run
type Report struct {
	Suite   string       `json:"suite"`
	Kind    string       `json:"kind"`
	Model   string       `json:"model,omitempty"`
	Score   float64      `json:"score"`
	AllPass *bool        `json:"all_pass,omitempty"`
	Results []NodeReport `json:"results"`
}

// NodeReport is the result of one criterion
type NodeReport struct {
	Criterion string   `json:"criterion"`
	Pass      *bool    `json:"pass,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Reason    string   `json:"reason"`
}

// Build creates the nodes and graph of the suite
func (s *Suite) Build(backend api.Backend, opts ...func(*BuildOptions)) (*Runner, error) {
	options := &BuildOptions{model: s.Model}
	for _, opt := range opts {
		opt(options)
	}

	var graphOpts []func(*graph.Options)
	if s.Concurrency > 0 {
		graphOpts = append(graphOpts, graph.WithConcurrency(s.Concurrency))
	}

	nodes := make([]api.Node, 0, len(s.Criteria))
	criteria := make([]string, 0, len(s.Criteria))
	for i, c := range s.Criteria {
		built, labels, err := s.buildNodes(c, options)
		if err != nil {
			return nil, fmt.Errorf("criteria[%d]: %w", i, err)
		}
		nodes = append(nodes, built...)
		criteria = append(criteria, labels...)
	}

	r := &Runner{suite: s, model: options.model, criteria: criteria}
	switch s.ResolvedKind() {
	case api.KindBinary:
		g, err := graph.NewBinary(backend, options.model, nodes, graphOpts...)
		if err != nil {
			return nil, err
		}
		r.binary = g
	case api.KindNumeric:
		g, err := graph.NewNumeric(backend, options.model, nodes, graphOpts...)
		if err != nil {
			return nil, err
		}
		r.numeric = g
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
	return r, nil
}

// buildNodes returns the nodes of one criterion with their report labels.
// Tonality is the only criterion expanding to several nodes.
func (s *Suite) buildNodes(c Criterion, options *BuildOptions) ([]api.Node, []string, error) {
	nodeOpts := s.nodeOptions(c)

	if c.Tonality != nil {
		nodes, err := llmjudge.Tonality(llmjudge.TonalityOptions{
			ProfessionalismWeight: c.Tonality.ProfessionalismWeight,
			KindnessWeight:        c.Tonality.KindnessWeight,
			ClarityWeight:         c.Tonality.ClarityWeight,
			HelpfulnessWeight:     c.Tonality.HelpfulnessWeight,
		}, nodeOpts...)
		if err != nil {
			return nil, nil, err
		}
		labels := make([]string, len(nodes))
		for i, n := range nodes {
			labels[i] = "tonality: " + strings.ToLower(strings.Fields(n.(*node.Weighted).Criterion())[0])
		}
		return nodes, labels, nil
	}

	n, err := s.buildNode(c, options, nodeOpts)
	if err != nil {
		return nil, nil, err
	}
	return []api.Node{n}, []string{c.label()}, nil
}

func (s *Suite) nodeOptions(c Criterion) []func(*node.Options) {
	var nodeOpts []func(*node.Options)
	if len(s.Options) > 0 {
		nodeOpts = append(nodeOpts, node.WithBackendOptions(s.Options))
	}
	if len(c.Options) > 0 {
		nodeOpts = append(nodeOpts, node.WithBackendOptions(c.Options))
	}
	if c.Weight != nil {
		nodeOpts = append(nodeOpts, node.WithWeight(*c.Weight))
	}
	return nodeOpts
}

func (s *Suite) buildNode(c Criterion, options *BuildOptions, nodeOpts []func(*node.Options)) (api.Node, error) {
	switch {
	case c.Moderation != nil:
		if options.moderation == nil {
			return nil, errors.New("moderation criterion needs a moderation provider")
		}
		return node.NewModeration(options.moderation, node.ModerationOptions{
			Threshold:  c.Moderation.Threshold,
			Categories: c.Moderation.Categories,
		})
	case c.Match != nil:
		return heuristic.NewExactMatch(c.Match.Expected, heuristic.ExactMatchOptions{
			CaseInsensitive: c.Match.CaseInsensitive,
			TrimWhitespace:  c.Match.TrimWhitespace,
		})
	case c.Factuality != nil:
		return llmjudge.Factuality(llmjudge.FactualityOptions{
			Input:    c.Factuality.Input,
			Expected: c.Factuality.Expected,
		}, nodeOpts...)
	case s.ResolvedKind() == api.KindBinary:
		return node.NewBinary(c.Criterion, nodeOpts...)
	case len(c.Tools) > 0:
		return node.NewToolDerived(c.Criterion, scoreTools(c.Tools), nodeOpts...)
	default:
		return node.NewWeighted(c.Criterion, c.Verdicts, nodeOpts...)
	}
}

func (c Criterion) label() string {
	switch {
	case c.Moderation != nil:
		return "moderation"
	case c.Match != nil:
		return "match: " + c.Match.Expected
	case c.Factuality != nil:
		return "factuality: " + c.Factuality.Expected
	}
	return c.Criterion
}

// scoreTools turns tool specs into tools whose handlers return the declared score
func scoreTools(specs []ToolSpec) []api.Tool {
	tools := make([]api.Tool, 0, len(specs))
	for _, spec := range specs {
		score := spec.Score
		tools = append(tools, api.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			Schema:      map[string]any{"type": "object", "properties": map[string]any{}},
			Handler: func(ctx context.Context, args map[string]any) (any, error) {
				return score, nil
			},
		})
	}
	return tools
}

// Run evaluates content and scores it with the suite's policy.
// It is safe to call concurrently.
func (r *Runner) Run(ctx context.Context, content string) (*Report, error) {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("suite", r.suite.Name))

	report := &Report{Suite: r.suite.Name, Kind: r.suite.ResolvedKind().String(), Model: r.model}

	var (
		results []api.Result
		err     error
	)
	if r.binary != nil {
		results, err = r.binary.Evaluate(ctx, content)
	} else {
		results, err = r.numeric.Evaluate(ctx, content)
	}
	if err != nil {
		return nil, err
	}

	report.Results = make([]NodeReport, len(results))
	for i, res := range results {
		nr := NodeReport{Criterion: r.criteria[i]}
		switch v := res.(type) {
		case api.BinaryResult:
			nr.Pass = &v.Pass
			nr.Reason = v.Reason
		case api.NumericResult:
			nr.Score = &v.Score
			nr.Reason = v.Reason
		}
		report.Results[i] = nr
	}

	// Score this call's results, not the graph cache shared with concurrent runs.
	if r.binary != nil {
		allPass, err := graph.AllPass(results)
		if err != nil {
			return nil, err
		}
		report.AllPass = &allPass
		if report.Score, err = graph.BinaryScore(results, r.suite.Normalize); err != nil {
			return nil, err
		}
		return report, nil
	}

	if report.Score, err = graph.NumericScore(results, r.suite.MaxScore); err != nil {
		return nil, err
	}
	return report, nil
}
