// Package stargraph evaluates LLM output against natural-language criteria.
//
// Criteria are nodes (binary pass/fail, weighted numeric, tool-derived numeric)
// attached to a graph that evaluates them concurrently with one model backend
// and aggregates their results into a score.
package stargraph

import (
	language "cloud.google.com/go/language/apiv1"
	"github.com/anthropics/anthropic-sdk-go"
	sdkopenai "github.com/openai/openai-go"
	"google.golang.org/genai"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/claude"
	"github.com/datar-psa/stargraph/gemini"
	"github.com/datar-psa/stargraph/graph"
	"github.com/datar-psa/stargraph/heuristic"
	"github.com/datar-psa/stargraph/llmjudge"
	"github.com/datar-psa/stargraph/node"
	"github.com/datar-psa/stargraph/openai"
)

type NodeOption = func(*node.Options)
type GraphOption = func(*graph.Options)
type ModerationOptions = node.ModerationOptions
type BinaryGraph = graph.Binary
type NumericGraph = graph.Numeric

// WithWeight sets the multiplier applied to a numeric node score. Defaults to 1.
func WithWeight(weight float64) NodeOption { return node.WithWeight(weight) }

// WithBackendOptions merges provider specific options into every call of a node
func WithBackendOptions(opts api.Options) NodeOption { return node.WithBackendOptions(opts) }

// Binary returns a pass/fail node for criterion
func Binary(criterion string, opts ...NodeOption) (api.Node, error) {
	return node.NewBinary(criterion, opts...)
}

// Weighted returns a numeric node; verdicts describe the score of each outcome
func Weighted(criterion string, verdicts []string, opts ...NodeOption) (api.Node, error) {
	return node.NewWeighted(criterion, verdicts, opts...)
}

// ToolDerived returns a numeric node scored by the first tool the model calls
func ToolDerived(criterion string, tools []api.Tool, opts ...NodeOption) (api.Node, error) {
	return node.NewToolDerived(criterion, tools, opts...)
}

type FactualityOptions = llmjudge.FactualityOptions

// Factuality returns a numeric node judging consistency with a reference answer
func Factuality(opts FactualityOptions, nodeOpts ...NodeOption) (api.Node, error) {
	return llmjudge.Factuality(opts, nodeOpts...)
}

type TonalityOptions = llmjudge.TonalityOptions

// Tonality returns one numeric node per tone dimension, with weights summing to 1
func Tonality(opts TonalityOptions, nodeOpts ...NodeOption) ([]api.Node, error) {
	return llmjudge.Tonality(opts, nodeOpts...)
}

// Rubric returns a numeric node grading content on levels ordered from worst to best
func Rubric(criterion string, levels []string, opts ...NodeOption) (api.Node, error) {
	return llmjudge.Rubric(criterion, levels, opts...)
}

type ExactMatchOptions = heuristic.ExactMatchOptions

// ExactMatch returns a binary node comparing content with expected, without a model call
func ExactMatch(expected string, opts ExactMatchOptions) (api.Node, error) {
	return heuristic.NewExactMatch(expected, opts)
}

// Evaluator binds a backend and model so graphs can be built without passing them each time.
type Evaluator struct {
	backend     api.Backend
	model       string
	moderation  api.ModerationProvider
	concurrency int
}

// EvaluatorOptions configures Evaluator creation
type EvaluatorOptions struct {
	backend     api.Backend
	model       string
	moderation  api.ModerationProvider
	concurrency int
}

// WithBackend sets the model backend used by every node
func WithBackend(backend api.Backend) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.backend = backend
	}
}

// WithModel sets the model passed on every backend call; empty selects the backend default
func WithModel(model string) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.model = model
	}
}

// WithModerationProvider sets the provider used by Moderation nodes
func WithModerationProvider(provider api.ModerationProvider) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.moderation = provider
	}
}

// WithConcurrency bounds the number of nodes evaluated at the same time
func WithConcurrency(n int) func(*EvaluatorOptions) {
	return func(opts *EvaluatorOptions) {
		opts.concurrency = n
	}
}

// NewEvaluator creates a new Evaluator using functional options.
func NewEvaluator(opts ...func(*EvaluatorOptions)) *Evaluator {
	options := &EvaluatorOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return &Evaluator{
		backend:     options.backend,
		model:       options.model,
		moderation:  options.moderation,
		concurrency: options.concurrency,
	}
}

// Backend returns the configured backend
func (e *Evaluator) Backend() api.Backend { return e.backend }

// Model returns the configured model
func (e *Evaluator) Model() string { return e.model }

// BinaryGraph builds a graph of binary nodes
func (e *Evaluator) BinaryGraph(nodes ...api.Node) (*graph.Binary, error) {
	return graph.NewBinary(e.backend, e.model, nodes, e.graphOptions()...)
}

// NumericGraph builds a graph of weighted and tool-derived nodes
func (e *Evaluator) NumericGraph(nodes ...api.Node) (*graph.Numeric, error) {
	return graph.NewNumeric(e.backend, e.model, nodes, e.graphOptions()...)
}

// Moderation returns a binary node that fails when the moderation provider flags the content
func (e *Evaluator) Moderation(opts ModerationOptions) (api.Node, error) {
	return node.NewModeration(e.moderation, opts)
}

func (e *Evaluator) graphOptions() []GraphOption {
	if e.concurrency <= 0 {
		return nil
	}
	return []GraphOption{graph.WithConcurrency(e.concurrency)}
}

// ProviderOptions configures provider-backed Evaluator creation
type ProviderOptions struct {
	genaiClient     *genai.Client
	langClient      *language.Client
	openaiClient    *sdkopenai.Client
	anthropicClient *anthropic.Client
	modelName       string
	concurrency     int
}

// WithGenaiClient sets the Gemini client
func WithGenaiClient(client *genai.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.genaiClient = client
	}
}

// WithLanguageClient sets the Google Cloud Language client for moderation
func WithLanguageClient(client *language.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.langClient = client
	}
}

// WithOpenAIClient sets the OpenAI client
func WithOpenAIClient(client *sdkopenai.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.openaiClient = client
	}
}

// WithAnthropicClient sets the Anthropic client
func WithAnthropicClient(client *anthropic.Client) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.anthropicClient = client
	}
}

// WithModelName sets the default model of the backend
func WithModelName(modelName string) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.modelName = modelName
	}
}

// WithProviderConcurrency bounds the number of nodes evaluated at the same time
func WithProviderConcurrency(n int) func(*ProviderOptions) {
	return func(opts *ProviderOptions) {
		opts.concurrency = n
	}
}

func providerOptions(opts []func(*ProviderOptions)) *ProviderOptions {
	options := &ProviderOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// NewGeminiEvaluator creates an Evaluator using a Gemini client and model name.
// Example model: "publishers/google/models/gemini-2.5-flash".
// A language client, when set, enables Moderation nodes.
func NewGeminiEvaluator(opts ...func(*ProviderOptions)) *Evaluator {
	options := providerOptions(opts)

	evalOptions := []func(*EvaluatorOptions){WithConcurrency(options.concurrency)}

	// Only add a backend if genaiClient is provided
	if options.genaiClient != nil {
		evalOptions = append(evalOptions, WithBackend(gemini.NewBackend(options.genaiClient, options.modelName)))
	}

	// Only add moderation provider if langClient is provided
	if options.langClient != nil {
		evalOptions = append(evalOptions, WithModerationProvider(gemini.NewLanguageModerator(options.langClient)))
	}

	return NewEvaluator(evalOptions...)
}

// NewOpenAIEvaluator creates an Evaluator using an OpenAI client and model name.
func NewOpenAIEvaluator(opts ...func(*ProviderOptions)) *Evaluator {
	options := providerOptions(opts)

	evalOptions := []func(*EvaluatorOptions){WithConcurrency(options.concurrency)}
	if options.openaiClient != nil {
		evalOptions = append(evalOptions, WithBackend(openai.NewBackend(options.openaiClient, options.modelName)))
	}
	return NewEvaluator(evalOptions...)
}

// NewClaudeEvaluator creates an Evaluator using an Anthropic client and model name.
func NewClaudeEvaluator(opts ...func(*ProviderOptions)) *Evaluator {
	options := providerOptions(opts)

	evalOptions := []func(*EvaluatorOptions){WithConcurrency(options.concurrency)}
	if options.anthropicClient != nil {
		evalOptions = append(evalOptions, WithBackend(claude.NewBackend(options.anthropicClient, options.modelName)))
	}
	return NewEvaluator(evalOptions...)
}
