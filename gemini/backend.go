// Package gemini provides api.Backend and api.ModerationProvider implementations
// on top of Google Gemini (google.golang.org/genai) and Cloud Natural Language.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/internal/llmopts"
	"github.com/datar-psa/stargraph/internal/toolcall"
)

// DefaultModel is used when a call does not name a model
const DefaultModel = "gemini-2.5-flash"

// Backend wraps a genai.Client to implement api.Backend
type Backend struct {
	client    *genai.Client
	modelName string
}

// NewBackend creates a new Gemini backend
// client: genai.Client from google.golang.org/genai
// modelName: the model used when a call passes an empty model (e.g., "gemini-2.5-flash")
func NewBackend(client *genai.Client, modelName string) *Backend {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Backend{
		client:    client,
		modelName: modelName,
	}
}

// Complete implements api.Backend.Complete
func (b *Backend) Complete(ctx context.Context, model string, messages []api.Message, opts api.Options) (string, error) {
	resp, err := b.generate(ctx, model, messages, opts, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	return resp.Text(), nil
}

// StructuredComplete implements api.Backend.StructuredComplete.
// The schema is sent as the response JSON schema; unparseable output returns a nil map.
func (b *Backend) StructuredComplete(ctx context.Context, model string, messages []api.Message, schema map[string]any, opts api.Options) (map[string]any, error) {
	resp, err := b.generate(ctx, model, messages, opts, func(config *genai.GenerateContentConfig) {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = schema
	})
	if err != nil {
		return nil, err
	}
	return toolcall.ParseObject(ctx, resp.Text()), nil
}

// ToolComplete implements api.Backend.ToolComplete.
// The model is forced to call at least one of the tools; handler results are returned in call order.
func (b *Backend) ToolComplete(ctx context.Context, model string, messages []api.Message, tools []api.Tool, opts api.Options) ([]any, error) {
	resp, err := b.generate(ctx, model, messages, opts, func(config *genai.GenerateContentConfig) {
		config.Tools = []*genai.Tool{{FunctionDeclarations: functionDeclarations(tools)}}
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		}
	})
	if err != nil {
		return nil, err
	}

	calls := resp.FunctionCalls()
	results := make([]any, 0, len(calls))
	for _, call := range calls {
		out, ok, err := toolcall.Invoke(ctx, tools, call.Name, call.Args)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, out)
		}
	}
	return results, nil
}

func (b *Backend) generate(ctx context.Context, model string, messages []api.Message, opts api.Options, configure func(*genai.GenerateContentConfig)) (*genai.GenerateContentResponse, error) {
	if b.client == nil {
		return nil, errors.New("genai client is required")
	}
	if model == "" {
		model = b.modelName
	}

	settings, err := llmopts.Decode(opts)
	if err != nil {
		return nil, err
	}

	system, contents := toContents(messages)
	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       llmopts.Float32(settings.Temperature),
		TopP:              llmopts.Float32(settings.TopP),
	}
	if settings.MaxTokens != nil {
		config.MaxOutputTokens = int32(*settings.MaxTokens)
	}
	if configure != nil {
		configure(config)
	}

	clog.FromContext(ctx).With("model", model).With("messages", len(messages)).Debug("Calling Gemini")

	resp, err := b.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return resp, nil
}

// toContents splits messages into a system instruction and the conversation.
// Gemini has no developer role so developer messages join the system instruction in order.
func toContents(messages []api.Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case api.RoleSystem, api.RoleDeveloper:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})
		case api.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}
	return system, contents
}

func functionDeclarations(tools []api.Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		if t.Schema != nil {
			decl.ParametersJsonSchema = t.Schema
		}
		decls = append(decls, decl)
	}
	return decls
}

var _ api.Backend = (*Backend)(nil)
