// Package claude implements api.Backend with the Anthropic Messages API.
//
// Claude has no JSON-schema response format, so StructuredComplete forces a
// call to a "submit_result" tool whose input schema is the requested schema
// and returns the tool input.
package claude

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/internal/llmopts"
	"github.com/datar-psa/stargraph/internal/toolcall"
)

const (
	// DefaultModel is used when a call does not name a model
	DefaultModel = "claude-sonnet-4-5"
	// DefaultMaxTokens is sent when the options do not set max_tokens; the API requires it
	DefaultMaxTokens = 4096

	submitToolName = "submit_result"
)

// Backend wraps an anthropic.Client to implement api.Backend
type Backend struct {
	client    *anthropic.Client
	modelName string
}

// NewBackend creates a new Claude backend.
// modelName is used when a call passes an empty model.
func NewBackend(client *anthropic.Client, modelName string) *Backend {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Backend{client: client, modelName: modelName}
}

// Complete implements api.Backend.Complete
func (b *Backend) Complete(ctx context.Context, model string, messages []api.Message, opts api.Options) (string, error) {
	msg, err := b.send(ctx, model, messages, opts, nil)
	if err != nil {
		return "", err
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

// StructuredComplete implements api.Backend.StructuredComplete
func (b *Backend) StructuredComplete(ctx context.Context, model string, messages []api.Message, schema map[string]any, opts api.Options) (map[string]any, error) {
	msg, err := b.send(ctx, model, messages, opts, func(params *anthropic.MessageNewParams) {
		submit := anthropic.ToolParam{
			Name:        submitToolName,
			Description: anthropic.String("Submit the evaluation result."),
			InputSchema: inputSchema(schema),
		}
		params.Tools = []anthropic.ToolUnionParam{{OfTool: &submit}}
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: submitToolName},
		}
	})
	if err != nil {
		return nil, err
	}

	for _, block := range msg.Content {
		if block.Type == "tool_use" && block.Name == submitToolName {
			return toolcall.ParseObject(ctx, string(block.Input)), nil
		}
	}
	clog.FromContext(ctx).With("stop_reason", msg.StopReason).Warn("Model did not submit a result")
	return nil, nil
}

// ToolComplete implements api.Backend.ToolComplete.
// Tool choice is "any" so the model has to call at least one tool.
func (b *Backend) ToolComplete(ctx context.Context, model string, messages []api.Message, tools []api.Tool, opts api.Options) ([]any, error) {
	msg, err := b.send(ctx, model, messages, opts, func(params *anthropic.MessageNewParams) {
		params.Tools = toolParams(tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	})
	if err != nil {
		return nil, err
	}

	results := make([]any, 0, len(msg.Content))
	for _, block := range msg.Content {
		if block.Type != "tool_use" {
			continue
		}
		out, ok, err := toolcall.InvokeJSON(ctx, tools, block.Name, block.Input)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, out)
		}
	}
	return results, nil
}

func (b *Backend) send(ctx context.Context, model string, messages []api.Message, opts api.Options, configure func(*anthropic.MessageNewParams)) (*anthropic.Message, error) {
	if b.client == nil {
		return nil, errors.New("anthropic client is required")
	}
	if model == "" {
		model = b.modelName
	}

	settings, err := llmopts.Decode(opts)
	if err != nil {
		return nil, err
	}

	system, conversation := toMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: DefaultMaxTokens,
		System:    system,
		Messages:  conversation,
	}
	if settings.MaxTokens != nil {
		params.MaxTokens = *settings.MaxTokens
	}
	if settings.Temperature != nil {
		params.Temperature = anthropic.Float(*settings.Temperature)
	}
	if settings.TopP != nil {
		params.TopP = anthropic.Float(*settings.TopP)
	}
	if configure != nil {
		configure(&params)
	}

	clog.FromContext(ctx).With("model", model).With("messages", len(messages)).Debug("Calling Claude")

	msg, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("message request failed: %w", err)
	}
	return msg, nil
}

// toMessages moves system and developer messages to the system prompt, in order.
func toMessages(messages []api.Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	conversation := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case api.RoleSystem, api.RoleDeveloper:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case api.RoleAssistant:
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return system, conversation
}

func toolParams(tools []api.Tool) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			InputSchema: inputSchema(t.Schema),
		}
		if t.Description != "" {
			tool.Description = anthropic.String(t.Description)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out
}

// inputSchema converts a JSON schema object into the tool input schema.
// Only properties and required are carried over.
func inputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	param := anthropic.ToolInputSchemaParam{
		Type:       "object",
		Properties: map[string]any{},
	}
	if props, ok := schema["properties"]; ok && props != nil {
		param.Properties = props
	}
	param.Required = stringList(schema["required"])
	return param
}

func stringList(v any) []string {
	switch l := v.(type) {
	case []string:
		return l
	case []any:
		out := make([]string, 0, len(l))
		for _, s := range l {
			if str, ok := s.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

var _ api.Backend = (*Backend)(nil)
