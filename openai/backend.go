// Package openai implements api.Backend with the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/internal/llmopts"
	"github.com/datar-psa/stargraph/internal/toolcall"
)

// DefaultModel is used when a call does not name a model
const DefaultModel = "gpt-4o-mini"

// schemaName is the name of the json_schema response format
const schemaName = "evaluation_result"

// Backend wraps an OpenAI client to implement api.Backend
type Backend struct {
	client    *sdk.Client
	modelName string
}

// NewBackend creates a new OpenAI backend.
// modelName is used when a call passes an empty model.
func NewBackend(client *sdk.Client, modelName string) *Backend {
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Backend{client: client, modelName: modelName}
}

// Complete implements api.Backend.Complete
func (b *Backend) Complete(ctx context.Context, model string, messages []api.Message, opts api.Options) (string, error) {
	resp, err := b.create(ctx, model, messages, opts, nil)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// StructuredComplete implements api.Backend.StructuredComplete using the json_schema response format.
// A refusal or unparseable content returns a nil map.
func (b *Backend) StructuredComplete(ctx context.Context, model string, messages []api.Message, schema map[string]any, opts api.Options) (map[string]any, error) {
	resp, err := b.create(ctx, model, messages, opts, func(params *sdk.ChatCompletionNewParams) {
		params.ResponseFormat = sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
				},
			},
		}
	})
	if err != nil {
		return nil, err
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		clog.FromContext(ctx).With("refusal", msg.Refusal).Warn("Model refused to answer")
		return nil, nil
	}
	return toolcall.ParseObject(ctx, msg.Content), nil
}

// ToolComplete implements api.Backend.ToolComplete.
// Tool choice is "required" so the model has to call at least one tool.
func (b *Backend) ToolComplete(ctx context.Context, model string, messages []api.Message, tools []api.Tool, opts api.Options) ([]any, error) {
	resp, err := b.create(ctx, model, messages, opts, func(params *sdk.ChatCompletionNewParams) {
		params.Tools = toolParams(tools)
		params.ToolChoice = sdk.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: sdk.String("required"),
		}
	})
	if err != nil {
		return nil, err
	}

	calls := resp.Choices[0].Message.ToolCalls
	results := make([]any, 0, len(calls))
	for _, call := range calls {
		out, ok, err := toolcall.InvokeJSON(ctx, tools, call.Function.Name, []byte(call.Function.Arguments))
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, out)
		}
	}
	return results, nil
}

func (b *Backend) create(ctx context.Context, model string, messages []api.Message, opts api.Options, configure func(*sdk.ChatCompletionNewParams)) (*sdk.ChatCompletion, error) {
	if b.client == nil {
		return nil, errors.New("openai client is required")
	}
	if model == "" {
		model = b.modelName
	}

	settings, err := llmopts.Decode(opts)
	if err != nil {
		return nil, err
	}

	params := sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: toMessages(messages),
	}
	if settings.Temperature != nil {
		params.Temperature = sdk.Float(*settings.Temperature)
	}
	if settings.TopP != nil {
		params.TopP = sdk.Float(*settings.TopP)
	}
	if settings.MaxTokens != nil {
		params.MaxCompletionTokens = sdk.Int(*settings.MaxTokens)
	}
	if configure != nil {
		configure(&params)
	}

	clog.FromContext(ctx).With("model", model).With("messages", len(messages)).Debug("Calling OpenAI")

	resp, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices returned")
	}
	return resp, nil
}

func toMessages(messages []api.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case api.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Content))
		case api.RoleDeveloper:
			out = append(out, sdk.DeveloperMessage(m.Content))
		case api.RoleAssistant:
			out = append(out, sdk.AssistantMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}

func toolParams(tools []api.Tool) []sdk.ChatCompletionToolParam {
	out := make([]sdk.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		fn := shared.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: shared.FunctionParameters(t.Schema),
		}
		if t.Description != "" {
			fn.Description = sdk.String(t.Description)
		}
		out = append(out, sdk.ChatCompletionToolParam{Function: fn})
	}
	return out
}

var _ api.Backend = (*Backend)(nil)
