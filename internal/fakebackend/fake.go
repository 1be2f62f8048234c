// Package fakebackend provides a deterministic api.Backend for tests.
package fakebackend

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/datar-psa/stargraph/api"
)

// Call records a single backend invocation
type Call struct {
	Method   string
	Model    string
	Messages []api.Message
	Schema   map[string]any
	Tools    []string
	Options  api.Options
}

// Backend answers every call with the configured values.
type Backend struct {
	// Text is returned by Complete
	Text string
	// Structured is returned by StructuredComplete; nil means the output could not be parsed
	Structured map[string]any
	// ToolArgs are passed to every tool handler; the handler results are returned in tool order
	ToolArgs map[string]any
	// ToolResults, when non-nil, is returned by ToolComplete without calling handlers
	ToolResults []any
	// Err is returned by every call when set
	Err error
	// Respond, when set, overrides Structured and Err per call
	Respond func(messages []api.Message) (map[string]any, error)
	// Delay, when set, delays each call by the returned duration or until the context is done
	Delay func(messages []api.Message) time.Duration

	mu    sync.Mutex
	calls []Call
}

// Calls returns the recorded invocations
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

func (b *Backend) record(c Call) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
}

func (b *Backend) wait(ctx context.Context, messages []api.Message) error {
	if b.Delay == nil {
		return ctx.Err()
	}
	timer := time.NewTimer(b.Delay(messages))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Complete implements api.Backend
func (b *Backend) Complete(ctx context.Context, model string, messages []api.Message, opts api.Options) (string, error) {
	b.record(Call{Method: "Complete", Model: model, Messages: messages, Options: maps.Clone(opts)})
	if err := b.wait(ctx, messages); err != nil {
		return "", err
	}
	if b.Err != nil {
		return "", b.Err
	}
	return b.Text, nil
}

// StructuredComplete implements api.Backend
func (b *Backend) StructuredComplete(ctx context.Context, model string, messages []api.Message, schema map[string]any, opts api.Options) (map[string]any, error) {
	b.record(Call{Method: "StructuredComplete", Model: model, Messages: messages, Schema: schema, Options: maps.Clone(opts)})
	if err := b.wait(ctx, messages); err != nil {
		return nil, err
	}
	if b.Respond != nil {
		return b.Respond(messages)
	}
	if b.Err != nil {
		return nil, b.Err
	}
	return maps.Clone(b.Structured), nil
}

// ToolComplete implements api.Backend
func (b *Backend) ToolComplete(ctx context.Context, model string, messages []api.Message, tools []api.Tool, opts api.Options) ([]any, error) {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	b.record(Call{Method: "ToolComplete", Model: model, Messages: messages, Tools: names, Options: maps.Clone(opts)})
	if err := b.wait(ctx, messages); err != nil {
		return nil, err
	}
	if b.Err != nil {
		return nil, b.Err
	}
	if b.ToolResults != nil {
		return append([]any(nil), b.ToolResults...), nil
	}

	results := make([]any, 0, len(tools))
	for _, tool := range tools {
		out, err := tool.Handler(ctx, maps.Clone(b.ToolArgs))
		if err != nil {
			return nil, err
		}
		results = append(results, out)
	}
	return results, nil
}

var _ api.Backend = (*Backend)(nil)
