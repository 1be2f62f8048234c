// Package toolcall holds the helpers provider adapters share to run tool
// handlers and to read JSON object answers.
package toolcall

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
)

// Invoke runs the handler of the named tool with args.
// ok is false when the model asked for a tool that was not offered.
func Invoke(ctx context.Context, tools []api.Tool, name string, args map[string]any) (out any, ok bool, err error) {
	for _, t := range tools {
		if t.Name != name {
			continue
		}
		if t.Handler == nil {
			return nil, false, fmt.Errorf("tool %q has no handler", name)
		}
		if args == nil {
			args = map[string]any{}
		}
		out, err := t.Handler(ctx, args)
		if err != nil {
			return nil, false, fmt.Errorf("tool %q failed: %w", name, err)
		}
		return out, true, nil
	}
	clog.FromContext(ctx).With("tool", name).Warn("Model called an unknown tool, ignoring")
	return nil, false, nil
}

// InvokeJSON is Invoke for providers that send arguments as a JSON document.
// Arguments that are not a JSON object are passed as an empty map.
func InvokeJSON(ctx context.Context, tools []api.Tool, name string, rawArgs []byte) (any, bool, error) {
	return Invoke(ctx, tools, name, ParseObject(ctx, string(rawArgs)))
}

// ParseObject decodes a JSON object. Anything else yields nil.
func ParseObject(ctx context.Context, text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Model output is not a JSON object")
		return nil
	}
	return out
}

// Names returns the tool names in order
func Names(tools []api.Tool) []string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	return names
}
