package claude

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/go-cmp/cmp"

	"github.com/datar-psa/stargraph/api"
)

type fakeServer struct {
	content []any
	status  int

	mu       sync.Mutex
	requests []map[string]any
}

func (f *fakeServer) request(i int) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[i]
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":            "msg_1",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultModel,
		"content":       f.content,
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
}

func newTestBackend(t *testing.T, f *fakeServer) *Backend {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	client := anthropic.NewClient(
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("test"),
		option.WithMaxRetries(0),
	)
	return NewBackend(&client, "")
}

var judgeMessages = []api.Message{
	{Role: api.RoleSystem, Content: "judge"},
	{Role: api.RoleDeveloper, Content: "Evaluation criteria: polite"},
	{Role: api.RoleUser, Content: "hello"},
}

func text(s string) map[string]any {
	return map[string]any{"type": "text", "text": s}
}

func toolUse(id, name string, input any) map[string]any {
	return map[string]any{"type": "tool_use", "id": id, "name": name, "input": input}
}

func TestComplete(t *testing.T) {
	f := &fakeServer{content: []any{text("hi "), text("there")}}
	b := newTestBackend(t, f)

	got, err := b.Complete(context.Background(), "", judgeMessages, api.Options{"temperature": 0.0})
	if err != nil {
		t.Fatalf("Complete() unexpected error = %v", err)
	}
	if got != "hi there" {
		t.Errorf("Complete() = %q, want %q", got, "hi there")
	}

	req := f.request(0)
	if req["model"] != DefaultModel {
		t.Errorf("model = %v, want %v", req["model"], DefaultModel)
	}
	if req["max_tokens"] != float64(DefaultMaxTokens) {
		t.Errorf("max_tokens = %v, want %v", req["max_tokens"], DefaultMaxTokens)
	}
	if req["temperature"] != 0.0 {
		t.Errorf("temperature = %v, want 0", req["temperature"])
	}

	system := req["system"].([]any)
	if len(system) != 2 {
		t.Fatalf("len(system) = %d, want 2", len(system))
	}
	if got := system[1].(map[string]any)["text"]; got != "Evaluation criteria: polite" {
		t.Errorf("system[1] = %v", got)
	}
	messages := req["messages"].([]any)
	if len(messages) != 1 || messages[0].(map[string]any)["role"] != "user" {
		t.Errorf("messages = %v, want one user message", messages)
	}
}

func TestStructuredComplete(t *testing.T) {
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"pass": map[string]any{"type": "boolean"}},
		"required":   []any{"pass"},
	}

	tests := []struct {
		name    string
		content []any
		want    map[string]any
	}{
		{
			name:    "submitted",
			content: []any{text("Let me judge."), toolUse("toolu_1", submitToolName, map[string]any{"pass": true, "reason": "ok"})},
			want:    map[string]any{"pass": true, "reason": "ok"},
		},
		{
			name:    "no submission",
			content: []any{text("I refuse.")},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeServer{content: tt.content}
			b := newTestBackend(t, f)

			got, err := b.StructuredComplete(context.Background(), "claude-haiku-4-5", judgeMessages, schema, api.Options{"max_tokens": 256})
			if err != nil {
				t.Fatalf("StructuredComplete() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("StructuredComplete() mismatch (-want +got):\n%s", diff)
			}

			req := f.request(0)
			if req["model"] != "claude-haiku-4-5" {
				t.Errorf("model = %v, want claude-haiku-4-5", req["model"])
			}
			if req["max_tokens"] != 256.0 {
				t.Errorf("max_tokens = %v, want 256", req["max_tokens"])
			}
			choice := req["tool_choice"].(map[string]any)
			if choice["type"] != "tool" || choice["name"] != submitToolName {
				t.Errorf("tool_choice = %v, want forced %s", choice, submitToolName)
			}
			tool := req["tools"].([]any)[0].(map[string]any)
			want := map[string]any{
				"type":       "object",
				"properties": map[string]any{"pass": map[string]any{"type": "boolean"}},
				"required":   []any{"pass"},
			}
			if diff := cmp.Diff(want, tool["input_schema"]); diff != "" {
				t.Errorf("input_schema mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToolComplete(t *testing.T) {
	f := &fakeServer{content: []any{
		text("Calling tools"),
		toolUse("toolu_1", "score", map[string]any{"value": 2}),
		toolUse("toolu_2", "other", map[string]any{}),
		toolUse("toolu_3", "score", map[string]any{"value": 7}),
	}}
	b := newTestBackend(t, f)

	tools := []api.Tool{{
		Name:    "score",
		Handler: func(ctx context.Context, args map[string]any) (any, error) { return args["value"], nil },
	}}

	got, err := b.ToolComplete(context.Background(), "", judgeMessages, tools, nil)
	if err != nil {
		t.Fatalf("ToolComplete() unexpected error = %v", err)
	}
	if diff := cmp.Diff([]any{2.0, 7.0}, got); diff != "" {
		t.Errorf("ToolComplete() mismatch (-want +got):\n%s", diff)
	}

	choice := f.request(0)["tool_choice"].(map[string]any)
	if choice["type"] != "any" {
		t.Errorf("tool_choice = %v, want any", choice)
	}
}

func TestBackendErrors(t *testing.T) {
	b := newTestBackend(t, &fakeServer{status: http.StatusServiceUnavailable})
	if _, err := b.Complete(context.Background(), "", judgeMessages, nil); err == nil {
		t.Error("Complete() should fail on a server error")
	}

	if _, err := NewBackend(nil, "").Complete(context.Background(), "", judgeMessages, nil); err == nil {
		t.Error("Complete() without client should fail")
	}
}

func TestInputSchema(t *testing.T) {
	tests := []struct {
		name         string
		schema       map[string]any
		wantRequired []string
	}{
		{name: "nil schema", schema: nil, wantRequired: nil},
		{name: "string required", schema: map[string]any{"required": []string{"a"}}, wantRequired: []string{"a"}},
		{name: "any required", schema: map[string]any{"required": []any{"a", 1, "b"}}, wantRequired: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inputSchema(tt.schema)
			if diff := cmp.Diff(tt.wantRequired, got.Required); diff != "" {
				t.Errorf("Required mismatch (-want +got):\n%s", diff)
			}
			if got.Properties == nil {
				t.Error("Properties = nil, want an object")
			}
		})
	}
}
