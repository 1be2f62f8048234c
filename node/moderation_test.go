package node

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/datar-psa/stargraph/api"
)

// mockModerationProvider is a simple mock for unit tests
type mockModerationProvider struct {
	result *api.ModerationResult
	err    error
}

func (m *mockModerationProvider) Moderate(ctx context.Context, content string) (*api.ModerationResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestModeration_Evaluate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		mockResult *api.ModerationResult
		mockErr    error
		threshold  float64
		categories []string
		wantErr    bool
		wantPass   bool
		wantReason string
	}{
		{
			name: "safe content",
			mockResult: &api.ModerationResult{
				Categories: []api.ModerationCategory{
					{Name: "Toxic", Confidence: 0.1},
					{Name: "Violent", Confidence: 0.05},
				},
			},
			threshold:  0.5,
			wantPass:   true,
			wantReason: "No moderation category above 0.50",
		},
		{
			name: "unsafe content",
			mockResult: &api.ModerationResult{
				Categories: []api.ModerationCategory{
					{Name: "Toxic", Confidence: 0.8},
					{Name: "Violent", Confidence: 0.3},
				},
			},
			threshold:  0.5,
			wantPass:   false,
			wantReason: "Flagged categories above 0.50: Toxic (0.80)",
		},
		{
			name: "multiple flagged categories",
			mockResult: &api.ModerationResult{
				Categories: []api.ModerationCategory{
					{Name: "Violent", Confidence: 0.6},
					{Name: "Toxic", Confidence: 0.7},
				},
			},
			threshold:  0.5,
			wantPass:   false,
			wantReason: "Flagged categories above 0.50: Toxic (0.70), Violent (0.60)",
		},
		{
			name: "default threshold",
			mockResult: &api.ModerationResult{
				Categories: []api.ModerationCategory{{Name: "Insult", Confidence: 0.4}},
			},
			wantPass:   true,
			wantReason: "No moderation category above 0.50",
		},
		{
			name: "specific categories only",
			mockResult: &api.ModerationResult{
				Categories: []api.ModerationCategory{
					{Name: "Toxic", Confidence: 0.2},
					{Name: "Finance", Confidence: 0.9},
				},
			},
			threshold:  0.5,
			categories: []string{"Toxic"},
			wantPass:   true,
			wantReason: "No moderation category above 0.50",
		},
		{
			name:       "empty provider response",
			mockResult: nil,
			wantPass:   false,
			wantReason: api.FallbackReason,
		},
		{
			name:    "provider error",
			mockErr: fmt.Errorf("API error"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewModeration(&mockModerationProvider{result: tt.mockResult, err: tt.mockErr}, ModerationOptions{
				Threshold:  tt.threshold,
				Categories: tt.categories,
			})
			if err != nil {
				t.Fatalf("NewModeration() unexpected error = %v", err)
			}

			got, err := n.Evaluate(ctx, "content", nil, "")
			if tt.wantErr {
				if !errors.Is(err, api.ErrBackendFailed) {
					t.Errorf("Moderation.Evaluate() error = %v, want %v", err, api.ErrBackendFailed)
				}
				return
			}
			if err != nil {
				t.Fatalf("Moderation.Evaluate() unexpected error = %v", err)
			}

			result, ok := got.(api.BinaryResult)
			if !ok {
				t.Fatalf("Moderation.Evaluate() result = %T, want api.BinaryResult", got)
			}
			if result.Pass != tt.wantPass {
				t.Errorf("Moderation.Evaluate() pass = %v, want %v", result.Pass, tt.wantPass)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("Moderation.Evaluate() reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestModeration_NoProvider(t *testing.T) {
	if _, err := NewModeration(nil, ModerationOptions{}); err == nil {
		t.Error("NewModeration() expected error when provider is nil")
	}
}
