package gemini

import (
	"context"
	"errors"
	"fmt"

	language "cloud.google.com/go/language/apiv1"
	languagepb "cloud.google.com/go/language/apiv1/languagepb"
	"github.com/chainguard-dev/clog"

	"github.com/datar-psa/stargraph/api"
)

// categoryNames maps Cloud Natural Language category names to api.ModerationCategories
var categoryNames = map[string]string{
	"Death, Harm & Tragedy": "DeathHarmTragedy",
	"Firearms & Weapons":    "FirearmsWeapons",
	"Public Safety":         "PublicSafety",
	"Religion & Belief":     "ReligionBelief",
	"Illicit Drugs":         "IllicitDrugs",
	"War & Conflict":        "WarConflict",
}

// LanguageModerator implements api.ModerationProvider with the Cloud Natural Language moderateText method
type LanguageModerator struct {
	client *language.Client
}

// NewLanguageModerator creates a moderator from a preconfigured *language.Client (auth handled by caller)
func NewLanguageModerator(client *language.Client) *LanguageModerator {
	return &LanguageModerator{client: client}
}

// Moderate implements api.ModerationProvider
func (m *LanguageModerator) Moderate(ctx context.Context, content string) (*api.ModerationResult, error) {
	if m.client == nil {
		return nil, errors.New("language client is required")
	}

	resp, err := m.client.ModerateText(ctx, &languagepb.ModerateTextRequest{
		Document: &languagepb.Document{
			Type:   languagepb.Document_PLAIN_TEXT,
			Source: &languagepb.Document_Content{Content: content},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("moderate text failed: %w", err)
	}

	result := toModerationResult(resp)
	clog.FromContext(ctx).With("categories", len(result.Categories)).Debug("Moderation completed")
	return result, nil
}

func toModerationResult(resp *languagepb.ModerateTextResponse) *api.ModerationResult {
	categories := make([]api.ModerationCategory, 0, len(resp.GetModerationCategories()))
	for _, c := range resp.GetModerationCategories() {
		categories = append(categories, api.ModerationCategory{
			Name:       categoryName(c.GetName()),
			Confidence: float64(c.GetConfidence()),
		})
	}
	return &api.ModerationResult{Categories: categories}
}

// categoryName returns the api name of a provider category. Single-word names are identical;
// unknown names are passed through.
func categoryName(name string) string {
	if mapped, ok := categoryNames[name]; ok {
		return mapped
	}
	return name
}

var _ api.ModerationProvider = (*LanguageModerator)(nil)
