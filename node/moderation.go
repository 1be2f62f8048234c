package node

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/datar-psa/stargraph/api"
)

// ModerationOptions configures the Moderation node
type ModerationOptions struct {
	// Threshold is the confidence threshold for flagging content (0.0-1.0), defaults to 0.5
	Threshold float64
	// Categories to check for moderation (empty = all categories)
	Categories []string
}

// Moderation is a binary node that passes when a moderation provider flags no
// category above the threshold. It does not use the graph's model backend.
type Moderation struct {
	provider api.ModerationProvider
	opts     ModerationOptions
}

// NewModeration returns a binary node backed by a moderation provider
func NewModeration(provider api.ModerationProvider, opts ModerationOptions) (*Moderation, error) {
	if provider == nil {
		return nil, errors.New("moderation provider is required")
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.5
	}
	opts.Categories = slices.Clone(opts.Categories)
	return &Moderation{provider: provider, opts: opts}, nil
}

func (n *Moderation) Kind() api.Kind { return api.KindBinary }

// Evaluate implements api.Node
func (n *Moderation) Evaluate(ctx context.Context, content string, _ api.Backend, _ string) (api.Result, error) {
	moderationResp, err := n.provider.Moderate(ctx, content)
	if err != nil {
		return nil, backendError(fmt.Errorf("failed to moderate content: %w", err))
	}
	if moderationResp == nil {
		return api.BinaryResult{Pass: false, Reason: api.FallbackReason}, nil
	}

	var flagged []string
	for _, category := range moderationResp.Categories {
		if len(n.opts.Categories) > 0 && !slices.Contains(n.opts.Categories, category.Name) {
			continue
		}
		if category.Confidence > n.opts.Threshold {
			flagged = append(flagged, fmt.Sprintf("%s (%.2f)", category.Name, category.Confidence))
		}
	}

	if len(flagged) > 0 {
		sort.Strings(flagged)
		return api.BinaryResult{
			Pass:   false,
			Reason: fmt.Sprintf("Flagged categories above %.2f: %s", n.opts.Threshold, strings.Join(flagged, ", ")),
		}, nil
	}

	return api.BinaryResult{
		Pass:   true,
		Reason: fmt.Sprintf("No moderation category above %.2f", n.opts.Threshold),
	}, nil
}

var _ api.Node = (*Moderation)(nil)
