package llmjudge

import (
	"fmt"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/node"
)

// TonalityOptions configures the Tonality criteria
type TonalityOptions struct {
	// Individual weights; if all are 0, defaults to equal weights.
	// A dimension with a zero weight is left out.
	ProfessionalismWeight float64
	KindnessWeight        float64
	ClarityWeight         float64
	HelpfulnessWeight     float64
}

type dimension struct {
	name    string
	anchors []string
}

var dimensions = [4]dimension{
	{
		name: "Professionalism",
		anchors: []string{
			"casual/slang, confrontational, imprecise; chaotic formatting",
			"frequent informality; repeated imprecision",
			"generally professional; minor informality/sloppiness",
			"consistently professional; precise and neutral",
			"highly professional; precise, neutral, impeccably formatted",
		},
	},
	{
		name: "Kindness",
		anchors: []string{
			"hostile, shaming, dismissive",
			"occasionally harsh/blaming",
			"neutral/polite",
			"empathetic, supportive",
			"exemplary empathy and care",
		},
	},
	{
		name: "Clarity",
		anchors: []string{
			"hard to understand; disorganized",
			"somewhat unclear; weak structure",
			"understandable; some redundancy",
			"clear, well-structured",
			"exceptionally clear; concise and well structured",
		},
	},
	{
		name: "Helpfulness",
		anchors: []string{
			"off-topic; no actionable guidance",
			"partially relevant; little actionability",
			"addresses request; limited actionability",
			"directly addresses request; actionable steps",
			"fully addresses request; step-by-step; anticipates edge cases",
		},
	},
}

// Tonality returns one anchored rubric node per dimension: professionalism,
// kindness, clarity and helpfulness. Node weights are normalized to sum to 1,
// so the unnormalized score of a numeric graph over these nodes stays in [0,1].
// Additional opts are applied to every node after the weight.
func Tonality(opts TonalityOptions, nodeOpts ...func(*node.Options)) ([]api.Node, error) {
	weights := normalizeWeights([4]float64{
		opts.ProfessionalismWeight,
		opts.KindnessWeight,
		opts.ClarityWeight,
		opts.HelpfulnessWeight,
	})

	var nodes []api.Node
	for i, dim := range dimensions {
		if weights[i] == 0 {
			continue
		}
		n, err := Rubric(
			fmt.Sprintf("%s of the response. Rate it independently of any other quality.", dim.name),
			dim.anchors,
			append([]func(*node.Options){node.WithWeight(weights[i])}, nodeOpts...)...,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s rubric: %w", dim.name, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func normalizeWeights(weights [4]float64) [4]float64 {
	sum := 0.0
	for i, w := range weights {
		if w < 0 {
			weights[i] = 0
			continue
		}
		sum += w
	}

	// If all weights are 0 or negative, default to equal weights
	if sum == 0 {
		return [4]float64{0.25, 0.25, 0.25, 0.25}
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}
