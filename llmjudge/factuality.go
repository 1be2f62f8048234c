package llmjudge

import (
	"fmt"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/node"
)

// FactualityOptions configures the Factuality criterion
type FactualityOptions struct {
	// Input is the question the evaluated content answers, optional
	Input string
	// Expected is the reference answer
	Expected string
}

var factualityVerdicts = []string{
	"0 if the response is completely wrong or contradicts the expected answer",
	"0.5 if the response is partially correct or misses key facts",
	"1 if the response is fully correct and factually consistent with the expected answer",
}

// Factuality returns a weighted node judging whether content is factually
// consistent with a reference answer. Wording may differ as long as the same
// core facts are conveyed.
func Factuality(opts FactualityOptions, nodeOpts ...func(*node.Options)) (*node.Weighted, error) {
	if opts.Expected == "" {
		return nil, api.ErrNoExpectedValue
	}
	return node.NewWeighted(factualityCriterion(opts), factualityVerdicts, nodeOpts...)
}

func factualityCriterion(opts FactualityOptions) string {
	criterion := "The response is factually consistent with the expected answer. " +
		"Identify the key facts in the expected answer, check that they are present in the response " +
		"and that the response does not contradict them.\n"
	if opts.Input != "" {
		criterion += fmt.Sprintf("Question: %s\n", opts.Input)
	}
	return criterion + fmt.Sprintf("Expected answer: %s", opts.Expected)
}
