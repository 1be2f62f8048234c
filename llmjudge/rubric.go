// Package llmjudge provides ready-made model judged criteria built on the node package.
package llmjudge

import (
	"errors"
	"fmt"

	"github.com/datar-psa/stargraph/node"
)

// ErrTooFewLevels is returned when a rubric has fewer than two anchors
var ErrTooFewLevels = errors.New("rubric needs at least two levels")

// Rubric returns a weighted node grading content on anchored levels ordered from
// worst to best. The levels are spread evenly over [0,1], so the first level is
// worth 0 and the last one 1, before the node weight is applied.
func Rubric(criterion string, levels []string, opts ...func(*node.Options)) (*node.Weighted, error) {
	if len(levels) < 2 {
		return nil, ErrTooFewLevels
	}
	return node.NewWeighted(criterion, rubricVerdicts(levels), opts...)
}

func rubricVerdicts(levels []string) []string {
	verdicts := make([]string, len(levels))
	last := float64(len(levels) - 1)
	for i, level := range levels {
		verdicts[i] = fmt.Sprintf("%.2f if the response is: %s", float64(i)/last, level)
	}
	return verdicts
}
