// Package suite loads criteria suites from YAML and runs them as evaluation graphs.
//
// A suite lists criteria of one kind:
//
//	name: support-answers
//	kind: numeric
//	max_score: 5
//	criteria:
//	  - criterion: The answer is factually correct
//	    verdicts: ["2 if fully correct", "1 if partially correct", "0 otherwise"]
//	    weight: 2
//	  - criterion: Call the function matching the tone of the answer
//	    tools:
//	      - {name: formal, description: The answer is formal, score: 1}
//	      - {name: casual, description: The answer is casual, score: 0}
//
// Binary suites may add a moderation criterion, which needs a moderation provider,
// or an exact match criterion. Numeric suites may use the factuality and tonality
// criteria, where tonality expands to one node per dimension:
//
//	criteria:
//	  - factuality: {input: "What is the capital of France?", expected: Paris}
//	    weight: 2
//	  - tonality: {clarity_weight: 1, helpfulness_weight: 1}
package suite

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/datar-psa/stargraph/api"
)

// Suite is a named set of criteria evaluated together
type Suite struct {
	Name string `yaml:"name" json:"name"`
	// Kind is "binary" or "numeric". Inferred from the criteria when empty.
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`
	// Model overrides the backend default model
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
	// Concurrency bounds parallel node evaluations; 0 means unbounded
	Concurrency int `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	// Normalize divides a binary score by the number of criteria
	Normalize bool `yaml:"normalize,omitempty" json:"normalize,omitempty"`
	// MaxScore divides a numeric score when not 0
	MaxScore float64 `yaml:"max_score,omitempty" json:"max_score,omitempty"`
	// Options are passed to the backend on every call
	Options  map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
	Criteria []Criterion    `yaml:"criteria" json:"criteria"`
}

// Criterion describes one node
type Criterion struct {
	Criterion string         `yaml:"criterion,omitempty" json:"criterion,omitempty"`
	Verdicts  []string       `yaml:"verdicts,omitempty" json:"verdicts,omitempty"`
	Tools     []ToolSpec     `yaml:"tools,omitempty" json:"tools,omitempty"`
	Weight    *float64       `yaml:"weight,omitempty" json:"weight,omitempty"`
	Options   map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
	// Moderation makes this a moderation node instead of a model-judged one
	Moderation *ModerationSpec `yaml:"moderation,omitempty" json:"moderation,omitempty"`
	// Match makes this an exact match node
	Match *MatchSpec `yaml:"match,omitempty" json:"match,omitempty"`
	// Factuality judges consistency with a reference answer
	Factuality *FactualitySpec `yaml:"factuality,omitempty" json:"factuality,omitempty"`
	// Tonality judges professionalism, kindness, clarity and helpfulness
	Tonality *TonalitySpec `yaml:"tonality,omitempty" json:"tonality,omitempty"`
}

// ToolSpec is a tool whose handler returns a fixed score
type ToolSpec struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Score       float64 `yaml:"score" json:"score"`
}

// ModerationSpec configures a moderation node
type ModerationSpec struct {
	Threshold  float64  `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// MatchSpec configures an exact match node
type MatchSpec struct {
	Expected        string `yaml:"expected" json:"expected"`
	CaseInsensitive bool   `yaml:"case_insensitive,omitempty" json:"case_insensitive,omitempty"`
	TrimWhitespace  bool   `yaml:"trim_whitespace,omitempty" json:"trim_whitespace,omitempty"`
}

// FactualitySpec configures a factuality node
type FactualitySpec struct {
	Input    string `yaml:"input,omitempty" json:"input,omitempty"`
	Expected string `yaml:"expected" json:"expected"`
}

// TonalitySpec weights the tonality dimensions; all zero means equal weights
type TonalitySpec struct {
	ProfessionalismWeight float64 `yaml:"professionalism_weight,omitempty" json:"professionalism_weight,omitempty"`
	KindnessWeight        float64 `yaml:"kindness_weight,omitempty" json:"kindness_weight,omitempty"`
	ClarityWeight         float64 `yaml:"clarity_weight,omitempty" json:"clarity_weight,omitempty"`
	HelpfulnessWeight     float64 `yaml:"helpfulness_weight,omitempty" json:"helpfulness_weight,omitempty"`
}

// LoadFile reads and validates a suite file
func LoadFile(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	return Load(data)
}

// Load parses and validates a suite. JSON documents are accepted as YAML.
func Load(data []byte) (*Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ResolvedKind returns the declared kind, or the kind implied by the criteria.
func (s *Suite) ResolvedKind() api.Kind {
	switch s.Kind {
	case "binary":
		return api.KindBinary
	case "numeric":
		return api.KindNumeric
	case "":
	default:
		return 0
	}
	for _, c := range s.Criteria {
		if c.kind() == api.KindNumeric {
			return api.KindNumeric
		}
	}
	return api.KindBinary
}

func (c Criterion) kind() api.Kind {
	if len(c.Verdicts) > 0 || len(c.Tools) > 0 || c.Weight != nil || c.Factuality != nil || c.Tonality != nil {
		return api.KindNumeric
	}
	return api.KindBinary
}

// preset returns the name of the built-in criterion used, if any
func (c Criterion) preset() string {
	var names []string
	if c.Moderation != nil {
		names = append(names, "moderation")
	}
	if c.Match != nil {
		names = append(names, "match")
	}
	if c.Factuality != nil {
		names = append(names, "factuality")
	}
	if c.Tonality != nil {
		names = append(names, "tonality")
	}
	return strings.Join(names, ", ")
}

// Validate reports every problem of the suite at once
func (s *Suite) Validate() error {
	var result *multierror.Error

	kind := s.ResolvedKind()
	if kind == 0 {
		result = multierror.Append(result, fmt.Errorf("unknown kind %q, want binary or numeric", s.Kind))
	}
	if len(s.Criteria) == 0 {
		result = multierror.Append(result, fmt.Errorf("suite %q has no criteria", s.Name))
	}
	if s.Normalize && kind == api.KindNumeric {
		result = multierror.Append(result, fmt.Errorf("normalize only applies to binary suites, use max_score"))
	}
	if s.MaxScore != 0 && kind == api.KindBinary {
		result = multierror.Append(result, fmt.Errorf("max_score only applies to numeric suites, use normalize"))
	}

	for i, c := range s.Criteria {
		if preset := c.preset(); preset != "" {
			result = multierror.Append(result, c.validatePreset(i, preset, kind))
			continue
		}
		if c.Criterion == "" {
			result = multierror.Append(result, fmt.Errorf("criteria[%d]: %w", i, api.ErrNoCriterion))
		}
		if kind == api.KindBinary && c.kind() == api.KindNumeric {
			result = multierror.Append(result, fmt.Errorf("criteria[%d]: %w: verdicts, tools and weight need a numeric suite", i, api.ErrMixedKinds))
		}
		if kind == api.KindNumeric && len(c.Verdicts) > 0 && len(c.Tools) > 0 {
			result = multierror.Append(result, fmt.Errorf("criteria[%d]: verdicts and tools are mutually exclusive", i))
		}
		if kind == api.KindNumeric && len(c.Verdicts) == 0 && len(c.Tools) == 0 {
			result = multierror.Append(result, fmt.Errorf("criteria[%d]: numeric criteria need verdicts or tools", i))
		}
		seen := map[string]bool{}
		for j, t := range c.Tools {
			if t.Name == "" {
				result = multierror.Append(result, fmt.Errorf("criteria[%d].tools[%d]: name is required", i, j))
			}
			if seen[t.Name] {
				result = multierror.Append(result, fmt.Errorf("criteria[%d].tools[%d]: duplicate tool %q", i, j, t.Name))
			}
			seen[t.Name] = true
		}
	}

	return result.ErrorOrNil()
}

func (c Criterion) validatePreset(i int, preset string, kind api.Kind) error {
	var result *multierror.Error
	if strings.Contains(preset, ",") {
		return fmt.Errorf("criteria[%d]: only one of %s is allowed", i, preset)
	}
	if c.Criterion != "" || len(c.Verdicts) > 0 || len(c.Tools) > 0 {
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: %s cannot be combined with criterion, verdicts or tools", i, preset))
	}

	want := api.KindBinary
	if c.Factuality != nil || c.Tonality != nil {
		want = api.KindNumeric
	}
	if kind != 0 && kind != want {
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: %w: %s is only allowed in %s suites", i, api.ErrMixedKinds, preset, want))
	}

	switch {
	case c.Moderation != nil && c.Weight != nil, c.Match != nil && c.Weight != nil:
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: %s cannot have a weight", i, preset))
	case c.Tonality != nil && c.Weight != nil:
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: tonality uses per-dimension weights", i))
	}
	if c.Match != nil && c.Match.Expected == "" {
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: match: %w", i, api.ErrNoExpectedValue))
	}
	if c.Factuality != nil && c.Factuality.Expected == "" {
		result = multierror.Append(result, fmt.Errorf("criteria[%d]: factuality: %w", i, api.ErrNoExpectedValue))
	}
	return result.ErrorOrNil()
}

// HasModeration reports whether any criterion needs a moderation provider
func (s *Suite) HasModeration() bool {
	for _, c := range s.Criteria {
		if c.Moderation != nil {
			return true
		}
	}
	return false
}
