// Package schema derives JSON schemas (as map[string]interface{}) from Go types.
// The maps are what api.Backend implementations receive for structured output and tool arguments.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator wraps jsonschema.Reflector with the defaults model providers accept:
// inlined definitions, required fields taken from jsonschema tags and no additional properties.
type Generator struct {
	reflector jsonschema.Reflector
}

// NewGenerator constructs a generator with project defaults.
func NewGenerator() *Generator {
	return &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			DoNotReference:             true,
		},
	}
}

// Map returns the JSON schema of v as a generic map.
func (g *Generator) Map(v any) (map[string]any, error) {
	s := g.reflector.Reflect(v)
	// Providers reject the draft identifier
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return out, nil
}

// For returns the JSON schema map of T using a default generator.
func For[T any]() (map[string]any, error) {
	var zero T
	return NewGenerator().Map(&zero)
}

// MustFor is like For but panics on error. Intended for package level schema variables.
func MustFor[T any]() map[string]any {
	m, err := For[T]()
	if err != nil {
		panic(err)
	}
	return m
}
