// Package llmopts decodes the free-form api.Options bag into the generation
// settings the provider adapters understand.
package llmopts

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/datar-psa/stargraph/api"
)

// Settings are the generation options honoured by every adapter.
// Unset values are nil so adapters can keep the provider default.
type Settings struct {
	Temperature *float64 `mapstructure:"temperature"`
	TopP        *float64 `mapstructure:"top_p"`
	MaxTokens   *int64   `mapstructure:"max_tokens"`
}

// Decode extracts Settings from opts. Unknown keys are ignored.
func Decode(opts api.Options) (Settings, error) {
	var s Settings
	if len(opts) == 0 {
		return s, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	if err := decoder.Decode(map[string]any(opts)); err != nil {
		return s, fmt.Errorf("invalid backend options: %w", err)
	}
	return s, nil
}

// Float32 narrows an optional float for SDKs using float32 fields
func Float32(v *float64) *float32 {
	if v == nil {
		return nil
	}
	f := float32(*v)
	return &f
}
