// Package node provides the criterion nodes evaluated by a graph.
//
// Every node performs exactly one backend call per evaluation. Backend errors are
// returned wrapped in api.ErrBackendFailed; model output that cannot be used is
// turned into the most conservative result of the node kind (pass=false or score=0)
// with api.FallbackReason.
package node

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/datar-psa/stargraph/api"
)

// Options configures a node
type Options struct {
	weight  float64
	backend api.Options
}

// WithWeight sets the multiplier applied to numeric scores. Defaults to 1.
// Ignored by binary nodes.
func WithWeight(weight float64) func(*Options) {
	return func(opts *Options) {
		opts.weight = weight
	}
}

// WithBackendOptions merges provider specific options (e.g. "temperature") into
// every backend call made by the node. The default is a temperature of 0.
func WithBackendOptions(o api.Options) func(*Options) {
	return func(opts *Options) {
		maps.Copy(opts.backend, o)
	}
}

func newOptions(opts []func(*Options)) Options {
	options := Options{
		weight:  1,
		backend: api.Options{"temperature": 0.0},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// callOptions returns a copy so backends can never mutate node state
func (o Options) callOptions() api.Options {
	return maps.Clone(o.backend)
}

// decode copies a structured model response into out.
// It reports false when a required key is missing or null, or a value has the wrong type.
// Numeric strings are accepted for numbers, booleans are not.
func decode(raw map[string]any, out any, required ...string) bool {
	if raw == nil {
		return false
	}
	for _, key := range required {
		if raw[key] == nil {
			return false
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncKind(rejectBoolNumbers),
		Result:           out,
	})
	if err != nil {
		return false
	}
	return decoder.Decode(raw) == nil
}

func rejectBoolNumbers(from, to reflect.Kind, data any) (any, error) {
	if from == reflect.Bool && isNumberKind(to) {
		return nil, fmt.Errorf("cannot use boolean %v as a number", data)
	}
	return data, nil
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// toFloat converts a tool handler result to a finite score
func toFloat(v any) (float64, bool) {
	var (
		f  float64
		ok bool
	)
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		var err error
		f, err = n.Float64()
		ok = err == nil
	case string:
		var err error
		f, err = strconv.ParseFloat(n, 64)
		ok = err == nil
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f, ok = float64(rv.Int()), true
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f, ok = float64(rv.Uint()), true
		case reflect.Float32, reflect.Float64:
			f, ok = rv.Float(), true
		}
	}
	if !ok || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func backendError(err error) error {
	return fmt.Errorf("%w: %w", api.ErrBackendFailed, err)
}
