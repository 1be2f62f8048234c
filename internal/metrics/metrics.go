// Package metrics provides OpenTelemetry counters for graph evaluations.
// Counters fall back to no-op instruments when creation fails.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope used for all stargraph metrics
const MeterName = "github.com/datar-psa/stargraph"

// Evaluation records node and graph evaluation outcomes.
type Evaluation struct {
	nodes     metric.Int64Counter
	fallbacks metric.Int64Counter
	failures  metric.Int64Counter
	graphs    metric.Int64Counter
}

// NewEvaluation creates the evaluation counters on the global meter provider.
func NewEvaluation() *Evaluation {
	meter := otel.Meter(MeterName, metric.WithInstrumentationVersion("1.0.0"))

	return &Evaluation{
		nodes:     counter(meter, "stargraph.node.evaluations", "The number of node evaluations", "{evaluations}"),
		fallbacks: counter(meter, "stargraph.node.fallbacks", "The number of node evaluations that fell back to the conservative result", "{evaluations}"),
		failures:  counter(meter, "stargraph.node.failures", "The number of node evaluations that failed on a backend error", "{evaluations}"),
		graphs:    counter(meter, "stargraph.graph.evaluations", "The number of graph evaluations", "{evaluations}"),
	}
}

func counter(meter metric.Meter, name, description, unit string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		slog.Warn("Failed to create counter, metric will be disabled", "error", err, "metric", name)
		return noop.Int64Counter{}
	}
	return c
}

// RecordNode records one node evaluation. fallback marks a conservative default result.
func (m *Evaluation) RecordNode(ctx context.Context, kind string, fallback bool, err error) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	m.nodes.Add(ctx, 1, attrs)
	switch {
	case err != nil:
		m.failures.Add(ctx, 1, attrs)
	case fallback:
		m.fallbacks.Add(ctx, 1, attrs)
	}
}

// RecordGraph records one graph evaluation with its node count and outcome.
func (m *Evaluation) RecordGraph(ctx context.Context, kind string, nodes int, err error) {
	m.graphs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Int("nodes", nodes),
		attribute.Bool("success", err == nil),
	))
}
