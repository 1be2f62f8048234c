// Package graph evaluates content against a set of criterion nodes concurrently
// and aggregates their results into a score.
//
// A graph is a root content slot connected to independent nodes ("star" shape).
// Evaluate fans the content out to every node, waits for all of them and caches
// the results in node order; the scoring methods of Binary and Numeric read that cache.
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/datar-psa/stargraph/api"
	"github.com/datar-psa/stargraph/internal/metrics"
)

var evalMetrics = sync.OnceValue(metrics.NewEvaluation)

// Options configures a graph
type Options struct {
	concurrency int
}

// WithConcurrency bounds the number of nodes evaluated at the same time.
// Zero or negative means one goroutine per node.
func WithConcurrency(n int) func(*Options) {
	return func(opts *Options) {
		opts.concurrency = n
	}
}

// Graph fans content out to its nodes using one shared backend and model.
type Graph struct {
	nodes       []api.Node
	backend     api.Backend
	model       string
	kind        api.Kind
	concurrency int

	mu         sync.RWMutex
	evaluated  bool
	evaluation []api.Result
}

// New creates a graph over nodes. All nodes must produce the same result kind.
// model is passed to the backend on every call; an empty string selects the backend default.
func New(backend api.Backend, model string, nodes []api.Node, opts ...func(*Options)) (*Graph, error) {
	if backend == nil {
		return nil, api.ErrNoBackend
	}

	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	var kind api.Kind
	for i, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("node %d is nil", i)
		}
		if i == 0 {
			kind = n.Kind()
			continue
		}
		if n.Kind() != kind {
			return nil, fmt.Errorf("%w: node 0 is %s, node %d is %s", api.ErrMixedKinds, kind, i, n.Kind())
		}
	}

	return &Graph{
		nodes:       append([]api.Node(nil), nodes...),
		backend:     backend,
		model:       model,
		kind:        kind,
		concurrency: options.concurrency,
	}, nil
}

// Len returns the number of nodes
func (g *Graph) Len() int { return len(g.nodes) }

// Kind returns the result kind shared by all nodes. It is zero for an empty graph.
func (g *Graph) Kind() api.Kind { return g.kind }

// Evaluate judges content with every node concurrently.
// The returned results are in node order. If any node fails, the remaining nodes are
// cancelled, the cached results of a previous evaluation are kept and an error
// wrapping api.ErrEvaluationFailed is returned.
func (g *Graph) Evaluate(ctx context.Context, content string) (results []api.Result, err error) {
	log := clog.FromContext(ctx).With("nodes", len(g.nodes), "model", g.model, "kind", g.kind.String())
	start := time.Now()
	defer func() {
		evalMetrics().RecordGraph(ctx, g.kind.String(), len(g.nodes), err)
	}()

	log.Info("Evaluating graph")

	results = make([]api.Result, len(g.nodes))
	nodeErrs := make([]error, len(g.nodes))

	eg, egCtx := errgroup.WithContext(ctx)
	if g.concurrency > 0 {
		eg.SetLimit(g.concurrency)
	}

	for i, n := range g.nodes {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				nodeErrs[i] = err
				return err
			}

			res, err := n.Evaluate(egCtx, content, g.backend, g.model)
			evalMetrics().RecordNode(ctx, n.Kind().String(), isFallback(res), err)
			if err != nil {
				nodeErrs[i] = err
				return err
			}
			if res == nil || res.Kind() != n.Kind() {
				err := fmt.Errorf("node %d returned %v, want a %s result", i, res, n.Kind())
				nodeErrs[i] = err
				return err
			}
			results[i] = res
			return nil
		})
	}

	if eg.Wait() != nil {
		err = aggregate(ctx, nodeErrs)
		log.With("error", err).With("duration", time.Since(start)).Error("Graph evaluation failed")
		return nil, err
	}

	g.mu.Lock()
	g.evaluation = results
	g.evaluated = true
	g.mu.Unlock()

	log.With("duration", time.Since(start)).Info("Graph evaluation completed")
	return append([]api.Result(nil), results...), nil
}

// Results returns the cached results of the last successful evaluation.
func (g *Graph) Results() ([]api.Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.evaluated {
		return nil, api.ErrNotEvaluated
	}
	return append([]api.Result(nil), g.evaluation...), nil
}

// aggregate combines node failures into one error.
// Cancellations caused by a sibling failure are dropped unless nothing else failed.
func aggregate(ctx context.Context, nodeErrs []error) error {
	var failures, cancelled *multierror.Error
	for i, err := range nodeErrs {
		if err == nil {
			continue
		}
		err = fmt.Errorf("node %d: %w", i, err)
		if ctx.Err() == nil && errors.Is(err, context.Canceled) {
			cancelled = multierror.Append(cancelled, err)
			continue
		}
		failures = multierror.Append(failures, err)
	}
	if failures == nil {
		failures = cancelled
	}
	return fmt.Errorf("%w: %w", api.ErrEvaluationFailed, failures.ErrorOrNil())
}

func isFallback(res api.Result) bool {
	switch r := res.(type) {
	case api.BinaryResult:
		return r.Reason == api.FallbackReason
	case api.NumericResult:
		return r.Reason == api.FallbackReason
	default:
		return false
	}
}
