package routing

import (
	"fmt"

	"github.com/dd0wney/ftroute/pkg/metrics"
)

type options struct {
	heuristic Heuristic
	registry  *metrics.Registry
	tracing   bool
	timing    bool
}

// Option configures New.
type Option func(*options)

// WithHeuristic selects the A* heuristic. Other algorithms ignore it.
func WithHeuristic(h Heuristic) Option {
	return func(o *options) { o.heuristic = h }
}

// WithMetrics records every query in registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithoutTracing drops the span decorator.
func WithoutTracing() Option {
	return func(o *options) { o.tracing = false }
}

// WithoutTiming leaves Result.Elapsed at zero.
func WithoutTiming() Option {
	return func(o *options) { o.timing = false }
}

// New builds the router for alg over net, wrapped as
// Instrumented(Traced(Timed(base))) according to opts.
func New(alg Algorithm, net Network, opts ...Option) (Router, error) {
	o := options{tracing: true, timing: true}
	for _, opt := range opts {
		opt(&o)
	}
	if net.Topology == nil || net.Labels == nil {
		return nil, ErrIncompleteNetwork
	}

	var r Router
	switch alg {
	case DFS:
		r = NewDFS(net)
	case BFS:
		r = NewBFS(net)
	case BidirectionalBFS:
		r = NewBidirectionalBFS(net)
	case AStar:
		r = NewAStar(net, o.heuristic)
	case Hybrid:
		if net.Index == nil {
			return nil, fmt.Errorf("%w: %s", ErrIndexRequired, alg)
		}
		r = NewHybrid(net)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(alg))
	}

	if o.timing {
		r = Timed(r)
	}
	if o.tracing {
		r = Traced(r)
	}
	if o.registry != nil {
		r = Instrumented(r, o.registry)
	}
	return r, nil
}
