package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRoutingMetrics() {
	r.RoutesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftroute_routes_total",
			Help: "Total number of route queries",
		},
		[]string{"algorithm", "status"},
	)

	r.RouteDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftroute_route_duration_seconds",
			Help:    "Route query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
		},
		[]string{"algorithm"},
	)

	r.RouteNodesExpanded = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftroute_route_nodes_expanded",
			Help:    "Number of nodes expanded per route query",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		},
		[]string{"algorithm"},
	)

	r.RoutePathHops = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ftroute_route_path_hops",
			Help:    "Number of edges on found paths",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		},
		[]string{"algorithm"},
	)

	r.HybridFallbacksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftroute_hybrid_fallbacks_total",
			Help: "Hybrid routes that needed the BFS fallback",
		},
	)

	r.SlowRoutes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftroute_slow_routes_total",
			Help: "Total number of slow route queries (>1s)",
		},
		[]string{"algorithm"},
	)
}
