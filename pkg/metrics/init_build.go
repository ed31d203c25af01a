package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.InstanceBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_instance_build_duration_seconds",
			Help:    "Time to generate a faulty cube instance and its connectivity index",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	r.InstancesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftroute_instances_total",
			Help: "Total number of instances built",
		},
		[]string{"status"},
	)

	r.BranchesRealized = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_branches_realized",
			Help:    "Number of isolated branches realized per instance",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	r.BranchShortfallsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftroute_branch_shortfalls_total",
			Help: "Instances that realized fewer branches than requested",
		},
	)

	r.FaultyNodeRatio = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_faulty_node_ratio",
			Help:    "Fraction of nodes labelled faulty per instance",
			Buckets: []float64{0, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1},
		},
	)

	r.UnionFindBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_union_find_build_duration_seconds",
			Help:    "Time to build the union-find connectivity index",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	r.ComponentsPerInstance = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_components_per_instance",
			Help:    "Number of fault-free components per instance",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	r.ConnectivityQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftroute_connectivity_queries_total",
			Help: "Total number of same-component queries",
		},
		[]string{"result"},
	)

	r.ConnectivityQueryDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ftroute_connectivity_query_duration_seconds",
			Help:    "Same-component query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-8, 4, 8),
		},
	)
}
