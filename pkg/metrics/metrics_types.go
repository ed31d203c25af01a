package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Instance build metrics
	InstanceBuildDuration  prometheus.Histogram
	InstancesTotal         *prometheus.CounterVec
	BranchesRealized       prometheus.Histogram
	BranchShortfallsTotal  prometheus.Counter
	FaultyNodeRatio        prometheus.Histogram
	UnionFindBuildDuration prometheus.Histogram
	ComponentsPerInstance  prometheus.Histogram

	// Connectivity metrics
	ConnectivityQueriesTotal  *prometheus.CounterVec
	ConnectivityQueryDuration prometheus.Histogram

	// Routing metrics
	RoutesTotal          *prometheus.CounterVec
	RouteDuration        *prometheus.HistogramVec
	RouteNodesExpanded   *prometheus.HistogramVec
	RoutePathHops        *prometheus.HistogramVec
	HybridFallbacksTotal prometheus.Counter
	SlowRoutes           *prometheus.CounterVec

	// Experiment metrics
	TrialsTotal    *prometheus.CounterVec
	RecordsWritten prometheus.Counter

	// Process metrics; Go runtime and process collectors are registered too
	UptimeSeconds     prometheus.Gauge
	InstancesInFlight prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initBuildMetrics()
	r.initRoutingMetrics()
	r.initExperimentMetrics()
	r.initProcessMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
