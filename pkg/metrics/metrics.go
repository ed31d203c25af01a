package metrics

import (
	"time"
)

// Route status labels.
const (
	StatusFound        = "found"
	StatusNotFound     = "not_found"
	StatusShortCircuit = "short_circuit"
	StatusError        = "error"
	StatusCanceled     = "canceled"
)

// RecordRoute records one route query. hops is ignored unless status is
// StatusFound.
func (r *Registry) RecordRoute(algorithm, status string, duration time.Duration, expanded, hops int, fallback bool) {
	r.RoutesTotal.WithLabelValues(algorithm, status).Inc()
	r.RouteDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.RouteNodesExpanded.WithLabelValues(algorithm).Observe(float64(expanded))
	if status == StatusFound {
		r.RoutePathHops.WithLabelValues(algorithm).Observe(float64(hops))
	}
	if fallback {
		r.HybridFallbacksTotal.Inc()
	}

	if duration > time.Second {
		r.SlowRoutes.WithLabelValues(algorithm).Inc()
	}
}

// RecordBuild records a successful instance build.
func (r *Registry) RecordBuild(duration, indexDuration time.Duration, realized int, shortfall bool, faultyRatio float64, components int) {
	r.InstancesTotal.WithLabelValues("ok").Inc()
	r.InstanceBuildDuration.Observe(duration.Seconds())
	r.UnionFindBuildDuration.Observe(indexDuration.Seconds())
	r.BranchesRealized.Observe(float64(realized))
	r.FaultyNodeRatio.Observe(faultyRatio)
	r.ComponentsPerInstance.Observe(float64(components))
	if shortfall {
		r.BranchShortfallsTotal.Inc()
	}
}

// RecordBuildFailure counts an instance that could not be built.
func (r *Registry) RecordBuildFailure() {
	r.InstancesTotal.WithLabelValues("error").Inc()
}

// RecordConnectivityQuery records a same-component query.
func (r *Registry) RecordConnectivityQuery(connected bool, duration time.Duration) {
	result := "disconnected"
	if connected {
		result = "connected"
	}
	r.ConnectivityQueriesTotal.WithLabelValues(result).Inc()
	r.ConnectivityQueryDuration.Observe(duration.Seconds())
}

// RecordTrial records one experiment trial.
func (r *Registry) RecordTrial(mode, status string) {
	r.TrialsTotal.WithLabelValues(mode, status).Inc()
}

// UpdateUptime sets the uptime gauge from the run start.
func (r *Registry) UpdateUptime(start time.Time) {
	r.UptimeSeconds.Set(time.Since(start).Seconds())
}

// InstanceStarted and InstanceFinished bracket one instance of a run.
func (r *Registry) InstanceStarted() { r.InstancesInFlight.Inc() }

// InstanceFinished pairs with InstanceStarted.
func (r *Registry) InstanceFinished() { r.InstancesInFlight.Dec() }
