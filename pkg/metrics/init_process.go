package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initProcessMetrics registers the Go runtime and process collectors plus the
// gauges that describe a run in progress.
func (r *Registry) initProcessMetrics() {
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: "ftroute"}),
	)

	r.UptimeSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftroute_uptime_seconds",
			Help: "Seconds since the run started",
		},
	)

	r.InstancesInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ftroute_instances_in_flight",
			Help: "Instances currently being built or routed",
		},
	)
}
