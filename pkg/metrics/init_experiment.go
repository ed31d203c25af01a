package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExperimentMetrics() {
	r.TrialsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ftroute_trials_total",
			Help: "Total number of experiment trials",
		},
		[]string{"mode", "status"},
	)

	r.RecordsWritten = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ftroute_records_written_total",
			Help: "Experiment records written to sinks",
		},
	)
}
