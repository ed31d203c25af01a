package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	var metric dto.Metric
	if err := o.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Histogram.GetSampleCount()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.RoutesTotal == nil {
		t.Error("RoutesTotal not initialized")
	}
	if r.InstanceBuildDuration == nil {
		t.Error("InstanceBuildDuration not initialized")
	}
	if r.TrialsTotal == nil {
		t.Error("TrialsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordRoute(t *testing.T) {
	r := NewRegistry()

	r.RecordRoute("bfs", StatusFound, 2*time.Millisecond, 40, 5, false)
	r.RecordRoute("bfs", StatusFound, 3*time.Millisecond, 60, 7, false)
	r.RecordRoute("bfs", StatusNotFound, time.Millisecond, 12, 0, false)
	r.RecordRoute("hybrid", StatusFound, time.Millisecond, 9, 4, true)

	found, err := r.RoutesTotal.GetMetricWithLabelValues("bfs", StatusFound)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, found); got != 2 {
		t.Errorf("bfs found counter = %v, want 2", got)
	}

	hops, err := r.RoutePathHops.GetMetricWithLabelValues("bfs")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	if got := histogramCount(t, hops); got != 2 {
		t.Errorf("hop samples = %v, want 2 (not-found routes carry no path)", got)
	}

	expanded, _ := r.RouteNodesExpanded.GetMetricWithLabelValues("bfs")
	if got := histogramCount(t, expanded); got != 3 {
		t.Errorf("expanded samples = %v, want 3", got)
	}

	if got := counterValue(t, r.HybridFallbacksTotal); got != 1 {
		t.Errorf("HybridFallbacksTotal = %v, want 1", got)
	}
}

func TestRecordRoute_Slow(t *testing.T) {
	r := NewRegistry()

	r.RecordRoute("dfs", StatusFound, 500*time.Millisecond, 1, 1, false)
	r.RecordRoute("dfs", StatusFound, 2*time.Second, 1, 1, false)

	slow, _ := r.SlowRoutes.GetMetricWithLabelValues("dfs")
	if got := counterValue(t, slow); got != 1 {
		t.Errorf("Slow routes = %v, want 1", got)
	}
}

func TestRecordBuild(t *testing.T) {
	r := NewRegistry()

	r.RecordBuild(10*time.Millisecond, time.Millisecond, 3, false, 0.2, 4)
	r.RecordBuild(12*time.Millisecond, time.Millisecond, 1, true, 0.1, 2)
	r.RecordBuildFailure()

	ok, _ := r.InstancesTotal.GetMetricWithLabelValues("ok")
	if got := counterValue(t, ok); got != 2 {
		t.Errorf("ok instances = %v, want 2", got)
	}
	failed, _ := r.InstancesTotal.GetMetricWithLabelValues("error")
	if got := counterValue(t, failed); got != 1 {
		t.Errorf("failed instances = %v, want 1", got)
	}
	if got := counterValue(t, r.BranchShortfallsTotal); got != 1 {
		t.Errorf("BranchShortfallsTotal = %v, want 1", got)
	}
	if got := histogramCount(t, r.ComponentsPerInstance); got != 2 {
		t.Errorf("components samples = %v, want 2", got)
	}
}

func TestRecordConnectivityQuery(t *testing.T) {
	r := NewRegistry()

	r.RecordConnectivityQuery(true, time.Microsecond)
	r.RecordConnectivityQuery(true, time.Microsecond)
	r.RecordConnectivityQuery(false, time.Microsecond)

	tests := []struct {
		result string
		want   float64
	}{
		{"connected", 2},
		{"disconnected", 1},
	}
	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			c, err := r.ConnectivityQueriesTotal.GetMetricWithLabelValues(tt.result)
			if err != nil {
				t.Fatalf("Failed to get metric: %v", err)
			}
			if got := counterValue(t, c); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestProcessMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateUptime(time.Now().Add(-time.Hour))

	var metric dto.Metric
	if err := r.UptimeSeconds.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() < 3600 {
		t.Errorf("UptimeSeconds = %v, want >= 3600", metric.Gauge.GetValue())
	}

	r.InstanceStarted()
	r.InstanceStarted()
	r.InstanceFinished()
	if err := r.InstancesInFlight.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("InstancesInFlight = %v, want 1", metric.Gauge.GetValue())
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	if len(metrics) == 0 {
		t.Error("No metrics registered")
	}

	expectedMetrics := []string{
		"ftroute_instance_build_duration_seconds",
		"ftroute_hybrid_fallbacks_total",
		"ftroute_uptime_seconds",
		"ftroute_instances_in_flight",
		"go_goroutines",
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.RecordRoute("astar", StatusFound, time.Microsecond, 10, 3, false)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	counter, err := r.RoutesTotal.GetMetricWithLabelValues("astar", StatusFound)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, counter); got != 1000 {
		t.Errorf("Counter = %v, want 1000", got)
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordRoute("bfs", StatusFound, time.Millisecond, 1, 1, false)
	r.RecordTrial("largest-branch", "ok")

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	for _, m := range metrics {
		name := m.GetName()
		if !strings.HasPrefix(name, "ftroute_") {
			t.Errorf("Metric %s does not have ftroute_ prefix", name)
		}
	}
}

func BenchmarkRecordRoute(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordRoute("bfs", StatusFound, 10*time.Microsecond, 50, 6, false)
	}
}
