package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/ftroute/pkg/metrics"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// stubRouter returns a fixed answer after an optional delay.
type stubRouter struct {
	res   Result
	err   error
	delay time.Duration
}

func (s *stubRouter) Algorithm() Algorithm { return s.res.Algorithm }

func (s *stubRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	time.Sleep(s.delay)
	return s.res, s.err
}

func TestTimed(t *testing.T) {
	found := &stubRouter{res: Result{Algorithm: BFS, Found: true, Path: []topology.NodeID{0, 1}}, delay: 2 * time.Millisecond}
	res, err := Timed(found).Route(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if res.Elapsed < 2*time.Millisecond {
		t.Errorf("Elapsed = %v, want >= 2ms", res.Elapsed)
	}

	short := &stubRouter{res: Result{Algorithm: BFS, ShortCircuit: true}, delay: time.Millisecond}
	res, _ = Timed(short).Route(context.Background(), 0, 1)
	if res.Elapsed != 0 {
		t.Errorf("short-circuit Elapsed = %v, want 0", res.Elapsed)
	}
}

func TestTraced_PassesThrough(t *testing.T) {
	want := Result{Algorithm: AStar, Found: true, Path: []topology.NodeID{2, 3}, Expanded: 4}
	res, err := Traced(&stubRouter{res: want}).Route(context.Background(), 2, 3)
	if err != nil || !res.Found || res.Expanded != 4 {
		t.Errorf("Traced result = %+v, %v", res, err)
	}

	boom := errors.New("boom")
	if _, err := Traced(&stubRouter{res: Result{Algorithm: AStar}, err: boom}).Route(context.Background(), 2, 3); !errors.Is(err, boom) {
		t.Errorf("Traced error = %v, want boom", err)
	}
}

func TestInstrumented(t *testing.T) {
	reg := metrics.NewRegistry()
	tests := []struct {
		stub   *stubRouter
		status string
	}{
		{&stubRouter{res: Result{Algorithm: Hybrid, Found: true, Path: []topology.NodeID{0, 1, 2}, UsedFallback: true}}, metrics.StatusFound},
		{&stubRouter{res: Result{Algorithm: Hybrid}}, metrics.StatusNotFound},
		{&stubRouter{res: Result{Algorithm: Hybrid, ShortCircuit: true}}, metrics.StatusShortCircuit},
		{&stubRouter{res: Result{Algorithm: Hybrid}, err: topology.ErrUnknownNode}, metrics.StatusError},
		{&stubRouter{res: Result{Algorithm: Hybrid}, err: context.DeadlineExceeded}, metrics.StatusCanceled},
	}

	for _, tt := range tests {
		Instrumented(tt.stub, reg).Route(context.Background(), 0, 2)

		c, err := reg.RoutesTotal.GetMetricWithLabelValues(string(Hybrid), tt.status)
		if err != nil {
			t.Fatalf("Failed to get metric: %v", err)
		}
		var metric dto.Metric
		if err := c.Write(&metric); err != nil {
			t.Fatalf("Failed to write metric: %v", err)
		}
		if metric.Counter.GetValue() != 1 {
			t.Errorf("%s counter = %v, want 1", tt.status, metric.Counter.GetValue())
		}
	}

	var metric dto.Metric
	if err := reg.HybridFallbacksTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("HybridFallbacksTotal = %v, want 1", metric.Counter.GetValue())
	}
}

func TestNew_ComposesDecorators(t *testing.T) {
	net := newNetwork(t, 2, 5)
	reg := metrics.NewRegistry()

	r := mustRouter(t, BFS, net, WithMetrics(reg))
	res, err := r.Route(context.Background(), 0, 12)
	if err != nil || !res.Found {
		t.Fatalf("Route = %+v, %v", res, err)
	}
	if res.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0 with timing on", res.Elapsed)
	}

	bare := mustRouter(t, BFS, net, WithoutTiming(), WithoutTracing())
	res, _ = bare.Route(context.Background(), 0, 12)
	if res.Elapsed != 0 {
		t.Errorf("Elapsed = %v, want 0 with timing off", res.Elapsed)
	}

	c, _ := reg.RoutesTotal.GetMetricWithLabelValues(string(BFS), metrics.StatusFound)
	var metric dto.Metric
	c.Write(&metric)
	if metric.Counter.GetValue() != 1 {
		t.Errorf("routes counted = %v, want 1", metric.Counter.GetValue())
	}
}
