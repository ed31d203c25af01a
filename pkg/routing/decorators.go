package routing

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dd0wney/ftroute/pkg/metrics"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// TracerName is the instrumentation scope of routing spans.
const TracerName = "ftroute/routing"

type timed struct{ next Router }

// Timed fills Result.Elapsed with the wall time of the wrapped search.
// Short-circuited queries report zero.
func Timed(next Router) Router { return &timed{next: next} }

func (t *timed) Algorithm() Algorithm { return t.next.Algorithm() }

func (t *timed) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	start := time.Now()
	res, err := t.next.Route(ctx, src, dst)
	if !res.ShortCircuit {
		res.Elapsed = time.Since(start)
	}
	return res, err
}

type traced struct {
	next   Router
	tracer trace.Tracer
}

// Traced opens one span per query on the global tracer provider.
func Traced(next Router) Router {
	return &traced{next: next, tracer: otel.Tracer(TracerName)}
}

func (t *traced) Algorithm() Algorithm { return t.next.Algorithm() }

func (t *traced) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	ctx, span := t.tracer.Start(ctx, "routing.Route",
		trace.WithAttributes(
			attribute.String("algorithm", string(t.next.Algorithm())),
			attribute.Int64("src", int64(src)),
			attribute.Int64("dst", int64(dst)),
		),
	)
	defer span.End()

	res, err := t.next.Route(ctx, src, dst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route failed")
		return res, err
	}

	span.SetAttributes(
		attribute.Bool("found", res.Found),
		attribute.Int("expanded", res.Expanded),
		attribute.Int("hops", res.Hops()),
		attribute.Bool("used_fallback", res.UsedFallback),
		attribute.Bool("short_circuit", res.ShortCircuit),
	)
	return res, nil
}

type instrumented struct {
	next     Router
	registry *metrics.Registry
}

// Instrumented records every query in registry. Wrap it outside Timed so the
// recorded duration is the one reported in the result.
func Instrumented(next Router, registry *metrics.Registry) Router {
	return &instrumented{next: next, registry: registry}
}

func (m *instrumented) Algorithm() Algorithm { return m.next.Algorithm() }

func (m *instrumented) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, err := m.next.Route(ctx, src, dst)
	m.registry.RecordRoute(string(m.next.Algorithm()), routeStatus(res, err), res.Elapsed, res.Expanded, res.Hops(), res.UsedFallback)
	return res, err
}

func routeStatus(res Result, err error) string {
	switch {
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return metrics.StatusCanceled
	case err != nil:
		return metrics.StatusError
	case res.ShortCircuit:
		return metrics.StatusShortCircuit
	case res.Found:
		return metrics.StatusFound
	default:
		return metrics.StatusNotFound
	}
}
