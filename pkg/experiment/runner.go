package experiment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dd0wney/ftroute/pkg/cube"
	"github.com/dd0wney/ftroute/pkg/logging"
	"github.com/dd0wney/ftroute/pkg/metrics"
	"github.com/dd0wney/ftroute/pkg/parallel"
	"github.com/dd0wney/ftroute/pkg/routing"
	"github.com/dd0wney/ftroute/pkg/topology"
	"github.com/dd0wney/ftroute/pkg/validation"
)

// Trial statuses recorded in metrics.
const (
	trialOK      = "ok"
	trialSkipped = "skipped"
	trialFailed  = "failed"
)

// Runner executes a Config.
type Runner struct {
	cfg        Config
	algs       []routing.Algorithm
	runID      string
	logger     logging.Logger
	registry   *metrics.Registry
	routerOpts []routing.Option

	done    atomic.Int64
	skipped atomic.Int64
}

// Progress is a snapshot of a running experiment.
type Progress struct {
	Total   int
	Done    int
	Skipped int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records builds, routes and trials in registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(r *Runner) { r.registry = registry }
}

// WithRoutingOptions passes opts to every router.
func WithRoutingOptions(opts ...routing.Option) Option {
	return func(r *Runner) { r.routerOpts = append(r.routerOpts, opts...) }
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// NewRunner validates cfg and returns a runner for it.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:    cfg,
		algs:   cfg.algorithms(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = r.logger.With(logging.RunID(r.runID))
	return r, nil
}

// RunID identifies this run in records and archive keys.
func (r *Runner) RunID() string { return r.runID }

// Algorithms returns the routers run on every trial, in config order.
func (r *Runner) Algorithms() []routing.Algorithm { return slices.Clone(r.algs) }

// Progress reports how many instances have finished. It may be called while
// Run is in flight.
func (r *Runner) Progress() Progress {
	return Progress{
		Total:   r.cfg.Instances,
		Done:    int(r.done.Load()),
		Skipped: int(r.skipped.Load()),
	}
}

// Run builds every instance on the worker pool and returns the records ordered
// by instance and trial. Instance i uses seed Seed+i, so results do not depend
// on scheduling.
func (r *Runner) Run(ctx context.Context) ([]Record, error) {
	pool, err := parallel.NewWorkerPool(validation.DefaultOrInt(r.cfg.Workers, runtime.NumCPU()), parallel.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	timer := logging.StartTimer(r.logger, "experiment finished",
		logging.Cube(r.cfg.N, r.cfg.K, r.cfg.R, r.cfg.H),
		logging.String("mode", string(r.cfg.Mode)))
	r.logger.Info("experiment started",
		logging.Int("instances", r.cfg.Instances),
		logging.Int("trials", r.cfg.Trials),
		logging.Int("workers", pool.Workers()))

	perInstance := make([][]Record, r.cfg.Instances)
	err = pool.ForEach(ctx, r.cfg.Instances, func(ctx context.Context, i int) error {
		recs, err := r.runInstance(ctx, i)
		perInstance[i] = recs
		if err == nil {
			r.done.Add(1)
		}
		return err
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	var records []Record
	for _, recs := range perInstance {
		records = append(records, recs...)
	}
	timer.End(logging.Count(len(records)))
	return records, nil
}

func (r *Runner) runInstance(ctx context.Context, i int) ([]Record, error) {
	if r.registry != nil {
		r.registry.InstanceStarted()
		defer r.registry.InstanceFinished()
	}

	seed := r.cfg.Seed + uint64(i)
	logger := r.logger.With(logging.Instance(i), logging.Seed(seed))

	buildOpts := []cube.Option{
		cube.WithLogger(logger),
		cube.WithRoutingOptions(r.routerOpts...),
	}
	if r.registry != nil {
		buildOpts = append(buildOpts, cube.WithMetrics(r.registry))
	}
	inst, err := cube.Build(cube.Params{
		N: r.cfg.N, K: r.cfg.K, R: r.cfg.R, H: r.cfg.H,
		Seed:        seed,
		RetryBudget: r.cfg.RetryBudget,
	}, buildOpts...)
	if err != nil {
		return nil, err
	}

	// Endpoint sampling draws from its own stream so adding trials never
	// changes the fault pattern.
	rng := rand.New(rand.NewPCG(seed, uint64(i)+1))

	records := make([]Record, 0, r.cfg.Trials)
	for trial := 0; trial < r.cfg.Trials; trial++ {
		src, dst, err := r.pick(inst, rng)
		if err != nil {
			logger.Warn("endpoint sampling failed, instance skipped",
				logging.String("mode", string(r.cfg.Mode)),
				logging.Int("components", inst.Index.ComponentCount()),
				logging.Error(err))
			r.recordTrial(trialSkipped)
			r.skipped.Add(1)
			return records, nil
		}

		rec, err := r.runTrial(ctx, inst, i, trial, src, dst)
		if err != nil {
			r.recordTrial(trialFailed)
			return nil, fmt.Errorf("experiment: instance %d trial %d: %w", i, trial, err)
		}
		r.recordTrial(trialOK)
		records = append(records, rec)
	}
	return records, nil
}

func (r *Runner) pick(inst *cube.Instance, rng *rand.Rand) (topology.NodeID, topology.NodeID, error) {
	switch r.cfg.Mode {
	case ModeLargestBranch:
		return inst.PickFromLargestComponent(rng)
	case ModeTwoLargest:
		return inst.PickFromTwoLargestComponents(rng)
	default:
		return inst.PickFromDifferentComponents(rng)
	}
}

func (r *Runner) runTrial(ctx context.Context, inst *cube.Instance, i, trial int, src, dst topology.NodeID) (Record, error) {
	connected, queryTime := inst.TimedConnected(src, dst)

	rec := Record{
		ID:              uuid.NewString(),
		RunID:           r.runID,
		Instance:        i,
		Trial:           trial,
		N:               r.cfg.N,
		K:               r.cfg.K,
		R:               r.cfg.R,
		H:               r.cfg.H,
		Mode:            r.cfg.Mode,
		Branches:        len(inst.Branches),
		Source:          inst.Topology.Decode(src).String(),
		Sink:            inst.Topology.Decode(dst).String(),
		UFBuildTime:     inst.Index.BuildDuration().Seconds(),
		UFConnected:     connected,
		UFConnectedTime: queryTime.Seconds(),
		Outcomes:        make([]Outcome, 0, len(r.algs)),
	}

	for _, alg := range r.algs {
		out, err := r.route(ctx, inst, alg, src, dst)
		if err != nil {
			return rec, err
		}
		rec.Outcomes = append(rec.Outcomes, out)
	}
	return rec, nil
}

// route runs one router under the configured per-route timeout. A route that
// hits that timeout is recorded as not found; cancellation of the run itself
// is returned as an error.
func (r *Runner) route(ctx context.Context, inst *cube.Instance, alg routing.Algorithm, src, dst topology.NodeID) (Outcome, error) {
	routeCtx := ctx
	if r.cfg.RouteTimeout > 0 {
		var cancel context.CancelFunc
		routeCtx, cancel = context.WithTimeout(ctx, r.cfg.RouteTimeout)
		defer cancel()
	}

	res, err := inst.Route(routeCtx, alg, src, dst)
	if err == nil {
		return newOutcome(res), nil
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		r.logger.Warn("route timed out",
			logging.Algorithm(string(alg)),
			logging.Coords("source", inst.Topology.Decode(src)),
			logging.Coords("sink", inst.Topology.Decode(dst)),
			logging.Duration("timeout", r.cfg.RouteTimeout))
		return Outcome{
			Algorithm:  alg,
			PathLength: -1,
			Seconds:    r.cfg.RouteTimeout.Seconds(),
			Expanded:   res.Expanded,
			TimedOut:   true,
		}, nil
	}
	return Outcome{}, err
}

func (r *Runner) recordTrial(status string) {
	if r.registry != nil {
		r.registry.RecordTrial(string(r.cfg.Mode), status)
	}
}
