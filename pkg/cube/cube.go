// Package cube assembles one experiment instance: an augmented k-ary n-cube,
// a synthesized fault pattern, its connectivity index and the routers that
// search it.
package cube

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dd0wney/ftroute/pkg/connectivity"
	"github.com/dd0wney/ftroute/pkg/faults"
	"github.com/dd0wney/ftroute/pkg/logging"
	"github.com/dd0wney/ftroute/pkg/metrics"
	"github.com/dd0wney/ftroute/pkg/routing"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// Params selects the network and the fault pattern.
type Params struct {
	N, K int
	// R is the branch count; R-1 isolated cores are requested.
	R int
	// H sizes each core at H+1 nodes.
	H           int
	Seed        uint64
	RetryBudget int
}

func (p Params) String() string {
	return fmt.Sprintf("n=%d,k=%d,r=%d,h=%d,seed=%d", p.N, p.K, p.R, p.H, p.Seed)
}

// NewRand returns the generator used for everything derived from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))
}

// Instance is a built network. All fields are read-only after Build and an
// Instance may be shared between goroutines.
type Instance struct {
	Params   Params
	Topology *topology.Topology
	Labels   *faults.Labeling
	Index    *connectivity.Index
	// Branches lists the node set of every isolated core.
	Branches [][]topology.NodeID
	// Warning wraps faults.ErrBranchShortfall when fewer branches than
	// requested were realized.
	Warning       error
	BuildDuration time.Duration

	logger     logging.Logger
	registry   *metrics.Registry
	routerOpts []routing.Option

	componentsOnce sync.Once
	components     []connectivity.Component

	mu      sync.Mutex
	routers map[routing.Algorithm]routing.Router
}

// Option configures Build.
type Option func(*Instance)

// WithLogger sets the logger for build and shortfall messages.
func WithLogger(logger logging.Logger) Option {
	return func(inst *Instance) { inst.logger = logger }
}

// WithMetrics records the build, connectivity queries and routes in registry.
func WithMetrics(registry *metrics.Registry) Option {
	return func(inst *Instance) { inst.registry = registry }
}

// WithRoutingOptions passes opts to every router the instance creates.
func WithRoutingOptions(opts ...routing.Option) Option {
	return func(inst *Instance) { inst.routerOpts = append(inst.routerOpts, opts...) }
}

// Build generates the topology, synthesizes faults from p.Seed and indexes
// the fault-free components. A branch shortfall is not an error; it is
// logged and kept in Warning.
func Build(p Params, opts ...Option) (*Instance, error) {
	inst := &Instance{
		Params:  p,
		logger:  logging.NewNopLogger(),
		routers: make(map[routing.Algorithm]routing.Router),
	}
	for _, opt := range opts {
		opt(inst)
	}
	timer := logging.StartTimer(inst.logger, "instance built", logging.Cube(p.N, p.K, p.R, p.H), logging.Seed(p.Seed))

	topo, err := topology.New(p.N, p.K)
	if err != nil {
		return nil, inst.fail(&BuildError{Op: "topology", Params: p, Cause: err})
	}
	synth, err := faults.Synthesize(topo, faults.Options{
		Branches:    p.R,
		CoreSize:    p.H,
		RetryBudget: p.RetryBudget,
	}, NewRand(p.Seed))
	if err != nil {
		return nil, inst.fail(&BuildError{Op: "faults", Params: p, Cause: err})
	}

	inst.Topology = topo
	inst.Labels = synth.Labels
	inst.Branches = synth.Cores
	inst.Warning = synth.Warning
	inst.Index = connectivity.Build(topo, synth.Labels)

	if inst.Warning != nil {
		inst.logger.Warn("branch shortfall",
			logging.Cube(p.N, p.K, p.R, p.H),
			logging.Int("requested", synth.Requested),
			logging.Int("realized", synth.Realized),
			logging.Int("attempts", synth.Attempts))
	}

	inst.BuildDuration = timer.EndWithLevel(logging.DebugLevel,
		logging.Int("faulty", synth.Labels.FaultyCount()),
		logging.Int("components", inst.Index.ComponentCount()))

	if inst.registry != nil {
		inst.registry.RecordBuild(inst.BuildDuration, inst.Index.BuildDuration(), synth.Realized, inst.Warning != nil,
			float64(synth.Labels.FaultyCount())/float64(topo.NodeCount()), inst.Index.ComponentCount())
	}
	return inst, nil
}

func (inst *Instance) fail(err error) error {
	inst.logger.Error("instance build failed", logging.Error(err))
	if inst.registry != nil {
		inst.registry.RecordBuildFailure()
	}
	return err
}

// Network returns the view routers search.
func (inst *Instance) Network() routing.Network {
	return routing.Network{Topology: inst.Topology, Labels: inst.Labels, Index: inst.Index}
}

// Connected reports whether fault-free paths join the nodes at u and v.
// Coordinates outside the network yield topology.ErrUnknownNode.
func (inst *Instance) Connected(u, v topology.Coords) (bool, error) {
	a, err := inst.Topology.Encode(u)
	if err != nil {
		return false, err
	}
	b, err := inst.Topology.Encode(v)
	if err != nil {
		return false, err
	}
	return inst.Index.Connected(a, b), nil
}

// TimedConnected answers one connectivity query and reports how long it took.
func (inst *Instance) TimedConnected(u, v topology.NodeID) (bool, time.Duration) {
	start := time.Now()
	ok := inst.Index.Connected(u, v)
	elapsed := time.Since(start)
	if inst.registry != nil {
		inst.registry.RecordConnectivityQuery(ok, elapsed)
	}
	return ok, elapsed
}

// Components returns the fault-free components, largest first.
func (inst *Instance) Components() []connectivity.Component {
	inst.componentsOnce.Do(func() {
		inst.components = inst.Index.SortedComponents()
	})
	return inst.components
}

// Router returns the composed router for alg, creating it on first use.
func (inst *Instance) Router(alg routing.Algorithm) (routing.Router, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	if r, ok := inst.routers[alg]; ok {
		return r, nil
	}
	opts := inst.routerOpts
	if inst.registry != nil {
		opts = append(opts[:len(opts):len(opts)], routing.WithMetrics(inst.registry))
	}
	r, err := routing.New(alg, inst.Network(), opts...)
	if err != nil {
		return nil, err
	}
	inst.routers[alg] = r
	return r, nil
}

// Route runs alg from u to v.
func (inst *Instance) Route(ctx context.Context, alg routing.Algorithm, u, v topology.NodeID) (routing.Result, error) {
	r, err := inst.Router(alg)
	if err != nil {
		return routing.Result{Algorithm: alg}, err
	}
	return r.Route(ctx, u, v)
}
