package routing

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/ftroute/pkg/connectivity"
	"github.com/dd0wney/ftroute/pkg/faults"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// instance builds a synthesized network and a random fault-free pair. ok is
// false when the draw left no fault-free node.
func instance(n, k, r, h int, seed uint64) (net Network, src, dst topology.NodeID, ok bool) {
	topo, err := topology.New(n, k)
	if err != nil {
		return Network{}, 0, 0, false
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	res, err := faults.Synthesize(topo, faults.Options{Branches: r, CoreSize: h}, rng)
	if err != nil {
		return Network{}, 0, 0, false
	}
	free := res.Labels.FaultFree()
	if len(free) == 0 {
		return Network{}, 0, 0, false
	}
	net = Network{Topology: topo, Labels: res.Labels, Index: connectivity.Build(topo, res.Labels)}
	return net, free[rng.IntN(len(free))], free[rng.IntN(len(free))], true
}

func TestRoutingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60

	properties := gopter.NewProperties(parameters)
	ctx := context.Background()

	params := []gopter.Gen{
		gen.IntRange(1, 3),
		gen.IntRange(2, 6),
		gen.IntRange(0, 5),
		gen.IntRange(0, 2),
		gen.UInt64(),
	}

	properties.Property("shortest routers agree on length", prop.ForAll(
		func(n, k, r, h int, seed uint64) bool {
			net, src, dst, ok := instance(n, k, r, h, seed)
			if !ok {
				return true
			}
			bfs, _ := NewBFS(net).Route(ctx, src, dst)
			bidir, _ := NewBidirectionalBFS(net).Route(ctx, src, dst)
			astar, _ := NewAStar(net, nil).Route(ctx, src, dst)

			if bfs.Found != net.Index.Connected(src, dst) {
				return false
			}
			if bidir.Found != bfs.Found || astar.Found != bfs.Found {
				return false
			}
			if !bfs.Found {
				return true
			}
			return bidir.Hops() == bfs.Hops() && astar.Hops() == bfs.Hops() &&
				CheckPath(net, src, dst, bidir.Path) == nil &&
				CheckPath(net, src, dst, astar.Path) == nil &&
				CheckPath(net, src, dst, bfs.Path) == nil
		},
		params...,
	))

	properties.Property("dfs and hybrid find valid paths exactly when bfs does", prop.ForAll(
		func(n, k, r, h int, seed uint64) bool {
			net, src, dst, ok := instance(n, k, r, h, seed)
			if !ok {
				return true
			}
			bfs, _ := NewBFS(net).Route(ctx, src, dst)
			dfs, _ := NewDFS(net).Route(ctx, src, dst)
			hybrid, _ := NewHybrid(net).Route(ctx, src, dst)

			if dfs.Found != bfs.Found || hybrid.Found != bfs.Found {
				return false
			}
			if !bfs.Found {
				return true
			}
			return hybrid.Hops() >= bfs.Hops() && dfs.Hops() >= bfs.Hops() &&
				CheckPath(net, src, dst, dfs.Path) == nil &&
				CheckPath(net, src, dst, hybrid.Path) == nil
		},
		params...,
	))

	properties.Property("hybrid falls back only when greedy stalls", prop.ForAll(
		func(n, k, r, h int, seed uint64) bool {
			net, src, dst, ok := instance(n, k, r, h, seed)
			if !ok || src == dst || !net.Index.Connected(src, dst) {
				return true
			}
			router := &hybridRouter{net: net}
			expanded := 0
			walk, err := router.greedy(ctx, src, dst, &expanded)
			if err != nil {
				return false
			}
			res, _ := router.Route(ctx, src, dst)
			reached := walk[len(walk)-1] == dst
			return res.UsedFallback == !reached
		},
		params...,
	))

	properties.Property("greedy walk never revisits a node", prop.ForAll(
		func(n, k, r, h int, seed uint64) bool {
			net, src, dst, ok := instance(n, k, r, h, seed)
			if !ok {
				return true
			}
			expanded := 0
			walk, _ := (&hybridRouter{net: net}).greedy(ctx, src, dst, &expanded)
			seen := make(map[topology.NodeID]bool, len(walk))
			for _, id := range walk {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return true
		},
		params...,
	))

	properties.TestingRun(t)
}
