package routing

import (
	"context"

	"github.com/dd0wney/ftroute/pkg/topology"
)

type hybridRouter struct{ net Network }

// NewHybrid returns the greedy-then-BFS router. net.Index must be set; New
// enforces that.
func NewHybrid(net Network) Router { return &hybridRouter{net: net} }

func (r *hybridRouter) Algorithm() Algorithm { return Hybrid }

// Route first asks the connectivity index whether dst is reachable at all.
// It then walks greedily toward dst, one coordinate step at a time, and hands
// over to breadth-first search from wherever the greedy walk stalls.
func (r *hybridRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, done, err := begin(r.net, Hybrid, src, dst)
	if done || err != nil {
		return res, err
	}
	if !r.net.Index.Connected(src, dst) {
		res.ShortCircuit = true
		return res, nil
	}

	path, err := r.greedy(ctx, src, dst, &res.Expanded)
	if err != nil {
		return res, err
	}
	last := path[len(path)-1]
	if last != dst {
		res.UsedFallback = true
		suffix, expanded, err := bfsPath(ctx, r.net, last, dst)
		res.Expanded += expanded
		if err != nil {
			return res, err
		}
		if suffix == nil {
			// Unreachable while the index says connected: the index was
			// built for different labels.
			return res, nil
		}
		path = append(path, suffix[1:]...)
	}

	res.Found = true
	res.Path = path
	return res, nil
}

// greedy extends the path from src until dst is reached or no differing
// dimension offers a fault-free move. Every move shortens the toroidal
// distance of its dimension and leaves higher dimensions alone, so the walk
// cannot revisit a node.
func (r *hybridRouter) greedy(ctx context.Context, src, dst topology.NodeID, expanded *int) ([]topology.NodeID, error) {
	topo, labels := r.net.Topology, r.net.Labels
	n, k := topo.Dimension(), topo.Radix()
	path := []topology.NodeID{src}

	for cur := src; cur != dst; {
		*expanded++
		if err := checkContext(ctx, *expanded); err != nil {
			return nil, err
		}

		next, ok := cur, false
		for i := n - 1; i >= 0 && !ok; i-- {
			c, t := topo.Coord(cur, i), topo.Coord(dst, i)
			if c == t {
				continue
			}
			dir := -1
			if ((t-c)%k+k)%k <= k/2 {
				dir = +1
			}

			single := topo.Step(cur, i, dir)
			singleOK := labels.IsFaultFree(single)
			cascade, cascadeOK := cur, false
			if i >= 1 {
				cascade = topo.Cascade(cur, i, dir)
				cascadeOK = labels.IsFaultFree(cascade)
			}

			switch {
			case singleOK && cascadeOK:
				// Ties go to the cascading move.
				if topo.Distance(cascade, dst) <= topo.Distance(single, dst) {
					next = cascade
				} else {
					next = single
				}
				ok = true
			case cascadeOK:
				next, ok = cascade, true
			case singleOK:
				next, ok = single, true
			}
		}
		if !ok {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path, nil
}
