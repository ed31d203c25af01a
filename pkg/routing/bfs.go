package routing

import (
	"context"

	"github.com/dd0wney/ftroute/pkg/topology"
)

type bfsRouter struct{ net Network }

// NewBFS returns a breadth-first router. Paths are shortest in edge count.
func NewBFS(net Network) Router { return &bfsRouter{net: net} }

func (r *bfsRouter) Algorithm() Algorithm { return BFS }

func (r *bfsRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, done, err := begin(r.net, BFS, src, dst)
	if done || err != nil {
		return res, err
	}
	path, expanded, err := bfsPath(ctx, r.net, src, dst)
	res.Expanded = expanded
	if err != nil || path == nil {
		return res, err
	}
	res.Found = true
	res.Path = path
	return res, nil
}

// bfsPath searches level by level from src over fault-free nodes and stops as
// soon as dst is discovered. It returns nil when dst is unreachable. Both
// endpoints must already be known fault-free and distinct.
func bfsPath(ctx context.Context, net Network, src, dst topology.NodeID) ([]topology.NodeID, int, error) {
	topo, labels := net.Topology, net.Labels
	parent := map[topology.NodeID]topology.NodeID{src: src}
	queue := []topology.NodeID{src}
	buf := make([]topology.NodeID, 0, topo.Degree())
	expanded := 0

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		expanded++
		if err := checkContext(ctx, expanded); err != nil {
			return nil, expanded, err
		}

		buf = topo.Neighbors(cur, buf[:0])
		for _, v := range buf {
			if _, seen := parent[v]; seen || !labels.IsFaultFree(v) {
				continue
			}
			parent[v] = cur
			if v == dst {
				return walkBack(parent, dst, src), expanded, nil
			}
			queue = append(queue, v)
		}
	}
	return nil, expanded, nil
}
