package routing

import (
	"context"

	"github.com/dd0wney/ftroute/pkg/topology"
)

type dfsRouter struct{ net Network }

// NewDFS returns a depth-first router. Paths are valid but not shortest.
func NewDFS(net Network) Router { return &dfsRouter{net: net} }

func (r *dfsRouter) Algorithm() Algorithm { return DFS }

// frame is a pending visit. parent indexes the arena entry of the node that
// pushed it, or -1 for the source.
type frame struct {
	node   topology.NodeID
	parent int
}

// Route explores neighbors in generator order, the same order a recursive
// search would take, using an explicit stack.
func (r *dfsRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, done, err := begin(r.net, DFS, src, dst)
	if done || err != nil {
		return res, err
	}

	topo, labels := r.net.Topology, r.net.Labels
	visited := make(map[topology.NodeID]bool)
	arena := make([]frame, 0, 64)
	stack := []frame{{node: src, parent: -1}}
	buf := make([]topology.NodeID, 0, topo.Degree())

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[top.node] {
			continue
		}
		visited[top.node] = true
		arena = append(arena, top)
		here := len(arena) - 1

		res.Expanded++
		if err := checkContext(ctx, res.Expanded); err != nil {
			return res, err
		}

		if top.node == dst {
			var path []topology.NodeID
			for i := here; i >= 0; i = arena[i].parent {
				path = append(path, arena[i].node)
			}
			reverse(path)
			res.Found = true
			res.Path = path
			return res, nil
		}

		buf = topo.Neighbors(top.node, buf[:0])
		for i := len(buf) - 1; i >= 0; i-- {
			v := buf[i]
			if !visited[v] && labels.IsFaultFree(v) {
				stack = append(stack, frame{node: v, parent: here})
			}
		}
	}
	return res, nil
}
