package routing

import (
	"context"

	"github.com/dd0wney/ftroute/pkg/topology"
)

type bidirectionalRouter struct{ net Network }

// NewBidirectionalBFS returns a router that grows breadth-first frontiers
// from both endpoints, one full level at a time, alternating sides.
func NewBidirectionalBFS(net Network) Router { return &bidirectionalRouter{net: net} }

func (r *bidirectionalRouter) Algorithm() Algorithm { return BidirectionalBFS }

// side is one search direction. depth doubles as the visited set.
type side struct {
	queue  []topology.NodeID
	parent map[topology.NodeID]topology.NodeID
	depth  map[topology.NodeID]int
}

func newSide(root topology.NodeID) *side {
	return &side{
		queue:  []topology.NodeID{root},
		parent: map[topology.NodeID]topology.NodeID{root: root},
		depth:  map[topology.NodeID]int{root: 0},
	}
}

// contact is an edge from the expanding side (from) into a node already
// reached by the other side (to).
type contact struct {
	from, to topology.NodeID
	total    int
	ok       bool
}

func (r *bidirectionalRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, done, err := begin(r.net, BidirectionalBFS, src, dst)
	if done || err != nil {
		return res, err
	}

	forward, backward := newSide(src), newSide(dst)
	buf := make([]topology.NodeID, 0, r.net.Topology.Degree())

	// Either side running dry means the endpoints are in different components.
	for len(forward.queue) > 0 && len(backward.queue) > 0 {
		c, err := r.expandLevel(ctx, forward, backward, &res.Expanded, buf)
		if err != nil {
			return res, err
		}
		if c.ok {
			res.Found = true
			res.Path = joinPaths(c.from, c.to, src, dst, forward, backward)
			return res, nil
		}

		c, err = r.expandLevel(ctx, backward, forward, &res.Expanded, buf)
		if err != nil {
			return res, err
		}
		if c.ok {
			res.Found = true
			res.Path = joinPaths(c.to, c.from, src, dst, forward, backward)
			return res, nil
		}
	}
	return res, nil
}

// expandLevel consumes exactly the current level of s and returns the
// shortest contact with other found on it. The first level that touches the
// other side therefore yields a shortest path.
func (r *bidirectionalRouter) expandLevel(ctx context.Context, s, other *side, expanded *int, buf []topology.NodeID) (contact, error) {
	topo, labels := r.net.Topology, r.net.Labels
	var best contact

	level := s.queue
	s.queue = nil
	for _, cur := range level {
		*expanded++
		if err := checkContext(ctx, *expanded); err != nil {
			return contact{}, err
		}

		buf = topo.Neighbors(cur, buf[:0])
		for _, v := range buf {
			if !labels.IsFaultFree(v) {
				continue
			}
			if d, met := other.depth[v]; met {
				total := s.depth[cur] + 1 + d
				if !best.ok || total < best.total {
					best = contact{from: cur, to: v, total: total, ok: true}
				}
				continue
			}
			if _, seen := s.depth[v]; seen {
				continue
			}
			s.parent[v] = cur
			s.depth[v] = s.depth[cur] + 1
			s.queue = append(s.queue, v)
		}
	}
	return best, nil
}

// joinPaths stitches src..a from the forward tree to b..dst from the
// backward tree, where a-b is an edge.
func joinPaths(a, b, src, dst topology.NodeID, forward, backward *side) []topology.NodeID {
	path := walkBack(forward.parent, a, src)
	path = append(path, b)
	for node := b; node != dst; {
		node = backward.parent[node]
		path = append(path, node)
	}
	return path
}
