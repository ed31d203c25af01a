package routing

import (
	"container/heap"
	"context"

	"github.com/dd0wney/ftroute/pkg/topology"
)

// Heuristic estimates the number of edges between u and v.
type Heuristic func(topo *topology.Topology, u, v topology.NodeID) int

// ToroidalBound is the larger of the biggest per-dimension toroidal distance
// and the toroidal sum spread over n dimensions. One edge moves each
// coordinate by at most one and at most n coordinates in total, so the bound
// never overestimates and A* with it returns shortest paths.
func ToroidalBound(topo *topology.Topology, u, v topology.NodeID) int {
	n := topo.Dimension()
	maxDim, sum := 0, 0
	for i := 0; i < n; i++ {
		d := topo.ToroidalDistance(topo.Coord(u, i), topo.Coord(v, i))
		sum += d
		if d > maxDim {
			maxDim = d
		}
	}
	if spread := (sum + n - 1) / n; spread > maxDim {
		return spread
	}
	return maxDim
}

// ToroidalSum adds the toroidal distance of every dimension. Cascading edges
// can close several dimensions in one hop, so this overestimates and the
// paths it yields are not always shortest.
func ToroidalSum(topo *topology.Topology, u, v topology.NodeID) int {
	return topo.Distance(u, v)
}

type astarRouter struct {
	net       Network
	heuristic Heuristic
}

// NewAStar returns an A* router. A nil heuristic means ToroidalBound.
func NewAStar(net Network, h Heuristic) Router {
	if h == nil {
		h = ToroidalBound
	}
	return &astarRouter{net: net, heuristic: h}
}

func (r *astarRouter) Algorithm() Algorithm { return AStar }

type openEntry struct {
	node topology.NodeID
	g, h int
}

// openSet is a min-heap ordered by f = g+h, then h, then NodeID, which keeps
// expansion order deterministic.
type openSet []openEntry

func (s openSet) Len() int { return len(s) }
func (s openSet) Less(i, j int) bool {
	fi, fj := s[i].g+s[i].h, s[j].g+s[j].h
	if fi != fj {
		return fi < fj
	}
	if s[i].h != s[j].h {
		return s[i].h < s[j].h
	}
	return s[i].node < s[j].node
}
func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s *openSet) Push(x any)   { *s = append(*s, x.(openEntry)) }
func (s *openSet) Pop() any {
	old := *s
	e := old[len(old)-1]
	*s = old[:len(old)-1]
	return e
}

func (r *astarRouter) Route(ctx context.Context, src, dst topology.NodeID) (Result, error) {
	res, done, err := begin(r.net, AStar, src, dst)
	if done || err != nil {
		return res, err
	}

	topo, labels := r.net.Topology, r.net.Labels
	g := map[topology.NodeID]int{src: 0}
	parent := map[topology.NodeID]topology.NodeID{src: src}
	closed := make(map[topology.NodeID]bool)
	open := &openSet{{node: src, g: 0, h: r.heuristic(topo, src, dst)}}
	buf := make([]topology.NodeID, 0, topo.Degree())

	for open.Len() > 0 {
		cur := heap.Pop(open).(openEntry)
		// Entries superseded by a cheaper push are skipped.
		if closed[cur.node] || cur.g > g[cur.node] {
			continue
		}
		closed[cur.node] = true

		res.Expanded++
		if err := checkContext(ctx, res.Expanded); err != nil {
			return res, err
		}

		if cur.node == dst {
			res.Found = true
			res.Path = walkBack(parent, dst, src)
			return res, nil
		}

		buf = topo.Neighbors(cur.node, buf[:0])
		for _, v := range buf {
			if closed[v] || !labels.IsFaultFree(v) {
				continue
			}
			cost := cur.g + 1
			if old, seen := g[v]; seen && old <= cost {
				continue
			}
			g[v] = cost
			parent[v] = cur.node
			heap.Push(open, openEntry{node: v, g: cost, h: r.heuristic(topo, v, dst)})
		}
	}
	return res, nil
}
