// Package connectivity partitions the fault-free nodes of a labelled cube into
// connected components with a union-find index.
package connectivity

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/dd0wney/ftroute/pkg/faults"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// Component is one connected set of fault-free nodes.
type Component struct {
	Root  topology.NodeID
	Nodes []topology.NodeID
}

// Size returns the number of nodes in the component.
func (c Component) Size() int { return len(c.Nodes) }

// Index answers same-component queries over fault-free nodes.
//
// Build flattens every set so each node points straight at its root; after
// that no method writes, and an Index may be queried from many goroutines.
type Index struct {
	parent     []topology.NodeID
	rank       []uint8
	present    []bool
	size       []int // per root
	components int
	unions     int
	buildTime  time.Duration
}

// Build creates the index for topo under labels.
func Build(topo *topology.Topology, labels *faults.Labeling) *Index {
	start := time.Now()

	count := topo.NodeCount()
	idx := &Index{
		parent:  make([]topology.NodeID, count),
		rank:    make([]uint8, count),
		present: make([]bool, count),
		size:    make([]int, count),
	}
	for i := 0; i < count; i++ {
		id := topology.NodeID(i)
		idx.parent[i] = id
		if labels.IsFaultFree(id) {
			idx.present[i] = true
			idx.components++
		}
	}

	topo.ForEachEdge(func(e topology.Edge) {
		if idx.present[e.U] && idx.present[e.V] {
			idx.union(e.U, e.V)
		}
	})

	for i := 0; i < count; i++ {
		if !idx.present[i] {
			continue
		}
		root := idx.find(topology.NodeID(i))
		idx.parent[i] = root
		idx.size[root]++
	}
	idx.rank = nil

	idx.buildTime = time.Since(start)
	return idx
}

// find returns the root of id, compressing the path on the way. Build only.
func (idx *Index) find(id topology.NodeID) topology.NodeID {
	root := id
	for idx.parent[root] != root {
		root = idx.parent[root]
	}
	for idx.parent[id] != root {
		next := idx.parent[id]
		idx.parent[id] = root
		id = next
	}
	return root
}

// union merges the sets of a and b by rank. Build only.
func (idx *Index) union(a, b topology.NodeID) {
	ra, rb := idx.find(a), idx.find(b)
	if ra == rb {
		return
	}
	switch {
	case idx.rank[ra] > idx.rank[rb]:
		idx.parent[rb] = ra
	case idx.rank[ra] < idx.rank[rb]:
		idx.parent[ra] = rb
	default:
		idx.parent[rb] = ra
		idx.rank[ra]++
	}
	idx.components--
	idx.unions++
}

func (idx *Index) known(id topology.NodeID) bool {
	return uint64(id) < uint64(len(idx.present)) && idx.present[id]
}

// Find returns the representative of id. ok is false for faulty or unknown
// nodes.
func (idx *Index) Find(id topology.NodeID) (root topology.NodeID, ok bool) {
	if !idx.known(id) {
		return 0, false
	}
	return idx.parent[id], true
}

// Connected reports whether a fault-free path joins u and v. It is false when
// either node is faulty or unknown.
func (idx *Index) Connected(u, v topology.NodeID) bool {
	if !idx.known(u) || !idx.known(v) {
		return false
	}
	return idx.parent[u] == idx.parent[v]
}

// ComponentCount returns the number of components.
func (idx *Index) ComponentCount() int { return idx.components }

// ComponentSize returns the size of the component holding id, or 0.
func (idx *Index) ComponentSize(id topology.NodeID) int {
	if !idx.known(id) {
		return 0
	}
	return idx.size[idx.parent[id]]
}

// Unions returns the number of successful merges performed during Build.
func (idx *Index) Unions() int { return idx.unions }

// BuildDuration returns how long Build took.
func (idx *Index) BuildDuration() time.Duration { return idx.buildTime }

// Components returns the full partition, root to members in NodeID order.
func (idx *Index) Components() map[topology.NodeID][]topology.NodeID {
	out := make(map[topology.NodeID][]topology.NodeID, idx.components)
	for i, ok := range idx.present {
		if !ok {
			continue
		}
		root := idx.parent[i]
		if out[root] == nil {
			out[root] = make([]topology.NodeID, 0, idx.size[root])
		}
		out[root] = append(out[root], topology.NodeID(i))
	}
	return out
}

// SortedComponents returns the partition ordered by size, largest first, ties
// broken by root.
func (idx *Index) SortedComponents() []Component {
	parts := idx.Components()
	out := make([]Component, 0, len(parts))
	for root, nodes := range parts {
		out = append(out, Component{Root: root, Nodes: nodes})
	}
	slices.SortFunc(out, func(a, b Component) int {
		if a.Size() != b.Size() {
			return b.Size() - a.Size()
		}
		switch {
		case a.Root < b.Root:
			return -1
		case a.Root > b.Root:
			return 1
		}
		return 0
	})
	return out
}
