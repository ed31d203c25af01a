package topology

import "golang.org/x/exp/slices"

// Edge is an undirected edge in canonical form, U < V.
type Edge struct {
	U, V NodeID
}

// ForEachEdge calls fn once per deduplicated edge, ordered by (U, V).
//
// Every edge is reported from its lower endpoint: for each node u the distinct
// neighbors greater than u are sorted and emitted.
func (t *Topology) ForEachEdge(fn func(Edge)) {
	buf := make([]NodeID, 0, t.Degree())
	for u := NodeID(0); u < NodeID(t.size); u++ {
		buf = t.Neighbors(u, buf[:0])
		upper := buf[:0]
		for _, v := range buf {
			if v > u {
				upper = append(upper, v)
			}
		}
		slices.Sort(upper)
		for _, v := range slices.Compact(upper) {
			fn(Edge{U: u, V: v})
		}
	}
}

// Edges materializes the canonical edge list.
func (t *Topology) Edges() []Edge {
	edges := make([]Edge, 0, t.EdgeCount())
	t.ForEachEdge(func(e Edge) {
		edges = append(edges, e)
	})
	return edges
}

// EdgeCount returns the number of distinct edges, k^n(2n-1), halved when
// k = 2 because +1 and -1 coincide.
func (t *Topology) EdgeCount() int {
	count := t.size * (2*t.n - 1)
	if t.k == 2 {
		count /= 2
	}
	return count
}
