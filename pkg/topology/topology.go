// Package topology builds augmented k-ary n-cubes.
//
// Nodes are never allocated as objects. A node is addressed by its NodeID, the
// mixed-radix encoding of its coordinate vector with coordinate 0 as the most
// significant digit, so NodeID order is the lexicographic order of coordinates.
package topology

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxNodes bounds k^n so that per-node arrays stay addressable.
const MaxNodes = 1 << 24

// NodeID is the integer encoding of a coordinate vector.
type NodeID uint64

// Coords is a decoded coordinate vector.
type Coords []int

// String renders c as "(0,3,1)".
func (c Coords) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range c {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte(')')
	return b.String()
}

// Topology is an immutable augmented k-ary n-cube.
type Topology struct {
	n       int
	k       int
	size    int
	weights []uint64 // weights[i] = k^(n-1-i)
}

// New creates the augmented k-ary n-cube for dimension n and radix k.
func New(n, k int) (*Topology, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidDimension, n)
	}
	if k < 2 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidRadix, k)
	}

	size := 1
	for i := 0; i < n; i++ {
		if size > MaxNodes/k {
			return nil, fmt.Errorf("%w: %d^%d exceeds %d", ErrTooLarge, k, n, MaxNodes)
		}
		size *= k
	}

	weights := make([]uint64, n)
	w := uint64(1)
	for i := n - 1; i >= 0; i-- {
		weights[i] = w
		w *= uint64(k)
	}

	return &Topology{n: n, k: k, size: size, weights: weights}, nil
}

// Dimension returns n.
func (t *Topology) Dimension() int { return t.n }

// Radix returns k.
func (t *Topology) Radix() int { return t.k }

// NodeCount returns k^n.
func (t *Topology) NodeCount() int { return t.size }

// Contains reports whether id addresses a node of this cube.
func (t *Topology) Contains(id NodeID) bool {
	return id < NodeID(t.size)
}

// Nodes returns every node in lexicographic order.
func (t *Topology) Nodes() []NodeID {
	nodes := make([]NodeID, t.size)
	for i := range nodes {
		nodes[i] = NodeID(i)
	}
	return nodes
}

// Encode converts a coordinate vector to its NodeID.
func (t *Topology) Encode(c Coords) (NodeID, error) {
	if len(c) != t.n {
		return 0, fmt.Errorf("%w: %v has %d coordinates, want %d", ErrUnknownNode, []int(c), len(c), t.n)
	}
	var id uint64
	for i, v := range c {
		if v < 0 || v >= t.k {
			return 0, fmt.Errorf("%w: coordinate %d of %v outside [0,%d)", ErrUnknownNode, i, []int(c), t.k)
		}
		id += uint64(v) * t.weights[i]
	}
	return NodeID(id), nil
}

// Decode converts a NodeID back to coordinates. The id must satisfy Contains.
func (t *Topology) Decode(id NodeID) Coords {
	c := make(Coords, t.n)
	rem := uint64(id)
	for i := t.n - 1; i >= 0; i-- {
		c[i] = int(rem % uint64(t.k))
		rem /= uint64(t.k)
	}
	return c
}

// Coord returns coordinate i of id without decoding the whole vector.
func (t *Topology) Coord(id NodeID, i int) int {
	return int((uint64(id) / t.weights[i]) % uint64(t.k))
}

// shift moves coordinate i of id by dir (±1) modulo k.
func (t *Topology) shift(id NodeID, i, dir int) NodeID {
	w := t.weights[i]
	c := t.Coord(id, i)
	switch {
	case dir > 0 && c == t.k-1:
		return id - NodeID(uint64(t.k-1)*w)
	case dir > 0:
		return id + NodeID(w)
	case c == 0:
		return id + NodeID(uint64(t.k-1)*w)
	default:
		return id - NodeID(w)
	}
}

// Step returns the (i, dir)-neighbor: coordinate i moved by dir modulo k.
func (t *Topology) Step(id NodeID, i, dir int) NodeID {
	return t.shift(id, i, dir)
}

// Cascade returns the (<=i, dir)-neighbor: coordinates 0..i all moved by dir
// modulo k. Cascading edges exist for i in 1..n-1.
func (t *Topology) Cascade(id NodeID, i, dir int) NodeID {
	for j := 0; j <= i; j++ {
		id = t.shift(id, j, dir)
	}
	return id
}

// Degree returns the number of generator slots per node, 4n-2.
func (t *Topology) Degree() int {
	return 4*t.n - 2
}

// Neighbors appends the neighbors of id to buf in generator order: single
// dimensions 0..n-1 with directions -1 then +1, then cascading dimensions
// 1..n-1 with -1 then +1. When k = 2 the -1 and +1 slots hold the same node.
func (t *Topology) Neighbors(id NodeID, buf []NodeID) []NodeID {
	for i := 0; i < t.n; i++ {
		buf = append(buf, t.Step(id, i, -1), t.Step(id, i, +1))
	}
	for i := 1; i < t.n; i++ {
		buf = append(buf, t.Cascade(id, i, -1), t.Cascade(id, i, +1))
	}
	return buf
}

// DistinctNeighbors returns the neighbor set of id without repeated slots.
func (t *Topology) DistinctNeighbors(id NodeID) []NodeID {
	all := t.Neighbors(id, make([]NodeID, 0, t.Degree()))
	out := make([]NodeID, 0, len(all))
	for _, v := range all {
		dup := false
		for _, w := range out {
			if w == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// ToroidalDistance is the wraparound distance between two coordinate values.
func (t *Topology) ToroidalDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if t.k-d < d {
		return t.k - d
	}
	return d
}

// Distance sums the toroidal distance over every dimension.
func (t *Topology) Distance(u, v NodeID) int {
	total := 0
	for i := 0; i < t.n; i++ {
		total += t.ToroidalDistance(t.Coord(u, i), t.Coord(v, i))
	}
	return total
}

// String implements fmt.Stringer.
func (t *Topology) String() string {
	return fmt.Sprintf("AQ(n=%d,k=%d)", t.n, t.k)
}
