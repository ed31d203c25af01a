package cube

import (
	"math/rand/v2"

	"github.com/dd0wney/ftroute/pkg/topology"
)

// largestSample bounds how many members PickFromLargestComponent compares.
const largestSample = 10

// PickFromDifferentComponents draws the source uniformly from the largest
// component and the sink uniformly from a uniformly chosen other component.
func (inst *Instance) PickFromDifferentComponents(rng *rand.Rand) (src, dst topology.NodeID, err error) {
	parts := inst.Components()
	if len(parts) < 2 {
		return 0, 0, ErrTooFewComponents
	}
	largest := parts[0].Nodes
	other := parts[1+rng.IntN(len(parts)-1)].Nodes
	return largest[rng.IntN(len(largest))], other[rng.IntN(len(other))], nil
}

// PickFromLargestComponent samples up to ten distinct members of the largest
// component and returns the pair whose coordinates differ most in summed
// absolute value. Ties go to the first pair in sample order.
func (inst *Instance) PickFromLargestComponent(rng *rand.Rand) (src, dst topology.NodeID, err error) {
	parts := inst.Components()
	if len(parts) == 0 || parts[0].Size() < 2 {
		return 0, 0, ErrComponentTooSmall
	}
	candidates := sampleDistinct(rng, parts[0].Nodes, min(largestSample, parts[0].Size()))

	coords := make([]topology.Coords, len(candidates))
	for i, id := range candidates {
		coords[i] = inst.Topology.Decode(id)
	}

	best := -1
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			if d := absDiff(coords[i], coords[j]); d > best {
				best = d
				src, dst = candidates[i], candidates[j]
			}
		}
	}
	return src, dst, nil
}

// PickFromTwoLargestComponents draws the source from the largest component
// and the sink from the second largest. A connected network falls back to two
// distinct members of its single component.
func (inst *Instance) PickFromTwoLargestComponents(rng *rand.Rand) (src, dst topology.NodeID, err error) {
	parts := inst.Components()
	switch {
	case len(parts) >= 2:
		a, b := parts[0].Nodes, parts[1].Nodes
		return a[rng.IntN(len(a))], b[rng.IntN(len(b))], nil
	case len(parts) == 1 && parts[0].Size() >= 2:
		pair := sampleDistinct(rng, parts[0].Nodes, 2)
		return pair[0], pair[1], nil
	}
	return 0, 0, ErrComponentTooSmall
}

// sampleDistinct picks k members of nodes without replacement, in draw order.
func sampleDistinct(rng *rand.Rand, nodes []topology.NodeID, k int) []topology.NodeID {
	pool := make([]topology.NodeID, len(nodes))
	copy(pool, nodes)
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// absDiff sums |a_i - b_i| without wraparound.
func absDiff(a, b topology.Coords) int {
	total := 0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}
