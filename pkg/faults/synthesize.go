// Package faults synthesizes partitioned fault patterns on augmented k-ary
// n-cubes.
//
// A pattern is made of r-1 branches. Each branch is a connected core of h+1
// fault-free nodes whose whole neighborhood is marked faulty, cutting the core
// off from the rest of the network.
package faults

import (
	"fmt"
	"math/rand/v2"

	"github.com/dd0wney/ftroute/pkg/topology"
)

// DefaultRetryBudget is the number of seeds tried per branch before the branch
// is given up.
const DefaultRetryBudget = 16

// Options configures Synthesize.
type Options struct {
	// Branches is r. The synthesizer attempts r-1 branches; r <= 1 yields a
	// fault-free network.
	Branches int
	// CoreSize is h. Every core holds exactly h+1 nodes.
	CoreSize int
	// RetryBudget bounds the seeds tried per branch. Zero means DefaultRetryBudget.
	RetryBudget int
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Branches < 0 {
		return fmt.Errorf("%w: r=%d", ErrInvalidBranches, o.Branches)
	}
	if o.CoreSize < 0 {
		return fmt.Errorf("%w: h=%d", ErrInvalidCoreSize, o.CoreSize)
	}
	if o.RetryBudget < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetryBudget, o.RetryBudget)
	}
	return nil
}

// Result is the outcome of a synthesis run.
type Result struct {
	Labels *Labeling
	// Requested is max(r-1, 0).
	Requested int
	// Realized counts the branches actually cut off.
	Realized int
	// Cores lists the node set of every realized branch.
	Cores [][]topology.NodeID
	// Attempts counts core growth attempts across all branches.
	Attempts int
	// Warning wraps ErrBranchShortfall when Realized < Requested.
	Warning error
}

// Synthesize labels the nodes of topo. All randomness comes from rng, so equal
// inputs and equal rng state give equal labelings.
func Synthesize(topo *topology.Topology, opts Options, rng *rand.Rand) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNilRand
	}
	budget := opts.RetryBudget
	if budget == 0 {
		budget = DefaultRetryBudget
	}

	labels := NewLabeling(topo)
	res := &Result{Labels: labels}
	if opts.Branches > 1 {
		res.Requested = opts.Branches - 1
	}
	size := opts.CoreSize + 1

	used := make([]bool, topo.NodeCount())
	for b := 0; b < res.Requested; b++ {
		available := availableSeeds(labels, used)
		if len(available) < size {
			break
		}

		var core []topology.NodeID
		for attempt := 0; attempt < budget && len(available) > 0; attempt++ {
			i := rng.IntN(len(available))
			seed := available[i]
			available[i] = available[len(available)-1]
			available = available[:len(available)-1]

			res.Attempts++
			if grown, ok := GrowCore(topo, labels, used, seed, size); ok {
				core = grown
				break
			}
		}
		if core == nil {
			continue
		}

		for _, id := range core {
			used[id] = true
		}
		isolate(topo, labels, core)
		res.Cores = append(res.Cores, core)
		res.Realized++
	}

	if res.Realized < res.Requested {
		res.Warning = fmt.Errorf("%w: realized %d of %d branches", ErrBranchShortfall, res.Realized, res.Requested)
	}
	return res, nil
}

// availableSeeds lists fault-free nodes outside every core, in NodeID order.
func availableSeeds(labels *Labeling, used []bool) []topology.NodeID {
	out := make([]topology.NodeID, 0, labels.FaultFreeCount())
	for i, s := range labels.states {
		if s == FaultFree && !used[i] {
			out = append(out, topology.NodeID(i))
		}
	}
	return out
}

// GrowCore grows a connected core of exactly size nodes from seed by
// breadth-first expansion over fault-free nodes not marked in used. It neither
// modifies used nor labels; a failed attempt leaves nothing to roll back.
func GrowCore(topo *topology.Topology, labels *Labeling, used []bool, seed topology.NodeID, size int) ([]topology.NodeID, bool) {
	if !labels.IsFaultFree(seed) || used[seed] {
		return nil, false
	}

	core := make([]topology.NodeID, 0, size)
	queued := map[topology.NodeID]bool{seed: true}
	queue := []topology.NodeID{seed}
	buf := make([]topology.NodeID, 0, topo.Degree())

	for head := 0; head < len(queue) && len(core) < size; head++ {
		cur := queue[head]
		core = append(core, cur)

		buf = topo.Neighbors(cur, buf[:0])
		for _, v := range buf {
			if queued[v] || used[v] || !labels.IsFaultFree(v) {
				continue
			}
			queued[v] = true
			queue = append(queue, v)
		}
	}

	if len(core) < size {
		return nil, false
	}
	return core, true
}

// isolate marks every non-core neighbor of the core faulty.
func isolate(topo *topology.Topology, labels *Labeling, core []topology.NodeID) {
	inCore := make(map[topology.NodeID]bool, len(core))
	for _, id := range core {
		inCore[id] = true
	}

	buf := make([]topology.NodeID, 0, topo.Degree())
	for _, id := range core {
		buf = topo.Neighbors(id, buf[:0])
		for _, v := range buf {
			if !inCore[v] {
				labels.markFaulty(v)
			}
		}
	}
}
