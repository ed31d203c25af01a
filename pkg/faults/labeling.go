package faults

import (
	"github.com/dd0wney/ftroute/pkg/topology"
)

// State is the health label of a node.
type State uint8

const (
	// FaultFree nodes take part in routing.
	FaultFree State = iota
	// Faulty nodes and their incident edges are excluded from routing.
	Faulty
)

// String returns the label used in logs and records.
func (s State) String() string {
	switch s {
	case FaultFree:
		return "fault-free"
	case Faulty:
		return "faulty"
	default:
		return "unknown"
	}
}

// Labeling holds one State per node. It is written only during synthesis and
// is read-only afterwards, so it may be shared between goroutines.
type Labeling struct {
	states []State
	faulty int
}

// NewLabeling returns a labeling with every node fault-free.
func NewLabeling(topo *topology.Topology) *Labeling {
	return &Labeling{states: make([]State, topo.NodeCount())}
}

// FromFaulty returns a labeling with exactly the given nodes faulty. It
// replays a known fault pattern; ids outside topo are ignored.
func FromFaulty(topo *topology.Topology, faulty []topology.NodeID) *Labeling {
	l := NewLabeling(topo)
	for _, id := range faulty {
		if topo.Contains(id) {
			l.markFaulty(id)
		}
	}
	return l
}

// markFaulty labels id faulty. Marking twice is a no-op.
func (l *Labeling) markFaulty(id topology.NodeID) {
	if l.states[id] == Faulty {
		return
	}
	l.states[id] = Faulty
	l.faulty++
}

// Len returns the number of labelled nodes.
func (l *Labeling) Len() int { return len(l.states) }

// State returns the label of id. Nodes outside the labeling report Faulty.
func (l *Labeling) State(id topology.NodeID) State {
	if uint64(id) >= uint64(len(l.states)) {
		return Faulty
	}
	return l.states[id]
}

// IsFaultFree reports whether id is a known, fault-free node.
func (l *Labeling) IsFaultFree(id topology.NodeID) bool {
	return uint64(id) < uint64(len(l.states)) && l.states[id] == FaultFree
}

// FaultyCount returns the number of faulty nodes.
func (l *Labeling) FaultyCount() int { return l.faulty }

// FaultFreeCount returns the number of fault-free nodes.
func (l *Labeling) FaultFreeCount() int { return len(l.states) - l.faulty }

// FaultFree lists the fault-free nodes in NodeID order.
func (l *Labeling) FaultFree() []topology.NodeID {
	out := make([]topology.NodeID, 0, l.FaultFreeCount())
	for i, s := range l.states {
		if s == FaultFree {
			out = append(out, topology.NodeID(i))
		}
	}
	return out
}

// Faulty lists the faulty nodes in NodeID order.
func (l *Labeling) Faulty() []topology.NodeID {
	out := make([]topology.NodeID, 0, l.faulty)
	for i, s := range l.states {
		if s == Faulty {
			out = append(out, topology.NodeID(i))
		}
	}
	return out
}
