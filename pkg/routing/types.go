// Package routing finds fault-free paths between nodes of a labelled
// augmented k-ary n-cube.
//
// Every algorithm implements Router. The algorithm bodies never read a clock;
// timing, tracing and metrics are layered on by the decorators in this
// package, and New composes them.
package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/ftroute/pkg/connectivity"
	"github.com/dd0wney/ftroute/pkg/faults"
	"github.com/dd0wney/ftroute/pkg/topology"
)

// Algorithm names a routing strategy. The string values appear in records
// and metric labels.
type Algorithm string

const (
	DFS              Algorithm = "dfs"
	BFS              Algorithm = "bfs"
	BidirectionalBFS Algorithm = "bidirectional-bfs"
	AStar            Algorithm = "astar"
	Hybrid           Algorithm = "hybrid"
)

// Algorithms lists every supported algorithm in record column order.
func Algorithms() []Algorithm {
	return []Algorithm{DFS, BFS, BidirectionalBFS, AStar, Hybrid}
}

// ParseAlgorithm maps a name to its Algorithm. "bidirectional" and "a*" are
// accepted as aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "dfs":
		return DFS, nil
	case "bfs":
		return BFS, nil
	case "bidirectional-bfs", "bidirectional":
		return BidirectionalBFS, nil
	case "astar", "a*":
		return AStar, nil
	case "hybrid":
		return Hybrid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Network is the read-only view routers search. Index is only required by
// the hybrid router.
type Network struct {
	Topology *topology.Topology
	Labels   *faults.Labeling
	Index    *connectivity.Index
}

// Result is the outcome of one route query.
type Result struct {
	Algorithm Algorithm
	Found     bool
	// Path runs from source to destination inclusive. Empty unless Found.
	Path    []topology.NodeID
	Elapsed time.Duration
	// UsedFallback is set by the hybrid router when the greedy phase stalled
	// and breadth-first search completed the path.
	UsedFallback bool
	// Expanded counts nodes taken off a frontier.
	Expanded int
	// ShortCircuit is set when a faulty endpoint or a failed connectivity
	// check answered the query without a search.
	ShortCircuit bool
}

// Hops returns the number of edges on the path, or -1 when nothing was found.
func (r Result) Hops() int {
	if !r.Found {
		return -1
	}
	return len(r.Path) - 1
}

// Length returns the number of nodes on the path, or -1 when nothing was found.
func (r Result) Length() int {
	if !r.Found {
		return -1
	}
	return len(r.Path)
}

// Router answers route queries. A missing path is reported as Found=false;
// errors are reserved for unknown nodes and context cancellation.
type Router interface {
	Algorithm() Algorithm
	Route(ctx context.Context, src, dst topology.NodeID) (Result, error)
}

// checkInterval is how many expansions pass between context checks.
const checkInterval = 256

func checkContext(ctx context.Context, expanded int) error {
	if expanded%checkInterval != 0 {
		return nil
	}
	return ctx.Err()
}

// begin handles the cases every algorithm shares. When done is true, res is
// the final answer.
func begin(net Network, alg Algorithm, src, dst topology.NodeID) (res Result, done bool, err error) {
	res = Result{Algorithm: alg}
	for _, id := range [...]topology.NodeID{src, dst} {
		if !net.Topology.Contains(id) {
			return res, true, fmt.Errorf("%w: %d", topology.ErrUnknownNode, id)
		}
	}
	if !net.Labels.IsFaultFree(src) || !net.Labels.IsFaultFree(dst) {
		res.ShortCircuit = true
		return res, true, nil
	}
	if src == dst {
		res.Found = true
		res.Path = []topology.NodeID{src}
		return res, true, nil
	}
	return res, false, nil
}

// walkBack follows parent links from node to the root and returns the path
// root first.
func walkBack(parent map[topology.NodeID]topology.NodeID, node, root topology.NodeID) []topology.NodeID {
	path := []topology.NodeID{node}
	for node != root {
		node = parent[node]
		path = append(path, node)
	}
	reverse(path)
	return path
}

func reverse(path []topology.NodeID) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

// CheckPath verifies that path joins src to dst over fault-free nodes and
// existing edges.
func CheckPath(net Network, src, dst topology.NodeID, path []topology.NodeID) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if path[0] != src || path[len(path)-1] != dst {
		return fmt.Errorf("%w: runs %d..%d, want %d..%d", ErrInvalidPath, path[0], path[len(path)-1], src, dst)
	}
	buf := make([]topology.NodeID, 0, net.Topology.Degree())
	for i, id := range path {
		if !net.Labels.IsFaultFree(id) {
			return fmt.Errorf("%w: node %d at position %d is not fault-free", ErrInvalidPath, id, i)
		}
		if i == 0 {
			continue
		}
		buf = net.Topology.Neighbors(path[i-1], buf[:0])
		adjacent := false
		for _, v := range buf {
			if v == id {
				adjacent = true
				break
			}
		}
		if !adjacent {
			return fmt.Errorf("%w: no edge %d-%d", ErrInvalidPath, path[i-1], id)
		}
	}
	return nil
}
