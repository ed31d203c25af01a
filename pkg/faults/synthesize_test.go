package faults

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/dd0wney/ftroute/pkg/topology"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func mustTopology(t *testing.T, n, k int) *topology.Topology {
	t.Helper()
	topo, err := topology.New(n, k)
	if err != nil {
		t.Fatalf("topology.New(%d, %d) failed: %v", n, k, err)
	}
	return topo
}

func TestSynthesize_InvalidOptions(t *testing.T) {
	topo := mustTopology(t, 2, 4)
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"negative branches", Options{Branches: -1}, ErrInvalidBranches},
		{"negative core size", Options{Branches: 2, CoreSize: -1}, ErrInvalidCoreSize},
		{"negative budget", Options{Branches: 2, RetryBudget: -3}, ErrInvalidRetryBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Synthesize(topo, tt.opts, newRand(1)); !errors.Is(err, tt.want) {
				t.Errorf("Synthesize error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Synthesize(topo, Options{Branches: 2}, nil); !errors.Is(err, ErrNilRand) {
		t.Errorf("Synthesize(nil rng) error = %v, want ErrNilRand", err)
	}
}

func TestSynthesize_NoBranches(t *testing.T) {
	topo := mustTopology(t, 1, 4)
	for _, r := range []int{0, 1} {
		res, err := Synthesize(topo, Options{Branches: r}, newRand(7))
		if err != nil {
			t.Fatalf("Synthesize(r=%d) failed: %v", r, err)
		}
		if res.Labels.FaultyCount() != 0 {
			t.Errorf("r=%d produced %d faulty nodes, want 0", r, res.Labels.FaultyCount())
		}
		if res.Requested != 0 || res.Warning != nil {
			t.Errorf("r=%d: Requested=%d Warning=%v", r, res.Requested, res.Warning)
		}
	}
}

func TestSynthesize_SingleBranchIsolatesCore(t *testing.T) {
	topo := mustTopology(t, 4, 4)

	for _, h := range []int{0, 1, 3} {
		res, err := Synthesize(topo, Options{Branches: 2, CoreSize: h}, newRand(42))
		if err != nil {
			t.Fatalf("Synthesize failed: %v", err)
		}
		if res.Realized != 1 || len(res.Cores) != 1 {
			t.Fatalf("h=%d: realized %d branches, want 1", h, res.Realized)
		}

		core := res.Cores[0]
		if len(core) != h+1 {
			t.Errorf("h=%d: core has %d nodes, want %d", h, len(core), h+1)
		}
		for _, id := range core {
			if !res.Labels.IsFaultFree(id) {
				t.Errorf("core node %v is faulty", topo.Decode(id))
			}
			for _, v := range topo.Neighbors(id, nil) {
				if !slices.Contains(core, v) && res.Labels.IsFaultFree(v) {
					t.Errorf("boundary node %v of core is fault-free", topo.Decode(v))
				}
			}
		}
	}
}

func TestSynthesize_CoreIsConnected(t *testing.T) {
	topo := mustTopology(t, 3, 5)
	res, err := Synthesize(topo, Options{Branches: 4, CoreSize: 4}, newRand(3))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	for _, core := range res.Cores {
		reached := map[topology.NodeID]bool{core[0]: true}
		queue := []topology.NodeID{core[0]}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, v := range topo.Neighbors(cur, nil) {
				if slices.Contains(core, v) && !reached[v] {
					reached[v] = true
					queue = append(queue, v)
				}
			}
		}
		if len(reached) != len(core) {
			t.Errorf("core %v is not connected", core)
		}
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	topo := mustTopology(t, 4, 4)
	opts := Options{Branches: 4, CoreSize: 1}

	a, err := Synthesize(topo, opts, newRand(99))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	b, err := Synthesize(topo, opts, newRand(99))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !slices.Equal(a.Labels.Faulty(), b.Labels.Faulty()) {
		t.Error("same seed produced different fault patterns")
	}
	if a.Realized != b.Realized {
		t.Errorf("realized %d vs %d branches for the same seed", a.Realized, b.Realized)
	}
}

func TestSynthesize_Shortfall(t *testing.T) {
	// A 4-node ring fits two single-node cores: the first core's neighbors go
	// faulty and the opposite node becomes the second core. Nothing is left
	// for the remaining three branches.
	topo := mustTopology(t, 1, 4)
	res, err := Synthesize(topo, Options{Branches: 6, CoreSize: 0}, newRand(5))
	if err != nil {
		t.Fatalf("Synthesize returned error for shortfall: %v", err)
	}
	if res.Requested != 5 {
		t.Errorf("Requested = %d, want 5", res.Requested)
	}
	if res.Realized >= res.Requested {
		t.Fatalf("Realized = %d, expected a shortfall", res.Realized)
	}
	if !errors.Is(res.Warning, ErrBranchShortfall) {
		t.Errorf("Warning = %v, want ErrBranchShortfall", res.Warning)
	}
}

func TestSynthesize_CoreLargerThanNetwork(t *testing.T) {
	topo := mustTopology(t, 1, 3)
	res, err := Synthesize(topo, Options{Branches: 2, CoreSize: 5}, newRand(1))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.Realized != 0 || res.Attempts != 0 {
		t.Errorf("Realized=%d Attempts=%d, want 0 and 0", res.Realized, res.Attempts)
	}
	if res.Labels.FaultyCount() != 0 {
		t.Errorf("FaultyCount = %d, want 0", res.Labels.FaultyCount())
	}
}

func TestGrowCore_DoesNotTouchUsed(t *testing.T) {
	topo := mustTopology(t, 2, 4)
	labels := NewLabeling(topo)
	used := make([]bool, topo.NodeCount())
	used[5] = true
	before := slices.Clone(used)

	core, ok := GrowCore(topo, labels, used, 0, 6)
	if !ok {
		t.Fatal("GrowCore failed on an open network")
	}
	if len(core) != 6 {
		t.Errorf("core size = %d, want 6", len(core))
	}
	if slices.Contains(core, topology.NodeID(5)) {
		t.Error("core contains a used node")
	}
	if !slices.Equal(before, used) {
		t.Error("GrowCore modified the used set")
	}
}

func TestGrowCore_Stalls(t *testing.T) {
	topo := mustTopology(t, 1, 5)
	labels := NewLabeling(topo)
	labels.markFaulty(1)
	labels.markFaulty(4)
	used := make([]bool, topo.NodeCount())

	if _, ok := GrowCore(topo, labels, used, 0, 2); ok {
		t.Error("GrowCore succeeded although the seed has no fault-free neighbor")
	}
	if core, ok := GrowCore(topo, labels, used, 2, 2); !ok || len(core) != 2 {
		t.Errorf("GrowCore(2) = %v, %v; want a 2-node core", core, ok)
	}
}

func TestLabeling(t *testing.T) {
	topo := mustTopology(t, 1, 6)
	labels := NewLabeling(topo)
	labels.markFaulty(2)
	labels.markFaulty(2)

	if labels.FaultyCount() != 1 || labels.FaultFreeCount() != 5 {
		t.Errorf("counts = %d/%d, want 1/5", labels.FaultyCount(), labels.FaultFreeCount())
	}
	if labels.State(2) != Faulty || labels.State(3) != FaultFree {
		t.Error("unexpected node states")
	}
	if labels.State(100) != Faulty || labels.IsFaultFree(100) {
		t.Error("unknown nodes must not be fault-free")
	}
	if FaultFree.String() != "fault-free" || Faulty.String() != "faulty" {
		t.Error("unexpected State strings")
	}
}
