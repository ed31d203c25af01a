package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dd0wney/ftroute/pkg/cube"
	"github.com/dd0wney/ftroute/pkg/routing"
	"github.com/dd0wney/ftroute/pkg/topology"
)

type pair struct {
	src, dst topology.NodeID
}

type stats struct {
	found    int
	hops     int
	expanded int
	fallback int
	elapsed  time.Duration
}

func main() {
	n := flag.Int("n", 5, "Dimension n")
	k := flag.Int("k", 6, "Radix k")
	r := flag.Int("r", 4, "Branch count r")
	h := flag.Int("h", 2, "Core size parameter h")
	seed := flag.Uint64("seed", 1, "Seed")
	pairs := flag.Int("pairs", 200, "Source/sink pairs to route")
	mode := flag.String("mode", "largest-branch", "largest-branch, different-branches or two-largest")
	flag.Parse()

	if *pairs < 1 {
		log.Fatalf("-pairs must be at least 1")
	}

	fmt.Printf("ftroute - Routing Benchmark\n")
	fmt.Printf("===========================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Cube: n=%d k=%d (%d nodes)\n", *n, *k, pow(*k, *n))
	fmt.Printf("  Faults: r=%d h=%d seed=%d\n", *r, *h, *seed)
	fmt.Printf("  Pairs: %d (%s)\n\n", *pairs, *mode)

	fmt.Printf("Building instance...\n")
	inst, err := cube.Build(cube.Params{N: *n, K: *k, R: *r, H: *h, Seed: *seed},
		cube.WithRoutingOptions(routing.WithoutTracing()))
	if err != nil {
		log.Fatalf("Failed to build instance: %v", err)
	}
	if inst.Warning != nil {
		fmt.Printf("  Warning: %v\n", inst.Warning)
	}
	fmt.Printf("  Built in %v (union-find %v)\n", inst.BuildDuration, inst.Index.BuildDuration())
	fmt.Printf("  Faulty nodes: %d, components: %d, branches: %d\n\n",
		inst.Labels.FaultyCount(), inst.Index.ComponentCount(), len(inst.Branches))

	rng := cube.NewRand(*seed + 1)
	batch := make([]pair, 0, *pairs)
	for i := 0; i < *pairs; i++ {
		src, dst, err := pick(inst, *mode, rng)
		if err != nil {
			log.Fatalf("Failed to sample endpoints: %v", err)
		}
		batch = append(batch, pair{src, dst})
	}

	ctx := context.Background()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "algorithm\tfound\tmean hops\tmean expanded\tfallbacks\ttotal\tper route\t")
	for _, alg := range routing.Algorithms() {
		router, err := inst.Router(alg)
		if err != nil {
			log.Fatalf("Failed to create %s router: %v", alg, err)
		}

		var s stats
		for _, p := range batch {
			res, err := router.Route(ctx, p.src, p.dst)
			if err != nil {
				log.Fatalf("%s failed: %v", alg, err)
			}
			s.elapsed += res.Elapsed
			s.expanded += res.Expanded
			if res.UsedFallback {
				s.fallback++
			}
			if res.Found {
				s.found++
				s.hops += res.Hops()
			}
		}

		meanHops := 0.0
		if s.found > 0 {
			meanHops = float64(s.hops) / float64(s.found)
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%.2f\t%.1f\t%d\t%v\t%v\t\n",
			alg, s.found, len(batch), meanHops,
			float64(s.expanded)/float64(len(batch)), s.fallback,
			s.elapsed, s.elapsed/time.Duration(len(batch)))
	}
	tw.Flush()

	var ufTotal time.Duration
	for _, p := range batch {
		_, d := inst.TimedConnected(p.src, p.dst)
		ufTotal += d
	}
	fmt.Printf("\nUnion-find query: %v per pair\n", ufTotal/time.Duration(len(batch)))
	fmt.Printf("\nBenchmark complete.\n")
}

func pick(inst *cube.Instance, mode string, rng *rand.Rand) (topology.NodeID, topology.NodeID, error) {
	switch mode {
	case "different-branches":
		return inst.PickFromDifferentComponents(rng)
	case "two-largest":
		return inst.PickFromTwoLargestComponents(rng)
	default:
		return inst.PickFromLargestComponent(rng)
	}
}

func pow(k, n int) int {
	out := 1
	for i := 0; i < n; i++ {
		out *= k
	}
	return out
}
