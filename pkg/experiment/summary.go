package experiment

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dd0wney/ftroute/pkg/routing"
)

// AlgorithmSummary aggregates one router over a run.
type AlgorithmSummary struct {
	Algorithm routing.Algorithm
	Trials    int
	Found     int
	TimedOut  int
	// MeanSeconds averages over all trials.
	MeanSeconds float64
	// MeanPathLength averages node counts over found paths only.
	MeanPathLength float64
	MeanExpanded   float64
}

// FoundRatio is Found/Trials, or 0 for an empty run.
func (s AlgorithmSummary) FoundRatio() float64 {
	if s.Trials == 0 {
		return 0
	}
	return float64(s.Found) / float64(s.Trials)
}

// Summary aggregates a run.
type Summary struct {
	Trials      int
	UFConnected int
	Algorithms  []AlgorithmSummary
	// GreedyOnly and FallbackAssisted split the hybrid router's successes.
	GreedyOnly       int
	FallbackAssisted int
}

// Summarize aggregates records over algs.
func Summarize(records []Record, algs []routing.Algorithm) Summary {
	s := Summary{
		Trials:     len(records),
		Algorithms: make([]AlgorithmSummary, len(algs)),
	}
	for i, alg := range algs {
		s.Algorithms[i].Algorithm = alg
	}

	for _, rec := range records {
		if rec.UFConnected {
			s.UFConnected++
		}
		for i, alg := range algs {
			o, ok := rec.Outcome(alg)
			if !ok {
				continue
			}
			a := &s.Algorithms[i]
			a.Trials++
			a.MeanSeconds += o.Seconds
			a.MeanExpanded += float64(o.Expanded)
			if o.TimedOut {
				a.TimedOut++
			}
			if !o.Connected {
				continue
			}
			a.Found++
			a.MeanPathLength += float64(o.PathLength)
			if alg == routing.Hybrid {
				if o.UsedFallback {
					s.FallbackAssisted++
				} else {
					s.GreedyOnly++
				}
			}
		}
	}

	for i := range s.Algorithms {
		a := &s.Algorithms[i]
		if a.Trials > 0 {
			a.MeanSeconds /= float64(a.Trials)
			a.MeanExpanded /= float64(a.Trials)
		}
		if a.Found > 0 {
			a.MeanPathLength /= float64(a.Found)
		}
	}
	return s
}

// GreedyOnlyRatio is the share of hybrid successes that needed no fallback.
func (s Summary) GreedyOnlyRatio() float64 {
	total := s.GreedyOnly + s.FallbackAssisted
	if total == 0 {
		return 0
	}
	return float64(s.GreedyOnly) / float64(total)
}

// Print writes s as an aligned table.
func (s Summary) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "trials: %d\tuf connected: %d\n", s.Trials, s.UFConnected)
	fmt.Fprintln(tw, "algorithm\tfound\tratio\tmean time (s)\tmean length\tmean expanded\ttimed out")
	for _, a := range s.Algorithms {
		fmt.Fprintf(tw, "%s\t%d/%d\t%.3f\t%.6f\t%.2f\t%.1f\t%d\n",
			a.Algorithm, a.Found, a.Trials, a.FoundRatio(), a.MeanSeconds, a.MeanPathLength, a.MeanExpanded, a.TimedOut)
	}
	if s.GreedyOnly+s.FallbackAssisted > 0 {
		fmt.Fprintf(tw, "hybrid greedy-only: %d\tbfs-assisted: %d\tratio: %.3f\n",
			s.GreedyOnly, s.FallbackAssisted, s.GreedyOnlyRatio())
	}
	return tw.Flush()
}
