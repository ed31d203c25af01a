package experiment

import (
	"strconv"
	"strings"

	"github.com/dd0wney/ftroute/pkg/routing"
)

// Outcome is one router's answer for a trial.
type Outcome struct {
	Algorithm routing.Algorithm `json:"algorithm"`
	Connected bool              `json:"connected"`
	// PathLength counts nodes on the path, -1 when none was found.
	PathLength   int     `json:"path_length"`
	Seconds      float64 `json:"time"`
	Expanded     int     `json:"expanded"`
	UsedFallback bool    `json:"used_bfs,omitempty"`
	TimedOut     bool    `json:"timed_out,omitempty"`
}

// Record is one trial: a source/sink pair on one instance.
type Record struct {
	ID       string `json:"id"`
	RunID    string `json:"run_id"`
	Instance int    `json:"instance"`
	Trial    int    `json:"trial"`
	N        int    `json:"n"`
	K        int    `json:"k"`
	R        int    `json:"r"`
	H        int    `json:"h"`
	Mode     Mode   `json:"mode"`
	// Branches is the number of isolated cores actually realized.
	Branches        int       `json:"branches"`
	Source          string    `json:"source"`
	Sink            string    `json:"sink"`
	UFBuildTime     float64   `json:"uf_build_time"`
	UFConnected     bool      `json:"uf_connected"`
	UFConnectedTime float64   `json:"uf_connected_time"`
	Outcomes        []Outcome `json:"outcomes"`
}

// Outcome returns the outcome for alg.
func (r Record) Outcome(alg routing.Algorithm) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Algorithm == alg {
			return o, true
		}
	}
	return Outcome{}, false
}

func newOutcome(res routing.Result) Outcome {
	return Outcome{
		Algorithm:    res.Algorithm,
		Connected:    res.Found,
		PathLength:   res.Length(),
		Seconds:      res.Elapsed.Seconds(),
		Expanded:     res.Expanded,
		UsedFallback: res.UsedFallback,
	}
}

// column turns an algorithm name into a CSV column prefix.
func column(alg routing.Algorithm) string {
	return strings.ReplaceAll(string(alg), "-", "_")
}

// Header returns the CSV columns for records routed with algs.
func Header(algs []routing.Algorithm) []string {
	cols := []string{
		"id", "run_id", "instance", "trial", "n", "k", "r", "h", "mode", "branches",
		"source", "sink", "uf_build_time", "uf_connected", "uf_connected_time",
	}
	for _, alg := range algs {
		p := column(alg)
		cols = append(cols, p+"_connected", p+"_path_length", p+"_time")
		if alg == routing.Hybrid {
			cols = append(cols, p+"_used_bfs")
		}
	}
	return cols
}

// Row renders r in Header(algs) order. Algorithms missing from r render as
// not connected.
func (r Record) Row(algs []routing.Algorithm) []string {
	row := []string{
		r.ID,
		r.RunID,
		strconv.Itoa(r.Instance),
		strconv.Itoa(r.Trial),
		strconv.Itoa(r.N),
		strconv.Itoa(r.K),
		strconv.Itoa(r.R),
		strconv.Itoa(r.H),
		string(r.Mode),
		strconv.Itoa(r.Branches),
		r.Source,
		r.Sink,
		seconds(r.UFBuildTime),
		strconv.FormatBool(r.UFConnected),
		seconds(r.UFConnectedTime),
	}
	for _, alg := range algs {
		o, ok := r.Outcome(alg)
		if !ok {
			o = Outcome{Algorithm: alg, PathLength: -1}
		}
		row = append(row, strconv.FormatBool(o.Connected), strconv.Itoa(o.PathLength), seconds(o.Seconds))
		if alg == routing.Hybrid {
			row = append(row, strconv.FormatBool(o.UsedFallback))
		}
	}
	return row
}

func seconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}
