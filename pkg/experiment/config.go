// Package experiment runs repeated routing trials over freshly synthesized
// fault patterns and writes one flat record per trial.
package experiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/ftroute/pkg/parallel"
	"github.com/dd0wney/ftroute/pkg/routing"
	"github.com/dd0wney/ftroute/pkg/topology"
	"github.com/dd0wney/ftroute/pkg/validation"
)

// ErrUnsupportedConfig is returned by Load for files that are neither YAML
// nor TOML.
var ErrUnsupportedConfig = errors.New("experiment: unsupported config file extension")

// Mode selects how each trial draws its source and sink.
type Mode string

const (
	// ModeDifferentBranches draws the source from the largest component and
	// the sink from another one.
	ModeDifferentBranches Mode = "different-branches"
	// ModeLargestBranch draws a far-apart pair inside the largest component.
	ModeLargestBranch Mode = "largest-branch"
	// ModeTwoLargest draws one endpoint from each of the two largest
	// components.
	ModeTwoLargest Mode = "two-largest"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// OutputConfig says where records go.
type OutputConfig struct {
	Path     string `yaml:"path" toml:"path" validate:"required"`
	Format   string `yaml:"format" toml:"format" validate:"oneof=csv jsonl"`
	Compress bool   `yaml:"compress" toml:"compress"`
}

// ArchiveConfig enables uploading the finished output to S3-compatible
// storage. Static credentials are optional; without them the default AWS
// credential chain applies.
type ArchiveConfig struct {
	Bucket          string `yaml:"bucket" toml:"bucket" validate:"required"`
	Prefix          string `yaml:"prefix" toml:"prefix"`
	Region          string `yaml:"region" toml:"region"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id" toml:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `yaml:"secret_access_key" toml:"secret_access_key" validate:"required_with=AccessKeyID"`
}

// Config describes one experiment run.
type Config struct {
	N            int           `yaml:"n" toml:"n" validate:"gte=1"`
	K            int           `yaml:"k" toml:"k" validate:"gte=2"`
	R            int           `yaml:"r" toml:"r" validate:"gte=2"`
	H            int           `yaml:"h" toml:"h" validate:"gte=0"`
	Seed         uint64        `yaml:"seed" toml:"seed"`
	Instances    int           `yaml:"instances" toml:"instances" validate:"gte=1"`
	Trials       int           `yaml:"trials" toml:"trials" validate:"gte=1"`
	Mode         Mode          `yaml:"mode" toml:"mode" validate:"oneof=different-branches largest-branch two-largest"`
	Algorithms   []string      `yaml:"algorithms" toml:"algorithms" validate:"required,unique"`
	Workers      int           `yaml:"workers" toml:"workers" validate:"gte=0"`
	RetryBudget  int           `yaml:"retry_budget" toml:"retry_budget" validate:"gte=0"`
	RouteTimeout time.Duration `yaml:"route_timeout" toml:"route_timeout" validate:"gte=0"`

	Output  OutputConfig   `yaml:"output" toml:"output"`
	Archive *ArchiveConfig `yaml:"archive" toml:"archive"`
}

// DefaultConfig is a 4-ary 4-cube with one partitioning core, ten
// trials, every router.
func DefaultConfig() Config {
	algs := make([]string, 0, len(routing.Algorithms()))
	for _, a := range routing.Algorithms() {
		algs = append(algs, string(a))
	}
	return Config{
		N:          4,
		K:          4,
		R:          2,
		H:          0,
		Seed:       1,
		Instances:  1,
		Trials:     10,
		Mode:       ModeDifferentBranches,
		Algorithms: algs,
		Workers:    runtime.NumCPU(),
		Output: OutputConfig{
			Path:   "results.csv",
			Format: FormatCSV,
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over DefaultConfig
// and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("experiment: read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}
	if err != nil {
		return cfg, fmt.Errorf("experiment: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks field bounds, then the rules that span fields.
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("experiment: %w", err)
	}

	names := make([]string, 0, len(routing.Algorithms()))
	for _, a := range routing.Algorithms() {
		names = append(names, string(a))
	}

	return validation.NewConfigValidator("Config").
		SubsetOf("Algorithms", c.Algorithms, names).
		Custom("K^N", func() error {
			_, err := topology.New(c.N, c.K)
			return err
		}).
		When(c.RouteTimeout > 0, func(cv *validation.ConfigValidator) {
			cv.MinDuration("RouteTimeout", c.RouteTimeout, time.Millisecond)
		}).
		MaxInt("Workers", c.Workers, parallel.MaxWorkers).
		When(c.Archive != nil && c.Archive.Endpoint != "", func(cv *validation.ConfigValidator) {
			cv.Required("Archive.Region", c.Archive.Region)
		}).
		Validate()
}

// algorithms returns the configured routers in config order. Validate has
// already rejected unknown names.
func (c Config) algorithms() []routing.Algorithm {
	out := make([]routing.Algorithm, 0, len(c.Algorithms))
	for _, name := range c.Algorithms {
		alg, err := routing.ParseAlgorithm(name)
		if err != nil {
			continue
		}
		out = append(out, alg)
	}
	return out
}
