package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/ftroute/pkg/experiment"
	"github.com/dd0wney/ftroute/pkg/health"
	"github.com/dd0wney/ftroute/pkg/logging"
	"github.com/dd0wney/ftroute/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Experiment config file (.yaml, .yml or .toml)")
	n := flag.Int("n", 0, "Dimension n")
	k := flag.Int("k", 0, "Radix k")
	r := flag.Int("r", 0, "Branch count r")
	h := flag.Int("h", 0, "Core size parameter h")
	seed := flag.Uint64("seed", 0, "Base seed; instance i uses seed+i")
	instances := flag.Int("instances", 0, "Number of fault patterns")
	trials := flag.Int("trials", 0, "Source/sink pairs per instance")
	mode := flag.String("mode", "", "Endpoint sampling: different-branches, largest-branch or two-largest")
	out := flag.String("out", "", "Output path")
	workers := flag.Int("workers", 0, "Worker goroutines")
	logLevel := flag.String("log-level", "", "DEBUG, INFO, WARN or ERROR (default LOG_LEVEL or INFO)")
	logFile := flag.String("log-file", "", "Also write logs to this rotated file")
	metricsAddr := flag.String("metrics-addr", "", "Serve /metrics, /healthz and /status on this address, e.g. :9090")
	flag.Parse()

	cfg := experiment.DefaultConfig()
	if *configPath != "" {
		loaded, err := experiment.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ftroute: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "n":
			cfg.N = *n
		case "k":
			cfg.K = *k
		case "r":
			cfg.R = *r
		case "h":
			cfg.H = *h
		case "seed":
			cfg.Seed = *seed
		case "instances":
			cfg.Instances = *instances
		case "trials":
			cfg.Trials = *trials
		case "mode":
			cfg.Mode = experiment.Mode(*mode)
		case "out":
			cfg.Output.Path = *out
		case "workers":
			cfg.Workers = *workers
		}
	})

	level := *logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	logger, closer, err := logging.New(logging.OutputConfig{Level: level, File: *logFile, Compress: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ftroute: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	if err := run(cfg, logger, *metricsAddr); err != nil {
		logger.Error("experiment failed", logging.Error(err))
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg experiment.Config, logger logging.Logger, metricsAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	registry := metrics.DefaultRegistry()

	runner, err := experiment.NewRunner(cfg,
		experiment.WithLogger(logger),
		experiment.WithMetrics(registry))
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := serve(metricsAddr, registry, runner, start, logger)
		defer srv.Close()
	}

	records, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	sink, path, err := experiment.OpenSink(cfg.Output, runner.Algorithms())
	if err != nil {
		return err
	}
	if err := experiment.WriteAll(sink, records); err != nil {
		return err
	}
	registry.RecordsWritten.Add(float64(len(records)))
	logger.Info("records written", logging.String("path", path), logging.Count(len(records)))

	if cfg.Archive != nil {
		archiver, err := experiment.NewArchiver(ctx, *cfg.Archive)
		if err != nil {
			return err
		}
		key, err := archiver.Upload(ctx, runner.RunID(), path)
		if err != nil {
			return err
		}
		logger.Info("records archived", logging.String("bucket", cfg.Archive.Bucket), logging.String("key", key))
	}

	return experiment.Summarize(records, runner.Algorithms()).Print(os.Stdout)
}

// serve exposes /metrics, /healthz and /status for the lifetime of the run.
func serve(addr string, registry *metrics.Registry, runner *experiment.Runner, start time.Time, logger logging.Logger) *http.Server {
	checker := health.NewHealthChecker()
	checker.RegisterLivenessCheck("memory", health.MemoryCheck(nil))
	checker.RegisterReadinessCheck("experiment", health.ProgressCheck(func() (int, int, int) {
		p := runner.Progress()
		return p.Total, p.Done, p.Skipped
	}))

	mux := http.NewServeMux()
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/status", checker.ReadinessHandler())
	handler := promhttp.HandlerFor(registry.GetPrometheusRegistry(), promhttp.HandlerOpts{})
	mux.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		registry.UpdateUptime(start)
		handler.ServeHTTP(w, req)
	}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", logging.Error(err))
		}
	}()
	return srv
}
