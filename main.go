package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/robfig/cron/v3"

	"github.com/danielmmetz/hn-client/leaderboard/hn"
	"github.com/danielmmetz/hn-client/leaderboard/logging"
	"github.com/danielmmetz/hn-client/leaderboard/render"
	"github.com/danielmmetz/hn-client/leaderboard/worker"
)

type config struct {
	baseURL        string
	requestTimeout time.Duration
	maxInFlight    int
	schedule       string
	log            logging.Options
	opts           worker.Options
}

func parseConfig(args []string) (config, error) {
	flagSet := flag.NewFlagSet("hn-leaderboard", flag.ContinueOnError)

	defaults := worker.DefaultOptions()
	var (
		cfg    config
		format string
	)
	flagSet.StringVar(&cfg.baseURL, "base-url", hn.DefaultBaseURL, "HN API root URL")
	flagSet.IntVar(&cfg.opts.Limit, "limit", defaults.Limit, "Number of top stories to rank")
	flagSet.IntVar(&cfg.opts.Top, "top", defaults.Top, "Number of top commenters to list")
	flagSet.IntVar(&cfg.opts.MaxRetries, "max-retries", defaults.MaxRetries, "Retries after a transient fetch failure")
	flagSet.DurationVar(&cfg.opts.RetryDelay, "retry-delay", defaults.RetryDelay, "Wait before each retry")
	flagSet.DurationVar(&cfg.opts.SlowAfter, "slow-after", defaults.SlowAfter, "Print a slow API notice after this long (0 disables)")
	flagSet.DurationVar(&cfg.requestTimeout, "request-timeout", 15*time.Second, "Per-request HTTP timeout (0: transport default)")
	flagSet.IntVar(&cfg.maxInFlight, "max-inflight", 0, "Max concurrent HN requests (0: unbounded)")
	flagSet.StringVar(&format, "format", string(defaults.Format), "Output format: table, json or yaml")
	flagSet.StringVar(&cfg.schedule, "schedule", "", "Cron schedule for repeated runs, e.g. \"@every 10m\" (default: run once)")
	flagSet.StringVar(&cfg.log.Level, "log-level", "info", "Log level: debug, info, warn, error")
	flagSet.StringVar(&cfg.log.File, "log-file", "", "Also write JSON logs to this rotating file")
	flagSet.String("config", "", "Config file (one \"flag value\" per line)")

	if err := ff.Parse(flagSet, args,
		ff.WithEnvVars(),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		return config{}, err
	}

	var err error
	if cfg.opts.Format, err = render.ParseFormat(format); err != nil {
		return config{}, err
	}
	if _, err := logging.ParseLevel(cfg.log.Level); err != nil {
		return config{}, err
	}
	switch {
	case cfg.opts.Limit < 1:
		return config{}, errors.New("limit must be at least 1")
	case cfg.opts.Top < 1:
		return config{}, errors.New("top must be at least 1")
	case cfg.opts.MaxRetries < 0:
		return config{}, errors.New("max-retries must not be negative")
	case cfg.opts.RetryDelay < 0, cfg.opts.SlowAfter < 0, cfg.requestTimeout < 0:
		return config{}, errors.New("durations must not be negative")
	}
	if cfg.schedule != "" {
		if _, err := cron.ParseStandard(cfg.schedule); err != nil {
			return config{}, fmt.Errorf("parse schedule: %w", err)
		}
	}
	return cfg, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		slog.Error("failed to parse flags", "error", err)
		return 2
	}

	logger, closer, err := logging.New(os.Stderr, cfg.log)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		return 2
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := hn.NewClient(
		hn.WithBaseURL(cfg.baseURL),
		hn.WithTimeout(cfg.requestTimeout),
		hn.WithMaxInFlight(cfg.maxInFlight),
	)
	runner := worker.NewRunner(client, cfg.opts, os.Stdout, os.Stderr)

	if cfg.schedule == "" {
		if _, err := runner.Run(ctx); err != nil {
			return 1
		}
		return 0
	}

	if err := runScheduled(ctx, runner, cfg.schedule); err != nil {
		slog.Error("scheduler error", "error", err)
		return 1
	}
	return 0
}

// runScheduled runs the report now and then on every tick of the cron schedule until ctx
// is cancelled. A tick is skipped while the previous run is still going.
func runScheduled(ctx context.Context, runner *worker.Runner, schedule string) error {
	job := func() {
		if _, err := runner.Run(ctx); err != nil {
			slog.Error("scheduled run failed", "error", err)
		}
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("add schedule %q: %w", schedule, err)
	}

	job()
	c.Start()
	slog.Info("scheduler started", "schedule", schedule)

	<-ctx.Done()
	slog.Info("scheduler: shutting down")
	<-c.Stop().Done()
	return nil
}
