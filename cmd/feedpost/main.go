package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/feedpost/pkg/config"
	"github.com/umputun/feedpost/pkg/feed"
	"github.com/umputun/feedpost/pkg/llm"
	"github.com/umputun/feedpost/pkg/notify"
	"github.com/umputun/feedpost/pkg/pipeline"
	"github.com/umputun/feedpost/pkg/repository"
	"github.com/umputun/feedpost/pkg/scheduler"
	"github.com/umputun/feedpost/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file"`
	Once   bool   `long:"once" description:"run a single delivery pass and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug, opts.NoColor)

	lgr.Printf("[INFO] starting feedpost version %s", revision)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		lgr.Printf("[ERROR] can't load config: %v", err)
		os.Exit(1)
	}

	// re-init logging with secrets masked
	var secrets []string
	for _, s := range []string{cfg.Telegram.Token, cfg.Summary.APIKey} {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	setupLog(opts.Debug, opts.NoColor, secrets...)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	err = run(ctx, cfg, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] feedpost failed: %v", err)
		os.Exit(1)
	}

	lgr.Printf("[INFO] shutdown complete")
}

// run wires the application components and blocks until shutdown
func run(ctx context.Context, cfg *config.Config, opts Opts) error {
	store, err := repository.New(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open cursor store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			lgr.Printf("[WARN] can't close cursor store: %v", err)
		}
	}()

	fetcher := feed.NewHTTPFetcher(cfg.Schedule.FetchTimeout, "feedpost/"+revision)
	sink := notify.NewTelegram(cfg.GetTelegramConfig())

	var summarizer pipeline.Summarizer
	if cfg.Summary.Enabled {
		summarizer = llm.NewSummarizer(cfg.GetSummaryConfig())
		lgr.Printf("[INFO] summarization enabled with model %s", cfg.Summary.Model)
	}

	delivery := cfg.GetDeliveryConfig()
	pipe := pipeline.New(pipeline.Config{
		Fetcher:      fetcher,
		Cursors:      store,
		Sender:       pipeline.NewSender(sink, delivery.MaxAttempts, delivery.InitialBackoff, delivery.MaxBackoff),
		Summarizer:   summarizer,
		GapPolicy:    gapPolicy(delivery.OnCursorGap),
		MessageDelay: delivery.MessageDelay,
	})

	orch := pipeline.NewOrchestrator(pipe, cfg.GetFeeds(), cfg.Schedule.MaxWorkers)

	if opts.Once {
		report := orch.Run(ctx)
		if report.Failed > 0 {
			return fmt.Errorf("%d of %d feeds failed", report.Failed, len(report.Cycles))
		}
		return nil
	}

	sched := scheduler.NewScheduler(orch, time.Duration(cfg.Schedule.UpdateInterval)*time.Minute)
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(cfg, sched, store, revision, opts.Debug)
	return srv.Run(ctx)
}

// gapPolicy maps the config value to the selector policy
func gapPolicy(v string) feed.GapPolicy {
	if v == config.GapSkip {
		return feed.GapSkip
	}
	return feed.GapRedeliver
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
