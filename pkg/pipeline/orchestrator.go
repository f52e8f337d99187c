package pipeline

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/feedpost/pkg/domain"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . CycleRunner

// CycleRunner runs one delivery cycle for a feed
type CycleRunner interface {
	RunCycle(ctx context.Context, fd domain.Feed) domain.CycleReport
}

// Orchestrator runs one pipeline cycle per configured feed concurrently.
// Feeds are fully independent: a failing feed is reflected in its own cycle
// report and never delays or aborts the others.
type Orchestrator struct {
	runner     CycleRunner
	feeds      []domain.Feed
	maxWorkers int
}

// NewOrchestrator creates an orchestrator for the given feeds
func NewOrchestrator(runner CycleRunner, feeds []domain.Feed, maxWorkers int) *Orchestrator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Orchestrator{runner: runner, feeds: feeds, maxWorkers: maxWorkers}
}

// Run executes one cycle for every feed and aggregates the outcomes
func (o *Orchestrator) Run(ctx context.Context) domain.RunReport {
	report := domain.RunReport{StartedAt: time.Now(), Cycles: make([]domain.CycleReport, len(o.feeds))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxWorkers)

	for i, fd := range o.feeds {
		g.Go(func() error {
			report.Cycles[i] = o.runner.RunCycle(gctx, fd)
			return nil // per-feed failures stay in the cycle report
		})
	}
	_ = g.Wait() // no goroutine returns an error

	for _, c := range report.Cycles {
		report.Delivered += c.Delivered
		if c.Failed() {
			report.Failed++
		}
	}
	report.Elapsed = time.Since(report.StartedAt)

	lgr.Printf("[INFO] run completed in %v: %d delivered, %d feeds with failures",
		report.Elapsed.Round(time.Millisecond), report.Delivered, report.Failed)
	return report
}
