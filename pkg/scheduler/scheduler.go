package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpost/pkg/domain"
)

//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// Runner executes one delivery pass over all configured feeds
type Runner interface {
	Run(ctx context.Context) domain.RunReport
}

// Scheduler triggers periodic delivery runs. The first run starts
// immediately, subsequent runs follow the update interval. Runs never
// overlap: a run holds the loop until it completes.
type Scheduler struct {
	runner         Runner
	updateInterval time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu   sync.RWMutex
	last *domain.RunReport
}

// NewScheduler creates a scheduler for the given runner
func NewScheduler(runner Runner, updateInterval time.Duration) *Scheduler {
	if updateInterval == 0 {
		updateInterval = 30 * time.Minute
	}
	return &Scheduler{runner: runner, updateInterval: updateInterval}
}

// Start begins the delivery loop
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.deliveryLoop(ctx)

	lgr.Printf("[INFO] scheduler started with update interval %v", s.updateInterval)
}

// Stop gracefully stops the scheduler, waiting for an in-flight run
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RunNow triggers a single delivery run outside the periodic loop
func (s *Scheduler) RunNow(ctx context.Context) domain.RunReport {
	return s.runOnce(ctx)
}

// LastReport returns the most recent run report, nil before the first run
func (s *Scheduler) LastReport() *domain.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	report := *s.last
	return &report
}

func (s *Scheduler) deliveryLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()

	// run immediately on start
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) domain.RunReport {
	report := s.runner.Run(ctx)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	return report
}
