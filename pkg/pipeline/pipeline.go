package pipeline

import (
	"context"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/feedpost/pkg/domain"
	"github.com/umputun/feedpost/pkg/feed"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/cursors.go -pkg mocks -skip-ensure -fmt goimports . CursorStore
//go:generate moq -out mocks/sink.go -pkg mocks -skip-ensure -fmt goimports . Sink
//go:generate moq -out mocks/summarizer.go -pkg mocks -skip-ensure -fmt goimports . Summarizer

// Fetcher retrieves a feed's current entries, newest first
type Fetcher interface {
	Fetch(ctx context.Context, fd domain.Feed) ([]domain.Entry, error)
}

// CursorStore persists the last delivered entry id per feed
type CursorStore interface {
	GetCursor(ctx context.Context, feed string) (id string, ok bool, err error)
	SetCursor(ctx context.Context, feed, id string) error
}

// Sink delivers one rendered entry to the destination channel
type Sink interface {
	Send(ctx context.Context, entry domain.Entry, summary string) error
}

// Summarizer produces a short summary for an entry, optional
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (string, error)
}

// Pipeline runs the fetch-select-deliver cycle for a single feed.
// Delivery is strictly sequential: entries go out oldest first, the cursor
// advances only after a confirmed delivery, and any delivery failure stops
// the remainder of the cycle so a later entry never overtakes a failed one.
type Pipeline struct {
	fetcher    Fetcher
	cursors    CursorStore
	sender     *Sender
	summarizer Summarizer // nil disables summarization

	gapPolicy    feed.GapPolicy
	messageDelay time.Duration
}

// Config holds pipeline dependencies and settings
type Config struct {
	Fetcher      Fetcher
	Cursors      CursorStore
	Sender       *Sender
	Summarizer   Summarizer
	GapPolicy    feed.GapPolicy
	MessageDelay time.Duration
}

// New creates a pipeline with the provided configuration
func New(cfg Config) *Pipeline {
	return &Pipeline{
		fetcher:      cfg.Fetcher,
		cursors:      cfg.Cursors,
		sender:       cfg.Sender,
		summarizer:   cfg.Summarizer,
		gapPolicy:    cfg.GapPolicy,
		messageDelay: cfg.MessageDelay,
	}
}

// RunCycle performs one fetch-select-deliver pass for the feed. All failures
// are contained in the returned report, a cycle never affects other feeds.
func (p *Pipeline) RunCycle(ctx context.Context, fd domain.Feed) domain.CycleReport {
	report := domain.CycleReport{Feed: fd.Name, StartedAt: time.Now()}
	defer func() { report.Elapsed = time.Since(report.StartedAt) }()

	entries, err := p.fetcher.Fetch(ctx, fd)
	if err != nil {
		lgr.Printf("[WARN] fetch failed for feed %s: %v", fd.Name, err)
		report.Err = err.Error()
		return report
	}

	cursor, _, err := p.cursors.GetCursor(ctx, fd.Name)
	if err != nil {
		lgr.Printf("[ERROR] cursor read failed for feed %s: %v", fd.Name, err)
		report.Err = err.Error()
		return report
	}

	if cursor != "" && len(entries) > 0 && !containsID(entries, cursor) {
		lgr.Printf("[WARN] cursor %q rotated out of the fetched window for feed %s, policy: %s",
			cursor, fd.Name, gapPolicyName(p.gapPolicy))
		if p.gapPolicy == feed.GapSkip {
			// fast-forward past the missed window so delivery resumes from here
			if err := p.cursors.SetCursor(ctx, fd.Name, entries[0].ID); err != nil {
				lgr.Printf("[ERROR] feed %s: cursor fast-forward failed: %v", fd.Name, err)
				report.Err = err.Error()
			}
			return report
		}
	}

	selected := feed.SelectNew(entries, cursor, p.gapPolicy)
	if len(selected) == 0 {
		lgr.Printf("[DEBUG] no new entries for feed %s", fd.Name)
		return report
	}
	lgr.Printf("[INFO] feed %s: %d new entries to deliver", fd.Name, len(selected))

	for i, entry := range selected {
		// shutdown lets the in-flight entry finish but starts no new ones
		if ctx.Err() != nil {
			lgr.Printf("[INFO] feed %s: stopping before entry %s: %v", fd.Name, entry.ID, ctx.Err())
			report.StoppedAt = entry.ID
			report.Err = ctx.Err().Error()
			return report
		}

		status := p.sender.Send(ctx, entry, p.summarize(ctx, entry))
		if status != domain.StatusDelivered {
			lgr.Printf("[WARN] feed %s: delivery of entry %s ended %s, stopping cycle", fd.Name, entry.ID, status)
			report.StoppedAt = entry.ID
			return report
		}

		// cursor must be durable before the next entry goes out
		if err := p.cursors.SetCursor(ctx, fd.Name, entry.ID); err != nil {
			// the entry did reach the sink, the stale cursor means the next
			// cycle may re-deliver it - accepted at-least-once behavior
			lgr.Printf("[ERROR] feed %s: cursor write failed after delivering %s: %v", fd.Name, entry.ID, err)
			report.Delivered++
			report.Err = err.Error()
			return report
		}
		report.Delivered++
		lgr.Printf("[DEBUG] feed %s: delivered entry %s", fd.Name, entry.ID)

		if i < len(selected)-1 {
			p.pause(ctx, p.messageDelay)
		}
	}

	return report
}

// summarize returns a summary for the entry, empty when summarization is
// disabled or fails - a missing summary never blocks delivery
func (p *Pipeline) summarize(ctx context.Context, entry domain.Entry) string {
	if p.summarizer == nil {
		return ""
	}
	summary, err := p.summarizer.Summarize(ctx, entry.Title, entry.Body)
	if err != nil {
		lgr.Printf("[WARN] summarization failed for entry %s: %v", entry.ID, err)
		return ""
	}
	return summary
}

// pause waits for the inter-message delay, cut short on cancellation
func (p *Pipeline) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func containsID(entries []domain.Entry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func gapPolicyName(p feed.GapPolicy) string {
	if p == feed.GapSkip {
		return "skip"
	}
	return "redeliver"
}
