package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/feedpost/pkg/domain"
	"github.com/umputun/feedpost/pkg/notify"
)

// errTerminal marks a non-retryable delivery failure, makes the retrier stop
var errTerminal = errors.New("terminal delivery error")

// Sender wraps a Sink with a bounded exponential-backoff retry loop.
// Retryable failures (rate limiting, server errors, transport errors) are
// retried up to maxAttempts total tries with the delay doubling after each
// failure, non-retryable ones stop immediately.
type Sender struct {
	sink           Sink
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewSender creates a retrying sender over the given sink
func NewSender(sink Sink, maxAttempts int, initialBackoff, maxBackoff time.Duration) *Sender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Sender{sink: sink, maxAttempts: maxAttempts, initialBackoff: initialBackoff, maxBackoff: maxBackoff}
}

// Send delivers one entry with retries and reports the final outcome.
// Blocks the caller for the cumulative backoff duration, which serializes
// delivery within a feed by design.
func (s *Sender) Send(ctx context.Context, entry domain.Entry, summary string) domain.DeliveryStatus {
	retrier := repeater.NewBackoff(s.maxAttempts, s.initialBackoff, repeater.WithMaxDelay(s.maxBackoff))

	terminal := false
	attempt := 0
	err := retrier.Do(ctx, func() error {
		attempt++

		// the attempt itself runs to completion even on shutdown, so a
		// message that reached the sink is never recorded as failed
		sendErr := s.sink.Send(context.WithoutCancel(ctx), entry, summary)
		if sendErr == nil {
			return nil
		}

		var delErr *notify.DeliveryError
		if errors.As(sendErr, &delErr) && !delErr.Retryable {
			terminal = true
			return fmt.Errorf("%w: %v", errTerminal, sendErr)
		}

		if errors.As(sendErr, &delErr) && delErr.RetryAfter > 0 {
			lgr.Printf("[DEBUG] sink suggests retry after %v for entry %s", delErr.RetryAfter, entry.ID)
		}
		lgr.Printf("[WARN] attempt %d/%d failed for entry %s: %v", attempt, s.maxAttempts, entry.ID, sendErr)
		return sendErr
	}, errTerminal)

	switch {
	case err == nil:
		return domain.StatusDelivered
	case terminal:
		return domain.StatusSkippedTerminal
	default:
		return domain.StatusRetryExhausted
	}
}
