package pipeline

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/feedpost/pkg/domain"
	"github.com/umputun/feedpost/pkg/notify"
	"github.com/umputun/feedpost/pkg/pipeline/mocks"
)

func TestSender_Send_Success(t *testing.T) {
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error {
			return nil
		},
	}

	sender := NewSender(sink, 4, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "sum")
	assert.Equal(t, domain.StatusDelivered, status)
	assert.Len(t, sink.SendCalls(), 1, "success needs no retry")
	assert.Equal(t, "sum", sink.SendCalls()[0].Summary)
}

func TestSender_Send_RetryExhausted(t *testing.T) {
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error {
			return &notify.DeliveryError{StatusCode: http.StatusBadGateway, Retryable: true}
		},
	}

	sender := NewSender(sink, 4, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusRetryExhausted, status)
	assert.Len(t, sink.SendCalls(), 4, "exactly maxAttempts total tries")
}

func TestSender_Send_TerminalStopsImmediately(t *testing.T) {
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error {
			return &notify.DeliveryError{StatusCode: http.StatusBadRequest, Retryable: false}
		},
	}

	sender := NewSender(sink, 4, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusSkippedTerminal, status)
	assert.Len(t, sink.SendCalls(), 1, "terminal error must not be retried")
}

func TestSender_Send_RecoversAfterRetryableFailure(t *testing.T) {
	calls := 0
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error {
			calls++
			if calls < 3 {
				return &notify.DeliveryError{StatusCode: http.StatusTooManyRequests, Retryable: true, RetryAfter: time.Second}
			}
			return nil
		},
	}

	sender := NewSender(sink, 4, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusDelivered, status)
	assert.Equal(t, 3, calls)
}

func TestSender_Send_UnclassifiedErrorIsRetried(t *testing.T) {
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error {
			return errors.New("connection reset") // transport-level error, no classification
		},
	}

	sender := NewSender(sink, 2, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusRetryExhausted, status)
	assert.Len(t, sink.SendCalls(), 2)
}

func TestSender_Send_AttemptFinishesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sink := &mocks.SinkMock{
		SendFunc: func(sendCtx context.Context, entry domain.Entry, summary string) error {
			cancel() // shutdown arrives while the attempt is in flight
			require.NoError(t, sendCtx.Err(), "in-flight attempt must not be canceled")
			return nil
		},
	}

	sender := NewSender(sink, 4, time.Millisecond, 10*time.Millisecond)
	status := sender.Send(ctx, domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusDelivered, status)
}

func TestNewSender_MinimumOneAttempt(t *testing.T) {
	sink := &mocks.SinkMock{
		SendFunc: func(ctx context.Context, entry domain.Entry, summary string) error { return nil },
	}
	sender := NewSender(sink, 0, time.Millisecond, time.Millisecond)
	status := sender.Send(context.Background(), domain.Entry{ID: "e1"}, "")
	assert.Equal(t, domain.StatusDelivered, status)
}
