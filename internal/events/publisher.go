// Package events carries domain events to the outside world. The raw
// publishers (RabbitMQ, in-memory) may fail transiently; RetryPublisher wraps
// one of them with bounded retry and exponential backoff.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/observability"
	"go.uber.org/zap"
)

// Publisher sends one domain event. Implementations may fail transiently.
type Publisher interface {
	Publish(ctx context.Context, event domain.OperationEvent) error
}

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 200 * time.Millisecond
)

// RetryPublisher retries a raw publisher with exponential backoff:
// baseDelay, 2*baseDelay, 4*baseDelay, ... between attempts. On exhaustion the
// last failure is propagated wrapped in domain.ErrPublicationExhausted. No
// circuit breaker and no dead-letter queue; the caller decides what an
// exhausted publish means.
type RetryPublisher struct {
	raw         Publisher
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

func NewRetryPublisher(raw Publisher, logger *zap.Logger) *RetryPublisher {
	return &RetryPublisher{
		raw:         raw,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		logger:      logger,
	}
}

// WithMaxAttempts overrides the attempt ceiling.
func (p *RetryPublisher) WithMaxAttempts(attempts int) *RetryPublisher {
	if attempts > 0 {
		p.maxAttempts = attempts
	}
	return p
}

// WithBaseDelay overrides the first backoff delay.
func (p *RetryPublisher) WithBaseDelay(delay time.Duration) *RetryPublisher {
	if delay > 0 {
		p.baseDelay = delay
	}
	return p
}

// Publish returns nil on the first successful attempt. Backoff waits are
// cooperative: a done context aborts the wait and surfaces ctx.Err().
func (p *RetryPublisher) Publish(ctx context.Context, event domain.OperationEvent) error {
	delay := p.baseDelay
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.raw.Publish(ctx, event)
		if lastErr == nil {
			return nil
		}

		if attempt == p.maxAttempts {
			break
		}

		observability.IncrementPublishRetry()
		p.logger.Warn("event publish failed, backing off",
			zap.String("operation_id", event.OperationID.String()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("publish backoff interrupted: %w", ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}

	observability.IncrementPublishExhausted()
	return fmt.Errorf("%w after %d attempts: %w", domain.ErrPublicationExhausted, p.maxAttempts, lastErr)
}
