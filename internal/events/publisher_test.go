package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velozpay/ledger/internal/domain"
	"go.uber.org/zap"
)

var errBrokerDown = errors.New("broker down")

// flakyPublisher fails the first failures calls and then delegates to an
// in-memory spy.
type flakyPublisher struct {
	spy      *InMemoryPublisher
	failures int
	calls    int
}

func (p *flakyPublisher) Publish(ctx context.Context, event domain.OperationEvent) error {
	p.calls++
	if p.calls <= p.failures {
		return errBrokerDown
	}
	return p.spy.Publish(ctx, event)
}

func testEvent() domain.OperationEvent {
	return domain.OperationEvent{
		OperationID: uuid.New(),
		AccountID:   uuid.New(),
		Amount:      decimal.NewFromInt(100),
		Type:        "credit",
	}
}

func TestPublishFirstAttemptSucceeds(t *testing.T) {
	flaky := &flakyPublisher{spy: NewInMemoryPublisher()}
	p := NewRetryPublisher(flaky, zap.NewNop()).WithBaseDelay(time.Millisecond)

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	assert.Equal(t, 1, flaky.calls)
	assert.Len(t, flaky.spy.Events(), 1)
}

func TestPublishRecoversBeforeExhaustion(t *testing.T) {
	flaky := &flakyPublisher{spy: NewInMemoryPublisher(), failures: 2}
	p := NewRetryPublisher(flaky, zap.NewNop()).WithBaseDelay(time.Millisecond)

	event := testEvent()
	require.NoError(t, p.Publish(context.Background(), event))
	assert.Equal(t, 3, flaky.calls)

	published := flaky.spy.Events()
	require.Len(t, published, 1)
	assert.Equal(t, event.OperationID, published[0].OperationID)
}

func TestPublishExhaustsAfterMaxAttempts(t *testing.T) {
	flaky := &flakyPublisher{spy: NewInMemoryPublisher(), failures: 10}
	p := NewRetryPublisher(flaky, zap.NewNop()).WithBaseDelay(time.Millisecond)

	err := p.Publish(context.Background(), testEvent())
	require.ErrorIs(t, err, domain.ErrPublicationExhausted)
	require.ErrorIs(t, err, errBrokerDown)
	assert.Equal(t, DefaultMaxAttempts, flaky.calls)
	assert.Empty(t, flaky.spy.Events())
}

func TestPublishBackoffAbortsOnContextCancel(t *testing.T) {
	flaky := &flakyPublisher{spy: NewInMemoryPublisher(), failures: 10}
	p := NewRetryPublisher(flaky, zap.NewNop()).WithBaseDelay(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.Publish(ctx, testEvent())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, flaky.calls)
}

func TestPublishCustomAttemptCeiling(t *testing.T) {
	flaky := &flakyPublisher{spy: NewInMemoryPublisher(), failures: 10}
	p := NewRetryPublisher(flaky, zap.NewNop()).
		WithMaxAttempts(5).
		WithBaseDelay(time.Millisecond)

	err := p.Publish(context.Background(), testEvent())
	require.ErrorIs(t, err, domain.ErrPublicationExhausted)
	assert.Equal(t, 5, flaky.calls)
}
