package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireProvidesMutualExclusion(t *testing.T) {
	registry := NewRegistry()
	accountID := uuid.New()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders int
		maxSeen int
	)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := registry.Acquire(context.Background(), accountID)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestIndependentAccountsDoNotBlock(t *testing.T) {
	registry := NewRegistry()

	releaseA, err := registry.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := registry.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	releaseB()
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	registry := NewRegistry()
	accountID := uuid.New()

	release, err := registry.Acquire(context.Background(), accountID)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = registry.Acquire(ctx, accountID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEntriesAreDroppedWhenIdle(t *testing.T) {
	registry := NewRegistry()
	accountID := uuid.New()

	release, err := registry.Acquire(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())

	release()
	assert.Equal(t, 0, registry.Len())
}

func TestCanceledWaiterReleasesItsReference(t *testing.T) {
	registry := NewRegistry()
	accountID := uuid.New()

	release, err := registry.Acquire(context.Background(), accountID)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = registry.Acquire(ctx, accountID)
	require.Error(t, err)

	assert.Equal(t, 1, registry.Len())
	release()
	assert.Equal(t, 0, registry.Len())
}

func TestReleaseIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	accountID := uuid.New()

	release, err := registry.Acquire(context.Background(), accountID)
	require.NoError(t, err)

	release()
	release()

	again, err := registry.Acquire(context.Background(), accountID)
	require.NoError(t, err)
	again()
}
