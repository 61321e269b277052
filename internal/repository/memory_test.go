package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velozpay/ledger/internal/domain"
	"go.uber.org/zap"
)

func TestMemoryAccountStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	account := domain.NewAccount(uuid.New(), decimal.NewFromInt(1000))
	require.NoError(t, store.AddAccount(ctx, account))

	loaded, err := store.Accounts().Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, loaded.ID)
	assert.True(t, loaded.CreditLimit.Equal(decimal.NewFromInt(1000)))

	require.NoError(t, loaded.Credit(decimal.NewFromInt(250)))
	require.NoError(t, store.Accounts().Update(ctx, loaded))

	reloaded, err := store.Accounts().Get(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Equal(decimal.NewFromInt(250)))
}

func TestMemoryAccountStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	account := domain.NewAccount(uuid.New(), decimal.Zero)
	require.NoError(t, store.AddAccount(ctx, account))

	loaded, err := store.Accounts().Get(ctx, account.ID)
	require.NoError(t, err)
	loaded.Balance = decimal.NewFromInt(999)

	reloaded, err := store.Accounts().Get(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.IsZero())
}

func TestMemoryAccountStoreUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Accounts().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	err = store.Accounts().Update(context.Background(), domain.NewAccount(uuid.New(), decimal.Zero))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMemoryOperationStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	op := domain.NewOperation(uuid.New(), uuid.New(), domain.OperationTypeCredit, decimal.NewFromInt(10))
	require.NoError(t, store.Operations().Add(ctx, op))

	loaded, err := store.Operations().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OperationStatusPending, loaded.Status)

	require.NoError(t, loaded.Complete())
	require.NoError(t, store.Operations().Update(ctx, loaded))

	reloaded, err := store.Operations().Get(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OperationStatusCompleted, reloaded.Status)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestMemoryOperationStoreUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Operations().Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrOperationNotFound)
}

func TestMemoryStoreListings(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	client := domain.NewClient("Lister")
	require.NoError(t, store.AddClient(ctx, client))
	require.NoError(t, store.AddAccount(ctx, domain.NewAccount(client.ID, decimal.Zero)))
	require.NoError(t, store.AddAccount(ctx, domain.NewAccount(client.ID, decimal.Zero)))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	operations, err := store.ListOperations(ctx)
	require.NoError(t, err)
	assert.Empty(t, operations)
}

func TestSeedPopulatesDemoData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store, zap.NewNop()))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3)

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 9)
	for _, account := range accounts {
		assert.True(t, account.CreditLimit.Equal(decimal.NewFromInt(5000)))
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, store, zap.NewNop()))
	require.NoError(t, Seed(ctx, store, zap.NewNop()))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3)
}
