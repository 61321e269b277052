package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/ledger"
	"github.com/velozpay/ledger/internal/repository"
)

func TestReconciliationSweepOnHealthyLedger(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, 1000, 500)
	f.addAccount(t, 0, 0)

	svc := ledger.NewReconciliationService(f.store)
	require.NoError(t, svc.Run(context.Background()))
}

func TestReconciliationSweepReportsCorruptedAccount(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	client := domain.NewClient("Corrupt Client")
	require.NoError(t, store.AddClient(ctx, client))

	// Forged state a guarded mutation could never produce.
	account := domain.NewAccount(client.ID, decimal.Zero)
	account.ReservedBalance = decimal.NewFromInt(-50)
	require.NoError(t, store.AddAccount(ctx, account))

	svc := ledger.NewReconciliationService(store)
	// The sweep flags violations via logs and metrics but keeps running.
	require.NoError(t, svc.Run(ctx))
}

func TestReconciliationSweepEmptyStore(t *testing.T) {
	svc := ledger.NewReconciliationService(repository.NewMemoryStore())
	require.NoError(t, svc.Run(context.Background()))
}
