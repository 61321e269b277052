package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/velozpay/ledger/internal/domain"
	"go.uber.org/zap"
)

// Seeder is the write surface needed to bootstrap demo data; both
// PostgresStore and MemoryStore satisfy it.
type Seeder interface {
	AddClient(ctx context.Context, client *domain.Client) error
	AddAccount(ctx context.Context, account *domain.Account) error
	ListClients(ctx context.Context) ([]*domain.Client, error)
}

// seedAccounts mirrors the demo scenarios: a funded account, one leaning on
// its credit line, and a nearly empty one.
var seedAccounts = []int64{10000, 500, 100}

// Seed creates a handful of demo clients, each with three accounts carrying a
// 5000 credit limit and different starting balances. It is a no-op when any
// client already exists.
func Seed(ctx context.Context, store Seeder, logger *zap.Logger) error {
	existing, err := store.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("check existing clients: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	creditLimit := decimal.NewFromInt(5000)
	for _, name := range []string{"Joao Silva", "Maria Santos", "Carlos Oliveira"} {
		client := domain.NewClient(name)
		if err := store.AddClient(ctx, client); err != nil {
			return fmt.Errorf("seed client: %w", err)
		}

		for _, balance := range seedAccounts {
			account := domain.NewAccount(client.ID, creditLimit)
			if err := account.Credit(decimal.NewFromInt(balance)); err != nil {
				return fmt.Errorf("seed balance: %w", err)
			}
			if err := store.AddAccount(ctx, account); err != nil {
				return fmt.Errorf("seed account: %w", err)
			}
			logger.Info("seeded account",
				zap.String("client", client.Name),
				zap.String("account_id", account.ID.String()),
				zap.String("balance", account.Balance.String()),
			)
		}
	}
	return nil
}
