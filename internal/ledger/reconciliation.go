package ledger

import (
	"context"
	"fmt"

	"github.com/velozpay/ledger/internal/observability"
	"go.uber.org/zap"
)

// ReconciliationService sweeps accounts at rest and verifies the balance
// invariants the orchestrator is supposed to preserve: reservedBalance never
// negative and available (balance + creditLimit - reservedBalance) never
// negative. A violation means a writer bypassed the lock discipline.
type ReconciliationService struct {
	store AdminStore
}

func NewReconciliationService(store AdminStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run checks every account and reports violations; it returns an error only
// when the sweep itself cannot run.
func (s *ReconciliationService) Run(ctx context.Context) error {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	violations := 0
	for _, account := range accounts {
		if account.ReservedBalance.IsNegative() {
			violations++
			observability.IncrementInvariantViolation("negative_reserved")
			zap.L().Error("CRITICAL: negative reserved balance",
				zap.String("account_id", account.ID.String()),
				zap.String("reserved_balance", account.ReservedBalance.String()),
			)
		}
		if account.Available().IsNegative() {
			violations++
			observability.IncrementInvariantViolation("negative_available")
			zap.L().Error("CRITICAL: available amount below zero",
				zap.String("account_id", account.ID.String()),
				zap.String("balance", account.Balance.String()),
				zap.String("reserved_balance", account.ReservedBalance.String()),
				zap.String("credit_limit", account.CreditLimit.String()),
			)
		}
	}

	if violations == 0 {
		zap.L().Info("ledger invariants hold", zap.Int("accounts", len(accounts)))
	}
	return nil
}
