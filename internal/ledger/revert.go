package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/observability"
	"go.uber.org/zap"
)

// RevertRequest undoes a previously completed operation on an account.
// OperationID names the operation being reverted.
type RevertRequest struct {
	AccountID   uuid.UUID
	OperationID uuid.UUID
}

const revertMetricType = "revert"

// Revert applies the inverse effect of the original operation and flips its
// status to Reverted. No second operation row is created; the published event
// carries the original type with a reversal suffix. Only a Completed
// operation of a revertible type (credit, debit, reserve, capture) can be
// reverted.
func (s *Service) Revert(ctx context.Context, req RevertRequest) (*domain.Operation, error) {
	release, err := s.locks.Acquire(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	defer release()

	account, err := s.accounts.Get(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	original, err := s.operations.Get(ctx, req.OperationID)
	if err != nil {
		return nil, err
	}
	if original.AccountID != req.AccountID {
		return nil, fmt.Errorf("%w: operation %s does not belong to account %s",
			domain.ErrOperationNotFound, req.OperationID, req.AccountID)
	}

	// Validates both revertibility of the type and the Completed -> Reverted
	// transition before the account is touched.
	if err := original.Revert(); err != nil {
		observability.IncrementOperation(revertMetricType, outcomeRejected)
		return nil, err
	}

	if err := s.applyInverse(account, original); err != nil {
		observability.IncrementOperation(revertMetricType, outcomeRejected)
		return nil, err
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}
	if err := s.operations.Update(ctx, original); err != nil {
		return nil, fmt.Errorf("persist operation: %w", err)
	}

	if err := s.publish(ctx, original, domain.NewRevertedEvent(original)); err != nil {
		return nil, err
	}

	observability.IncrementOperation(revertMetricType, outcomeCompleted)
	s.logger.Info("operation reverted",
		zap.String("operation_id", original.ID.String()),
		zap.String("account_id", req.AccountID.String()),
		zap.String("original_type", string(original.Type)),
		zap.String("amount", original.Amount.String()),
	)
	return original, nil
}

func (s *Service) applyInverse(account *domain.Account, original *domain.Operation) error {
	switch original.Type {
	case domain.OperationTypeDebit:
		return account.Credit(original.Amount)
	case domain.OperationTypeCredit:
		return account.Debit(original.Amount)
	case domain.OperationTypeReserve:
		return account.Release(original.Amount)
	case domain.OperationTypeCapture:
		return account.Credit(original.Amount)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnrevertibleOperation, original.Type)
	}
}

// Operation looks up a single operation by id, for the read surface.
func (s *Service) Operation(ctx context.Context, operationID uuid.UUID) (*domain.Operation, error) {
	return s.operations.Get(ctx, operationID)
}

// Account looks up a single account by id, for the read surface.
func (s *Service) Account(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.accounts.Get(ctx, accountID)
}
