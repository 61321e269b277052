package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/observability"
	"go.uber.org/zap"
)

// TransferRequest moves Amount from the source to the destination account.
type TransferRequest struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	OperationID          uuid.UUID
	Amount               decimal.Decimal
}

// Transfer debits the source and credits the destination as one serialized
// flow. Both locks are taken in ascending account-id order regardless of
// transfer direction, so two opposing transfers between the same pair can
// never deadlock. The single operation record is owned by the source account.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*domain.Operation, error) {
	if req.SourceAccountID == req.DestinationAccountID {
		return nil, domain.ErrSameAccountTransfer
	}

	first, second := req.SourceAccountID, req.DestinationAccountID
	if first.String() > second.String() {
		first, second = second, first
	}

	releaseFirst, err := s.locks.Acquire(ctx, first)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	defer releaseFirst()

	releaseSecond, err := s.locks.Acquire(ctx, second)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	defer releaseSecond()

	if existing, found, err := s.replay(ctx, req.OperationID, domain.OperationTypeTransfer); err != nil || found {
		return existing, err
	}

	source, err := s.accounts.Get(ctx, req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	destination, err := s.accounts.Get(ctx, req.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	if err := source.Debit(req.Amount); err != nil {
		observability.IncrementOperation(string(domain.OperationTypeTransfer), outcomeRejected)
		return nil, err
	}
	if err := destination.Credit(req.Amount); err != nil {
		observability.IncrementOperation(string(domain.OperationTypeTransfer), outcomeRejected)
		return nil, err
	}

	if err := s.accounts.Update(ctx, source); err != nil {
		return nil, fmt.Errorf("persist source account: %w", err)
	}
	if err := s.accounts.Update(ctx, destination); err != nil {
		return nil, fmt.Errorf("persist destination account: %w", err)
	}

	op := domain.NewOperation(req.OperationID, req.SourceAccountID, domain.OperationTypeTransfer, req.Amount)
	if err := op.Complete(); err != nil {
		return nil, err
	}
	if err := s.operations.Add(ctx, op); err != nil {
		return nil, fmt.Errorf("persist operation: %w", err)
	}

	if err := s.publish(ctx, op, domain.NewOperationEvent(op)); err != nil {
		return nil, err
	}

	observability.IncrementOperation(string(domain.OperationTypeTransfer), outcomeCompleted)
	s.logger.Info("transfer completed",
		zap.String("operation_id", op.ID.String()),
		zap.String("source_account_id", req.SourceAccountID.String()),
		zap.String("destination_account_id", req.DestinationAccountID.String()),
		zap.String("amount", req.Amount.String()),
	)
	return op, nil
}
