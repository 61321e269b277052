// Package ledger orchestrates financial operations against per-client
// accounts: credit, debit, reserve, capture, release, transfer and revert.
// Every flow serializes on the account's lock, replays idempotently by
// operation id, and publishes a domain event through a retrying publisher.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/velozpay/ledger/internal/domain"
	"github.com/velozpay/ledger/internal/events"
	"github.com/velozpay/ledger/internal/lock"
	"github.com/velozpay/ledger/internal/observability"
	"go.uber.org/zap"
)

const (
	outcomeCompleted     = "completed"
	outcomeRejected      = "rejected"
	outcomeReplayed      = "replayed"
	outcomePublishFailed = "publish_failed"
)

// Service is the ledger operation orchestrator.
type Service struct {
	accounts   AccountStore
	operations OperationStore
	locks      *lock.Registry
	publisher  events.Publisher
	logger     *zap.Logger
}

// NewService wires the orchestrator. The publisher is expected to be the
// retrying wrapper; the service treats any publish error as exhaustion.
func NewService(accounts AccountStore, operations OperationStore, locks *lock.Registry, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		accounts:   accounts,
		operations: operations,
		locks:      locks,
		publisher:  publisher,
		logger:     logger,
	}
}

// Request is the input for a single-account flow. OperationID is the
// caller-supplied idempotency key.
type Request struct {
	AccountID   uuid.UUID
	OperationID uuid.UUID
	Amount      decimal.Decimal
}

func (s *Service) Credit(ctx context.Context, req Request) (*domain.Operation, error) {
	return s.execute(ctx, req, domain.OperationTypeCredit, func(a *domain.Account) error {
		return a.Credit(req.Amount)
	})
}

func (s *Service) Debit(ctx context.Context, req Request) (*domain.Operation, error) {
	return s.execute(ctx, req, domain.OperationTypeDebit, func(a *domain.Account) error {
		return a.Debit(req.Amount)
	})
}

func (s *Service) Reserve(ctx context.Context, req Request) (*domain.Operation, error) {
	return s.execute(ctx, req, domain.OperationTypeReserve, func(a *domain.Account) error {
		return a.Reserve(req.Amount)
	})
}

func (s *Service) Capture(ctx context.Context, req Request) (*domain.Operation, error) {
	return s.execute(ctx, req, domain.OperationTypeCapture, func(a *domain.Account) error {
		return a.Capture(req.Amount)
	})
}

func (s *Service) Release(ctx context.Context, req Request) (*domain.Operation, error) {
	return s.execute(ctx, req, domain.OperationTypeRelease, func(a *domain.Account) error {
		return a.Release(req.Amount)
	})
}

// execute runs the common single-account protocol: lock, idempotency check,
// in-memory mutation, persist account, persist completed operation, publish.
// The account is loaded inside the lock so the read-modify-write cycle never
// races another writer. A business-rule rejection persists nothing.
func (s *Service) execute(ctx context.Context, req Request, opType domain.OperationType, mutate func(*domain.Account) error) (*domain.Operation, error) {
	release, err := s.locks.Acquire(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("acquire account lock: %w", err)
	}
	defer release()

	if existing, found, err := s.replay(ctx, req.OperationID, opType); err != nil || found {
		return existing, err
	}

	account, err := s.accounts.Get(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}

	if err := mutate(account); err != nil {
		observability.IncrementOperation(string(opType), outcomeRejected)
		return nil, err
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	op := domain.NewOperation(req.OperationID, req.AccountID, opType, req.Amount)
	if err := op.Complete(); err != nil {
		return nil, err
	}
	if err := s.operations.Add(ctx, op); err != nil {
		return nil, fmt.Errorf("persist operation: %w", err)
	}

	if err := s.publish(ctx, op, domain.NewOperationEvent(op)); err != nil {
		return nil, err
	}

	observability.IncrementOperation(string(opType), outcomeCompleted)
	s.logger.Info("operation completed",
		zap.String("operation_id", op.ID.String()),
		zap.String("account_id", op.AccountID.String()),
		zap.String("type", string(op.Type)),
		zap.String("amount", op.Amount.String()),
	)
	return op, nil
}

// replay short-circuits a repeated operation id to a successful no-op. It
// must run inside the account lock so a concurrent duplicate cannot slip in
// between the check and the Add.
func (s *Service) replay(ctx context.Context, operationID uuid.UUID, opType domain.OperationType) (*domain.Operation, bool, error) {
	existing, err := s.operations.Get(ctx, operationID)
	if err == nil {
		observability.IncrementOperation(string(opType), outcomeReplayed)
		s.logger.Info("operation replayed",
			zap.String("operation_id", operationID.String()),
			zap.String("type", string(opType)),
		)
		return existing, true, nil
	}
	if errors.Is(err, domain.ErrOperationNotFound) {
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("check idempotency: %w", err)
}

// publish delivers the event through the retrying publisher. On exhaustion
// the operation is marked Failed and the error surfaces to the caller; the
// account mutation persisted earlier stays committed. That eventual
// consistency gap is specified behavior, tracked by the Failed status and
// the publish_exhausted metric.
func (s *Service) publish(ctx context.Context, op *domain.Operation, event domain.OperationEvent) error {
	err := s.publisher.Publish(ctx, event)
	if err == nil {
		return nil
	}

	if failErr := op.Fail(); failErr == nil {
		if updateErr := s.operations.Update(ctx, op); updateErr != nil {
			s.logger.Error("failed to mark operation as failed",
				zap.String("operation_id", op.ID.String()),
				zap.Error(updateErr),
			)
		}
	}

	observability.IncrementOperation(string(op.Type), outcomePublishFailed)
	s.logger.Error("event publication exhausted",
		zap.String("operation_id", op.ID.String()),
		zap.String("type", event.Type),
		zap.Error(err),
	)
	return fmt.Errorf("publish operation event: %w", err)
}
