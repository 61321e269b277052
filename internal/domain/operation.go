package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OperationType string

const (
	OperationTypeCredit   OperationType = "credit"
	OperationTypeDebit    OperationType = "debit"
	OperationTypeReserve  OperationType = "reserve"
	OperationTypeCapture  OperationType = "capture"
	OperationTypeRelease  OperationType = "release"
	OperationTypeTransfer OperationType = "transfer"
)

type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "PENDING"
	OperationStatusCompleted OperationStatus = "COMPLETED"
	OperationStatusFailed    OperationStatus = "FAILED"
	OperationStatusReverted  OperationStatus = "REVERTED"
)

// operationTransitions is the full status machine. FAILED follows COMPLETED
// only when event publication exhausts after the ledger mutation committed.
// FAILED and REVERTED are terminal.
var operationTransitions = map[OperationStatus]map[OperationStatus]struct{}{
	OperationStatusPending: {
		OperationStatusCompleted: {},
		OperationStatusFailed:    {},
	},
	OperationStatusCompleted: {
		OperationStatusFailed:   {},
		OperationStatusReverted: {},
	},
	OperationStatusFailed:   {},
	OperationStatusReverted: {},
}

// Operation records the intent and outcome of one ledger action. Its ID is
// the caller-supplied idempotency key: replaying the same ID is a no-op.
// Rows are append-only; only Status and CompletedAt ever change.
type Operation struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Type        OperationType   `json:"type"`
	Status      OperationStatus `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// NewOperation creates a pending operation keyed by the idempotency key.
func NewOperation(id, accountID uuid.UUID, opType OperationType, amount decimal.Decimal) *Operation {
	return &Operation{
		ID:        id,
		AccountID: accountID,
		Type:      opType,
		Status:    OperationStatusPending,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

// RestoreOperation rebuilds an operation from its persisted state.
func RestoreOperation(id, accountID uuid.UUID, opType OperationType, status OperationStatus, amount decimal.Decimal, createdAt time.Time, completedAt *time.Time) *Operation {
	return &Operation{
		ID:          id,
		AccountID:   accountID,
		Type:        opType,
		Status:      status,
		Amount:      amount,
		CreatedAt:   createdAt,
		CompletedAt: completedAt,
	}
}

func (o *Operation) Complete() error {
	if err := o.transition(OperationStatusCompleted); err != nil {
		return err
	}
	now := time.Now().UTC()
	o.CompletedAt = &now
	return nil
}

func (o *Operation) Fail() error {
	return o.transition(OperationStatusFailed)
}

func (o *Operation) Revert() error {
	if !o.Revertible() {
		return fmt.Errorf("%w: %s", ErrUnrevertibleOperation, o.Type)
	}
	return o.transition(OperationStatusReverted)
}

// Revertible reports whether the operation type maps to a defined inverse
// effect. Transfers have no single-account inverse in this design.
func (o *Operation) Revertible() bool {
	switch o.Type {
	case OperationTypeCredit, OperationTypeDebit, OperationTypeReserve, OperationTypeCapture:
		return true
	default:
		return false
	}
}

func (o *Operation) transition(next OperationStatus) error {
	allowed, ok := operationTransitions[o.Status]
	if !ok {
		return fmt.Errorf("%w: unknown status %s", ErrInvalidTransition, o.Status)
	}
	if _, ok := allowed[next]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	return nil
}

// Clone returns an independent copy for in-memory stores.
func (o *Operation) Clone() *Operation {
	clone := *o
	if o.CompletedAt != nil {
		completedAt := *o.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}
