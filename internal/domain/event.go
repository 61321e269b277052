package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevertedEventSuffix marks events emitted for a reversal of the named type.
const RevertedEventSuffix = "_reverted"

// OperationEvent is the domain event published after an operation completes
// (or after the original operation of a revert flips to Reverted).
type OperationEvent struct {
	OperationID uuid.UUID       `json:"operation_id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
}

// NewOperationEvent builds the event for a completed operation.
func NewOperationEvent(op *Operation) OperationEvent {
	return OperationEvent{
		OperationID: op.ID,
		AccountID:   op.AccountID,
		Amount:      op.Amount,
		Type:        string(op.Type),
	}
}

// NewRevertedEvent builds the event for a reverted operation, with the type
// suffixed so consumers can tell a reversal from the original.
func NewRevertedEvent(op *Operation) OperationEvent {
	event := NewOperationEvent(op)
	event.Type += RevertedEventSuffix
	return event
}
