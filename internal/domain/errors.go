package domain

import "errors"

// Business-rule and lookup failures surfaced by the ledger. Callers branch on
// these with errors.Is; the HTTP layer maps each one to a stable problem type.
var (
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrInactiveAccount       = errors.New("account is not active")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientReserved  = errors.New("insufficient reserved balance")
	ErrAccountNotFound       = errors.New("account not found")
	ErrOperationNotFound     = errors.New("operation not found")
	ErrClientNotFound        = errors.New("client not found")
	ErrSameAccountTransfer   = errors.New("cannot transfer to the same account")
	ErrUnrevertibleOperation = errors.New("operation type cannot be reverted")
	ErrInvalidTransition     = errors.New("invalid operation status transition")
	ErrPublicationExhausted  = errors.New("event publication exhausted all attempts")
)
