package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account is the ledger aggregate. Balance may go negative down to the credit
// limit net of reservations; ReservedBalance never goes negative. All mutation
// methods are pure in-memory transitions and return a typed error when a
// business rule rejects the change. Callers are responsible for serializing
// concurrent mutations on the same account.
type Account struct {
	ID              uuid.UUID       `json:"id"`
	ClientID        uuid.UUID       `json:"client_id"`
	Balance         decimal.Decimal `json:"balance"`
	ReservedBalance decimal.Decimal `json:"reserved_balance"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	Status          AccountStatus   `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewAccount creates an active account with zero balance and reservations.
func NewAccount(clientID uuid.UUID, creditLimit decimal.Decimal) *Account {
	return &Account{
		ID:          uuid.New(),
		ClientID:    clientID,
		Balance:     decimal.Zero,
		CreditLimit: creditLimit,
		Status:      AccountStatusActive,
		CreatedAt:   time.Now().UTC(),
	}
}

// RestoreAccount rebuilds an account from its persisted state. Stores use this
// instead of writing fields directly so rehydration stays explicit.
func RestoreAccount(id, clientID uuid.UUID, balance, reserved, creditLimit decimal.Decimal, status AccountStatus, createdAt time.Time) *Account {
	return &Account{
		ID:              id,
		ClientID:        clientID,
		Balance:         balance,
		ReservedBalance: reserved,
		CreditLimit:     creditLimit,
		Status:          status,
		CreatedAt:       createdAt,
	}
}

// Available is the ceiling for Debit and Reserve:
// balance + creditLimit - reservedBalance.
func (a *Account) Available() decimal.Decimal {
	return a.Balance.Add(a.CreditLimit).Sub(a.ReservedBalance)
}

func (a *Account) Credit(amount decimal.Decimal) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) Debit(amount decimal.Decimal) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if a.Available().LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) Reserve(amount decimal.Decimal) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if a.Available().LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.ReservedBalance = a.ReservedBalance.Add(amount)
	return nil
}

// Capture converts a reservation into an actual balance reduction.
func (a *Account) Capture(amount decimal.Decimal) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if a.ReservedBalance.LessThan(amount) {
		return ErrInsufficientReserved
	}
	a.ReservedBalance = a.ReservedBalance.Sub(amount)
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Release frees reserved funds without touching the balance.
func (a *Account) Release(amount decimal.Decimal) error {
	if err := a.guard(amount); err != nil {
		return err
	}
	if a.ReservedBalance.LessThan(amount) {
		return ErrInsufficientReserved
	}
	a.ReservedBalance = a.ReservedBalance.Sub(amount)
	return nil
}

func (a *Account) guard(amount decimal.Decimal) error {
	if a.Status != AccountStatusActive {
		return ErrInactiveAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Clone returns an independent copy so in-memory stores never hand out
// aliased aggregates.
func (a *Account) Clone() *Account {
	clone := *a
	return &clone
}
