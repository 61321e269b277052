package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/velozpay/ledger/internal/domain"
)

// AccountStore is the durable source of truth for accounts between requests.
// Get must return an independent copy: the orchestrator mutates the aggregate
// in memory under the account lock and only Update makes the change durable.
type AccountStore interface {
	Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
}

// OperationStore persists the append-only operation audit trail. Get returns
// domain.ErrOperationNotFound for an unknown id, which is how the
// orchestrator detects a first-time operation versus an idempotent replay.
type OperationStore interface {
	Get(ctx context.Context, operationID uuid.UUID) (*domain.Operation, error)
	Add(ctx context.Context, op *domain.Operation) error
	Update(ctx context.Context, op *domain.Operation) error
}

// AdminStore serves the read-only administration surface.
type AdminStore interface {
	ListClients(ctx context.Context) ([]*domain.Client, error)
	ListAccounts(ctx context.Context) ([]*domain.Account, error)
	ListOperations(ctx context.Context) ([]*domain.Operation, error)
}
