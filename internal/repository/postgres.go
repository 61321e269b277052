package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/velozpay/ledger/internal/domain"
)

// PostgresStore persists the ledger in Postgres. The orchestrator's account
// lock serializes writers per account, so rows carry no optimistic
// concurrency token; the store is plain read-modify-write.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Accounts returns the account store view.
func (s *PostgresStore) Accounts() *PostgresAccountStore {
	return &PostgresAccountStore{db: s.db}
}

// Operations returns the operation store view.
func (s *PostgresStore) Operations() *PostgresOperationStore {
	return &PostgresOperationStore{db: s.db}
}

func (s *PostgresStore) AddClient(ctx context.Context, client *domain.Client) error {
	query := `INSERT INTO clients (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, client.ID, client.Name, client.CreatedAt); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, client_id, balance, reserved_balance, credit_limit, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query,
		account.ID, account.ClientID, account.Balance, account.ReservedBalance,
		account.CreditLimit, string(account.Status), account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM clients ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client := &domain.Client{}
		if err := rows.Scan(&client.ID, &client.Name, &client.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, client_id, balance, reserved_balance, credit_limit, status, created_at
		FROM accounts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) ListOperations(ctx context.Context) ([]*domain.Operation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, account_id, type, status, amount, created_at, completed_at
		FROM operations
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	var operations []*domain.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, op)
	}
	return operations, rows.Err()
}

// PostgresAccountStore implements the ledger's AccountStore contract.
type PostgresAccountStore struct {
	db *pgxpool.Pool
}

func (s *PostgresAccountStore) Get(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, client_id, balance, reserved_balance, credit_limit, status, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *PostgresAccountStore) Update(ctx context.Context, account *domain.Account) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE accounts
		SET balance = $1, reserved_balance = $2, credit_limit = $3, status = $4
		WHERE id = $5
	`, account.Balance, account.ReservedBalance, account.CreditLimit, string(account.Status), account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// PostgresOperationStore implements the ledger's OperationStore contract.
type PostgresOperationStore struct {
	db *pgxpool.Pool
}

func (s *PostgresOperationStore) Get(ctx context.Context, operationID uuid.UUID) (*domain.Operation, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, account_id, type, status, amount, created_at, completed_at
		FROM operations
		WHERE id = $1
	`, operationID)

	op, err := scanOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}
		return nil, err
	}
	return op, nil
}

func (s *PostgresOperationStore) Add(ctx context.Context, op *domain.Operation) error {
	query := `
		INSERT INTO operations (id, account_id, type, status, amount, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query,
		op.ID, op.AccountID, string(op.Type), string(op.Status), op.Amount, op.CreatedAt, op.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create operation: %w", err)
	}
	return nil
}

func (s *PostgresOperationStore) Update(ctx context.Context, op *domain.Operation) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE operations
		SET status = $1, completed_at = $2
		WHERE id = $3
	`, string(op.Status), op.CompletedAt, op.ID)
	if err != nil {
		return fmt.Errorf("failed to update operation: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrOperationNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		id, clientID                   uuid.UUID
		balance, reserved, creditLimit decimal.Decimal
		status                         string
		createdAt                      time.Time
	)
	if err := row.Scan(&id, &clientID, &balance, &reserved, &creditLimit, &status, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return domain.RestoreAccount(id, clientID, balance, reserved, creditLimit, domain.AccountStatus(status), createdAt), nil
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var (
		id, accountID uuid.UUID
		opType        string
		status        string
		amount        decimal.Decimal
		createdAt     time.Time
		completedAt   *time.Time
	)
	if err := row.Scan(&id, &accountID, &opType, &status, &amount, &createdAt, &completedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan operation: %w", err)
	}
	return domain.RestoreOperation(id, accountID, domain.OperationType(opType), domain.OperationStatus(status), amount, createdAt, completedAt), nil
}
