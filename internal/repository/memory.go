package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/velozpay/ledger/internal/domain"
)

// MemoryStore keeps the whole ledger in process memory. It backs the
// broker-and-database-free run mode and the test suites. Reads hand out
// clones so callers can only change durable state through the store's write
// methods. Accounts() and Operations() return the typed views the
// orchestrator consumes.
type MemoryStore struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]*domain.Client
	accounts   map[uuid.UUID]*domain.Account
	operations map[uuid.UUID]*domain.Operation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:    map[uuid.UUID]*domain.Client{},
		accounts:   map[uuid.UUID]*domain.Account{},
		operations: map[uuid.UUID]*domain.Operation{},
	}
}

// Accounts returns the account store view.
func (s *MemoryStore) Accounts() *MemoryAccountStore {
	return &MemoryAccountStore{store: s}
}

// Operations returns the operation store view.
func (s *MemoryStore) Operations() *MemoryOperationStore {
	return &MemoryOperationStore{store: s}
}

// AddClient registers a new client, for seeding and tests.
func (s *MemoryStore) AddClient(_ context.Context, client *domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *client
	s.clients[client.ID] = &clone
	return nil
}

// AddAccount registers a new account, for seeding and tests.
func (s *MemoryStore) AddAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account.Clone()
	return nil
}

func (s *MemoryStore) ListClients(_ context.Context) ([]*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := make([]*domain.Client, 0, len(s.clients))
	for _, client := range s.clients {
		clone := *client
		clients = append(clients, &clone)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].CreatedAt.Before(clients[j].CreatedAt) })
	return clients, nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account.Clone())
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.Before(accounts[j].CreatedAt) })
	return accounts, nil
}

func (s *MemoryStore) ListOperations(_ context.Context) ([]*domain.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	operations := make([]*domain.Operation, 0, len(s.operations))
	for _, op := range s.operations {
		operations = append(operations, op.Clone())
	}
	sort.Slice(operations, func(i, j int) bool { return operations[i].CreatedAt.Before(operations[j].CreatedAt) })
	return operations, nil
}

// MemoryAccountStore implements the ledger's AccountStore contract.
type MemoryAccountStore struct {
	store *MemoryStore
}

func (s *MemoryAccountStore) Get(_ context.Context, accountID uuid.UUID) (*domain.Account, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	account, ok := s.store.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

func (s *MemoryAccountStore) Update(_ context.Context, account *domain.Account) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	s.store.accounts[account.ID] = account.Clone()
	return nil
}

// MemoryOperationStore implements the ledger's OperationStore contract.
type MemoryOperationStore struct {
	store *MemoryStore
}

func (s *MemoryOperationStore) Get(_ context.Context, operationID uuid.UUID) (*domain.Operation, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	op, ok := s.store.operations[operationID]
	if !ok {
		return nil, domain.ErrOperationNotFound
	}
	return op.Clone(), nil
}

func (s *MemoryOperationStore) Add(_ context.Context, op *domain.Operation) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.operations[op.ID] = op.Clone()
	return nil
}

func (s *MemoryOperationStore) Update(_ context.Context, op *domain.Operation) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.operations[op.ID]; !ok {
		return domain.ErrOperationNotFound
	}
	s.store.operations[op.ID] = op.Clone()
	return nil
}
