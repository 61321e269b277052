// Package lock provides per-account mutual exclusion for ledger mutations.
// It is the sole serialization mechanism for conflicting writes on one
// account and assumes a single process instance owns all mutations for a
// given account; multi-process deployments need a distributed lock instead.
package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Registry maps account ids to binary semaphores. Entries are reference
// counted: an entry is dropped as soon as its last holder or waiter is gone,
// so the table never grows beyond the set of accounts currently in flight.
type Registry struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewRegistry() *Registry {
	return &Registry{entries: map[uuid.UUID]*entry{}}
}

// ReleaseFunc releases an acquired lock. Safe to call more than once.
type ReleaseFunc func()

// Acquire blocks until the caller holds the account's lock or ctx is done.
// There is no separate timeout knob; a deadline on ctx bounds the wait.
func (r *Registry) Acquire(ctx context.Context, accountID uuid.UUID) (ReleaseFunc, error) {
	e := r.retain(accountID)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		r.put(accountID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			r.put(accountID, e)
		})
	}, nil
}

func (r *Registry) retain(accountID uuid.UUID) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[accountID]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		r.entries[accountID] = e
	}
	e.refs++
	return e
}

func (r *Registry) put(accountID uuid.UUID, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(r.entries, accountID)
	}
}

// Len reports how many accounts currently have a lock entry.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
