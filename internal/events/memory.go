package events

import (
	"context"
	"sync"

	"github.com/velozpay/ledger/internal/domain"
)

// InMemoryPublisher records events instead of delivering them. It backs the
// broker-less run mode and doubles as a test spy.
type InMemoryPublisher struct {
	mu     sync.Mutex
	events []domain.OperationEvent
}

func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

func (p *InMemoryPublisher) Publish(_ context.Context, event domain.OperationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (p *InMemoryPublisher) Events() []domain.OperationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	snapshot := make([]domain.OperationEvent, len(p.events))
	copy(snapshot, p.events)
	return snapshot
}
