package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// Pending holds events recorded but not yet delivered to the collector.
// Every pending event is also in the EventLog. A successful flush drops the
// whole batch it read; events recorded while that flush was in flight stay.
type Pending struct {
	mu     sync.Mutex
	docs   docstore.Store
	log    *zap.Logger
	events []Event
}

func NewPending(docs docstore.Store, log *zap.Logger) *Pending {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pending{docs: docs, log: log}
}

func (p *Pending) Load(ctx context.Context) error {
	var events []Event
	reset, err := loadDocument(ctx, p.docs, p.log, KeyPending, &events)
	if err != nil {
		return err
	}
	if reset {
		events = nil
	}
	p.mu.Lock()
	p.events = events
	p.mu.Unlock()
	return nil
}

func (p *Pending) Append(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := append(p.events, ev)
	if err := saveDocument(ctx, p.docs, KeyPending, next); err != nil {
		return err
	}
	p.events = next
	return nil
}

// Batch returns a copy of everything currently pending, oldest first.
func (p *Pending) Batch() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// Drop removes the n oldest events after they were delivered.
func (p *Pending) Drop(ctx context.Context, n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n <= 0 {
		return nil
	}
	if n > len(p.events) {
		n = len(p.events)
	}
	next := make([]Event, len(p.events)-n)
	copy(next, p.events[n:])
	if err := saveDocument(ctx, p.docs, KeyPending, next); err != nil {
		return err
	}
	p.events = next
	return nil
}

func (p *Pending) unappend(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.events)
	if n == 0 || p.events[n-1] != ev {
		return nil
	}
	prev := p.events[:n-1]
	if err := saveDocument(ctx, p.docs, KeyPending, prev); err != nil {
		return err
	}
	p.events = prev
	return nil
}
