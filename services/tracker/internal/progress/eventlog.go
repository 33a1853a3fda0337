package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// EventLog is the append-only history of every recorded event, in recording
// order. It is never pruned and survives across sessions.
type EventLog struct {
	mu     sync.RWMutex
	docs   docstore.Store
	log    *zap.Logger
	events []Event
}

func NewEventLog(docs docstore.Store, log *zap.Logger) *EventLog {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventLog{docs: docs, log: log}
}

// Load replaces the in-memory log with the persisted document.
func (l *EventLog) Load(ctx context.Context) error {
	var events []Event
	reset, err := loadDocument(ctx, l.docs, l.log, KeyHistory, &events)
	if err != nil {
		return err
	}
	if reset {
		events = nil
	}
	l.mu.Lock()
	l.events = events
	l.mu.Unlock()
	return nil
}

// Append persists the log with ev added. On a write failure the log is
// unchanged.
func (l *EventLog) Append(ctx context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(l.events, ev)
	if err := saveDocument(ctx, l.docs, KeyHistory, next); err != nil {
		return err
	}
	l.events = next
	return nil
}

// Import loads a previously exported history into an empty log.
func (l *EventLog) Import(ctx context.Context, events []Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) > 0 {
		return ErrLogNotEmpty
	}
	next := make([]Event, len(events))
	copy(next, events)
	if err := saveDocument(ctx, l.docs, KeyHistory, next); err != nil {
		return err
	}
	l.events = next
	return nil
}

// reset empties the log after a failed import.
func (l *EventLog) reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := saveDocument(ctx, l.docs, KeyHistory, []Event{}); err != nil {
		return err
	}
	l.events = nil
	return nil
}

// Events returns a copy of the full history.
func (l *EventLog) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// unappend undoes an Append of ev when a later write for the same record
// failed. It is a no-op if ev is no longer the tail.
func (l *EventLog) unappend(ctx context.Context, ev Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.events)
	if n == 0 || l.events[n-1] != ev {
		return nil
	}
	prev := l.events[:n-1]
	if err := saveDocument(ctx, l.docs, KeyHistory, prev); err != nil {
		return err
	}
	l.events = prev
	return nil
}
