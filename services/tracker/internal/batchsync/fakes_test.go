package batchsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

var (
	_ Transport = (*Beacon)(nil)
	_ Transport = (*HTTPPost)(nil)
	_ Transport = (*Fallback)(nil)
	_ Queue     = (*progress.Pending)(nil)

	_ progress.Flusher = (*Syncer)(nil)
)

// fakeTransport records payloads. When gate is set, Send blocks until it is
// closed.
type fakeTransport struct {
	name    string
	mu      sync.Mutex
	sent    [][]byte
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeTransport) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeTransport) Send(ctx context.Context, payload []byte) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, append([]byte(nil), payload...))
	return nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var errDown = errors.New("collector unreachable")

type stores struct {
	history *progress.EventLog
	pending *progress.Pending
	rec     *progress.Recorder
}

func newStores(t *testing.T) *stores {
	t.Helper()
	docs := docstore.NewMemoryStore()
	s := &stores{
		history: progress.NewEventLog(docs, nil),
		pending: progress.NewPending(docs, nil),
	}
	mastery := progress.NewMasteryStore(docs, nil)
	// Threshold high enough that recording never triggers on its own.
	s.rec = progress.NewRecorder("s1", s.history, s.pending, mastery, progress.WithThreshold(1_000_000))
	return s
}

func (s *stores) record(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, err := s.rec.Record(context.Background(), progress.Response{ItemKey: k, Outcome: progress.OutcomeKnow}); err != nil {
			t.Fatalf("record %s: %v", k, err)
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
