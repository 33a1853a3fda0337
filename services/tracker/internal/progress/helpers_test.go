package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// flakyStore fails Put for the keys in failKeys.
type flakyStore struct {
	*docstore.MemoryStore
	mu       sync.Mutex
	failKeys map[string]bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: docstore.NewMemoryStore(), failKeys: map[string]bool{}}
}

func (s *flakyStore) failOn(key string, fail bool) {
	s.mu.Lock()
	s.failKeys[key] = fail
	s.mu.Unlock()
}

func (s *flakyStore) Put(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	fail := s.failKeys[key]
	s.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return s.MemoryStore.Put(ctx, key, body)
}

// cancellingStore cancels the caller's context while writing cancelKey and
// fails that write, the way a backend sees a client disconnect mid-request.
// Every Put honours an already-cancelled context.
type cancellingStore struct {
	*docstore.MemoryStore
	cancelKey string
	cancel    context.CancelFunc
}

func (s *cancellingStore) Put(ctx context.Context, key string, body []byte) error {
	if key == s.cancelKey && s.cancel != nil {
		s.cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.MemoryStore.Put(ctx, key, body)
}

type countingFlusher struct {
	mu      sync.Mutex
	reasons []string
}

func (f *countingFlusher) Trigger(reason string) {
	f.mu.Lock()
	f.reasons = append(f.reasons, reason)
	f.mu.Unlock()
}

func (f *countingFlusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reasons)
}

type fixture struct {
	docs    docstore.Store
	history *EventLog
	pending *Pending
	mastery *MasteryStore
	rec     *Recorder
	flusher *countingFlusher
}

func newFixture(t *testing.T, docs docstore.Store, opts ...RecorderOption) *fixture {
	t.Helper()
	if docs == nil {
		docs = docstore.NewMemoryStore()
	}
	f := &fixture{
		docs:    docs,
		history: NewEventLog(docs, nil),
		pending: NewPending(docs, nil),
		mastery: NewMasteryStore(docs, nil),
		flusher: &countingFlusher{},
	}
	ctx := context.Background()
	for _, load := range []func(context.Context) error{f.history.Load, f.pending.Load, f.mastery.Load} {
		if err := load(ctx); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	base := []RecorderOption{
		WithFlusher(f.flusher),
		WithStudentID("student-1"),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	}
	f.rec = NewRecorder("session-1", f.history, f.pending, f.mastery, append(base, opts...)...)
	return f
}

func (f *fixture) record(t *testing.T, key string, outcome Outcome) Event {
	t.Helper()
	ev, err := f.rec.Record(context.Background(), Response{
		ItemKey:   key,
		ItemGloss: "gloss of " + key,
		Outcome:   outcome,
		Category:  "Food",
		Source:    "flashcard",
	})
	if err != nil {
		t.Fatalf("record %s: %v", key, err)
	}
	return ev
}

func eventsEqual(a, b []Event) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if !x.Timestamp.Equal(y.Timestamp) {
			return false
		}
		x.Timestamp, y.Timestamp = time.Time{}, time.Time{}
		if x != y {
			return false
		}
	}
	return true
}
