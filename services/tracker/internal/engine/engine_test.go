package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/batchsync"
	"github.com/example/vocab-tracker/services/tracker/internal/config"
	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

type memTransport struct {
	mu    sync.Mutex
	sends [][]byte
	err   error
}

func (m *memTransport) Name() string { return "mem" }

func (m *memTransport) Send(_ context.Context, p []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, p)
	return nil
}

func (m *memTransport) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

func newEngine(t *testing.T, docs docstore.Store, tr batchsync.Transport) *Engine {
	t.Helper()
	if docs == nil {
		docs = docstore.NewMemoryStore()
	}
	e := New(Options{Docs: docs, Transport: tr, StudentID: "minji", FlushInterval: -1})
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return e
}

func answer(key string, o progress.Outcome) progress.Response {
	return progress.Response{ItemKey: key, ItemGloss: "apple", Outcome: o, Category: "Food", Source: "flashcard"}
}

func TestEngine_RecordBeforeInit(t *testing.T) {
	e := New(Options{Docs: docstore.NewMemoryStore()})
	if _, err := e.Record(context.Background(), answer("사과", progress.OutcomeKnow)); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestEngine_SessionIDIsGenerated(t *testing.T) {
	a := New(Options{})
	b := New(Options{})
	if a.SessionID() == "" || a.SessionID() == b.SessionID() {
		t.Fatalf("expected distinct generated session ids, got %q %q", a.SessionID(), b.SessionID())
	}
}

func TestEngine_AppleScenario(t *testing.T) {
	e := newEngine(t, nil, &memTransport{})
	ctx := context.Background()
	if _, err := e.Record(ctx, answer("사과", progress.OutcomeKnow)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := e.Record(ctx, answer("사과", progress.OutcomeDontKnow)); err != nil {
		t.Fatalf("record: %v", err)
	}
	rec, _ := e.Mastery().Get("사과")
	if rec.Status != progress.OutcomeDontKnow || rec.ObservationCount != 2 {
		t.Fatalf("expected {dont_know 2}, got %+v", rec)
	}
	if _, ok := e.Mastery().WeakItems()["사과"]; !ok {
		t.Fatal("expected 사과 in weak items")
	}
}

func TestEngine_SuccessfulFlushEmptiesPendingKeepsLog(t *testing.T) {
	tr := &memTransport{}
	e := newEngine(t, nil, tr)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if _, err := e.Record(ctx, answer(k, progress.OutcomeUnsure)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	before := e.History().Events()

	if res, err := e.Flush(ctx); err != nil || res != batchsync.ResultSent {
		t.Fatalf("expected sent, got %s err=%v", res, err)
	}
	if e.Pending().Len() != 0 {
		t.Fatalf("expected pending empty, got %d", e.Pending().Len())
	}
	after := e.History().Events()
	if len(after) != len(before) {
		t.Fatalf("expected log unchanged, got %d vs %d", len(after), len(before))
	}
}

func TestEngine_ThresholdFlushesAutomatically(t *testing.T) {
	tr := &memTransport{}
	e := newEngine(t, nil, tr)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		if _, err := e.Record(ctx, answer("w", progress.OutcomeKnow)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	e.syncer.Wait()
	if tr.count() != 1 {
		t.Fatalf("expected one delivery, got %d", tr.count())
	}
	if e.Pending().Len() != 0 {
		t.Fatalf("expected pending empty, got %d", e.Pending().Len())
	}
}

func TestEngine_HiddenTriggersFlush(t *testing.T) {
	tr := &memTransport{}
	e := newEngine(t, nil, tr)
	if _, err := e.Record(context.Background(), answer("a", progress.OutcomeKnow)); err != nil {
		t.Fatalf("record: %v", err)
	}

	e.SetVisibility(VisibilityVisible)
	e.syncer.Wait()
	if tr.count() != 0 {
		t.Fatal("expected visible to leave pending alone")
	}

	e.SetVisibility(VisibilityHidden)
	e.syncer.Wait()
	if tr.count() != 1 || e.Pending().Len() != 0 {
		t.Fatalf("expected hidden to flush, got sends=%d pending=%d", tr.count(), e.Pending().Len())
	}
}

func TestEngine_TeardownFlushesAndPersistsAcrossSessions(t *testing.T) {
	docs := docstore.NewMemoryStore()
	tr := &memTransport{err: errors.New("offline")}
	e := newEngine(t, docs, tr)
	ctx := context.Background()
	if _, err := e.Record(ctx, answer("a", progress.OutcomeKnow)); err != nil {
		t.Fatalf("record: %v", err)
	}
	if res, err := e.Teardown(ctx); err == nil || res != batchsync.ResultFailed {
		t.Fatalf("expected failed teardown flush, got %s err=%v", res, err)
	}
	if res, _ := e.Teardown(ctx); res != batchsync.ResultEmpty {
		t.Fatalf("expected second teardown to be a no-op, got %s", res)
	}

	// Next session picks up the retained batch.
	online := &memTransport{}
	next := newEngine(t, docs, online)
	if next.Pending().Len() != 1 || next.History().Len() != 1 {
		t.Fatalf("expected retained state, got pending=%d log=%d", next.Pending().Len(), next.History().Len())
	}
	if res, err := next.Teardown(ctx); err != nil || res != batchsync.ResultSent {
		t.Fatalf("expected sent on next teardown, got %s err=%v", res, err)
	}
	if online.count() != 1 {
		t.Fatalf("expected one delivery, got %d", online.count())
	}
}

func TestEngine_TimerTriggersFlush(t *testing.T) {
	tr := &memTransport{}
	e := New(Options{Docs: docstore.NewMemoryStore(), Transport: tr, FlushInterval: 30 * time.Millisecond})
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer e.Teardown(context.Background())
	if _, err := e.Record(context.Background(), answer("a", progress.OutcomeKnow)); err != nil {
		t.Fatalf("record: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for tr.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for timer flush")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEngine_Import(t *testing.T) {
	e := newEngine(t, nil, &memTransport{})
	ctx := context.Background()
	events := []progress.Event{{Timestamp: time.Now().UTC(), ItemKey: "물", Outcome: progress.OutcomeKnow}}
	if err := e.Import(ctx, events); err != nil {
		t.Fatalf("import: %v", err)
	}
	if rec, ok := e.Mastery().Get("물"); !ok || rec.ObservationCount != 1 || rec.Status != progress.OutcomeKnow {
		t.Fatalf("expected mastery rebuilt from import, got %+v ok=%v", rec, ok)
	}
	if e.Pending().Len() != 0 {
		t.Fatalf("expected imported events not queued, got %d pending", e.Pending().Len())
	}
	if err := e.Import(ctx, events); !errors.Is(err, progress.ErrLogNotEmpty) {
		t.Fatalf("expected ErrLogNotEmpty, got %v", err)
	}
}

func TestOpen_MemoryStoreWithoutCollector(t *testing.T) {
	cfg := config.Config{StoreDSN: "memory://", FlushThreshold: 20, FlushInterval: time.Hour}
	e, res, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer res.Close()
	defer e.Teardown(context.Background())

	if e.SyncStatus().Transport != "none" {
		t.Fatalf("expected no transport, got %q", e.SyncStatus().Transport)
	}
}

func TestParseVisibility(t *testing.T) {
	if v, err := ParseVisibility(" Hidden "); err != nil || v != VisibilityHidden {
		t.Fatalf("expected hidden, got %q err=%v", v, err)
	}
	if _, err := ParseVisibility("minimized"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}
