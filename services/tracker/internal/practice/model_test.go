package practice

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

func testCards() []catalog.Card {
	return []catalog.Card{
		{Korean: "사과", Rom: "sagwa", Gloss: "apple", Category: "Food"},
		{Korean: "물", Rom: "mul", Gloss: "water", Category: "Drinks"},
		{Korean: "빵", Rom: "ppang", Gloss: "bread", Category: "Food"},
	}
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{Docs: docstore.NewMemoryStore(), FlushInterval: -1})
	if err := e.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return e
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_AnswerRecordsAndReinserts(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), e, e.Mastery(), testCards())

	m = send(m, runes("3"))

	rec, ok := e.Mastery().Get("사과")
	if !ok || rec.Status != progress.OutcomeDontKnow {
		t.Fatalf("expected 사과 recorded as dont_know, got %+v", rec)
	}
	ev := e.History().Events()[0]
	if ev.Source != "flashcard" || ev.ItemGloss != "apple" || ev.Category != "Food" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if m.seq.Len() != 4 {
		t.Fatalf("expected missed card re-queued, got len %d", m.seq.Len())
	}
	if c, _ := m.seq.Current(); c.Korean != "물" {
		t.Fatalf("expected to advance to 물, got %s", c.Korean)
	}
}

func TestModel_InitialOrderIsWeakestFirst(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	if _, err := e.Record(ctx, progress.Response{ItemKey: "사과", Outcome: progress.OutcomeKnow}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := e.Record(ctx, progress.Response{ItemKey: "빵", Outcome: progress.OutcomeDontKnow}); err != nil {
		t.Fatalf("record: %v", err)
	}

	m := New(ctx, e, e.Mastery(), testCards())
	var order []string
	for _, c := range m.seq.Items() {
		order = append(order, c.Korean)
	}
	if strings.Join(order, ",") != "빵,물,사과" {
		t.Fatalf("expected 빵,물,사과, got %v", order)
	}
}

func TestModel_FlipAndDirection(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), e, e.Mastery(), testCards())

	if strings.Contains(m.View(), "apple") {
		t.Fatal("expected back hidden before flip")
	}
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if !strings.Contains(m.View(), "apple") || !strings.Contains(m.View(), "sagwa") {
		t.Fatalf("expected back and romanization after flip, got:\n%s", m.View())
	}

	m = send(m, runes("d"))
	if m.flipped {
		t.Fatal("expected direction change to reset flip")
	}
	if !strings.Contains(m.View(), "EN → KR") {
		t.Fatalf("expected EN → KR direction, got:\n%s", m.View())
	}
}

func TestModel_Navigation(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), e, e.Mastery(), testCards())

	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if c, _ := m.seq.Current(); c.Korean != "빵" {
		t.Fatalf("expected wrap to last card, got %s", c.Korean)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	if c, _ := m.seq.Current(); c.Korean != "사과" {
		t.Fatalf("expected back to first card, got %s", c.Korean)
	}
}

func TestModel_ReviewWeakAllClear(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), e, e.Mastery(), testCards())

	m = send(m, runes("w"))
	if !strings.Contains(m.View(), "All clear!") {
		t.Fatalf("expected All clear!, got:\n%s", m.View())
	}

	m = send(m, runes("w"), runes("2"))
	m = send(m, runes("w"))
	if m.seq.Len() != 1 {
		t.Fatalf("expected one weak card, got %d", m.seq.Len())
	}
	if c, _ := m.seq.Current(); c.Korean != "사과" {
		t.Fatalf("expected 사과 in review, got %s", c.Korean)
	}
	if !strings.Contains(m.View(), "Review Weak (1)") {
		t.Fatalf("expected weak count in status line, got:\n%s", m.View())
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, progress.Response) (progress.Event, error) {
	return progress.Event{}, errors.New("disk full")
}

func TestModel_RecordFailureShowsNoticeAndContinues(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), failingRecorder{}, e.Mastery(), testCards())

	m = send(m, runes("1"))
	if !strings.Contains(m.View(), "not saved") {
		t.Fatalf("expected notice, got:\n%s", m.View())
	}
	if m.seq.Position() != 1 {
		t.Fatalf("expected session to continue, got position %d", m.seq.Position())
	}
}

func TestModel_Quit(t *testing.T) {
	e := newTestEngine(t)
	m := New(context.Background(), e, e.Mastery(), testCards())
	if _, cmd := m.Update(runes("q")); cmd == nil {
		t.Fatal("expected quit command")
	}
}
