package progress

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFlushThreshold is the pending length that triggers a flush.
const DefaultFlushThreshold = 20

const undoTimeout = 5 * time.Second

// Flusher is asked to deliver the pending queue. Trigger must not block.
type Flusher interface {
	Trigger(reason string)
}

type RecorderOption func(*Recorder)

func WithFlusher(f Flusher) RecorderOption {
	return func(r *Recorder) { r.flusher = f }
}

// WithThreshold overrides DefaultFlushThreshold; values < 1 are ignored.
func WithThreshold(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.threshold = n
		}
	}
}

func WithStudentID(id string) RecorderOption {
	return func(r *Recorder) { r.studentID = strings.TrimSpace(id) }
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

func WithLogger(log *zap.Logger) RecorderOption {
	return func(r *Recorder) { r.log = log }
}

// Recorder is the entry point practice modes call on every answer.
// Calls are serialized so the log and the pending queue agree on order.
type Recorder struct {
	mu sync.Mutex

	history *EventLog
	pending *Pending
	mastery *MasteryStore

	flusher   Flusher
	threshold int
	sessionID string
	studentID string
	now       func() time.Time
	log       *zap.Logger
}

func NewRecorder(sessionID string, history *EventLog, pending *Pending, mastery *MasteryStore, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		history:   history,
		pending:   pending,
		mastery:   mastery,
		threshold: DefaultFlushThreshold,
		sessionID: sessionID,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Record stores one response locally: log, pending queue, then mastery.
// If any write fails the earlier writes are undone and ErrNotPersisted is
// returned; the response is lost. When the pending queue reaches the
// threshold a flush is triggered without waiting for it.
func (r *Recorder) Record(ctx context.Context, resp Response) (Event, error) {
	resp.ItemKey = strings.TrimSpace(resp.ItemKey)
	if err := resp.Validate(); err != nil {
		return Event{}, err
	}

	r.mu.Lock()
	ev := Event{
		Timestamp: r.now().UTC().Round(0),
		StudentID: r.studentID,
		ItemKey:   resp.ItemKey,
		ItemGloss: resp.ItemGloss,
		Outcome:   resp.Outcome,
		Category:  resp.Category,
		Source:    resp.Source,
		SessionID: r.sessionID,
	}
	pendingLen, err := r.persist(ctx, ev)
	r.mu.Unlock()

	if err != nil {
		r.log.Warn("progress: response dropped",
			zap.String("item_key", ev.ItemKey),
			zap.String("outcome", string(ev.Outcome)),
			zap.Error(err),
		)
		return Event{}, err
	}

	if pendingLen >= r.threshold && r.flusher != nil {
		r.flusher.Trigger("threshold")
	}
	return ev, nil
}

func (r *Recorder) persist(ctx context.Context, ev Event) (int, error) {
	if err := r.history.Append(ctx, ev); err != nil {
		return 0, err
	}
	if err := r.pending.Append(ctx, ev); err != nil {
		r.undo(ctx, ev, false)
		return 0, err
	}
	if _, err := r.mastery.Update(ctx, ev.ItemKey, ev.Outcome, ev.Timestamp); err != nil {
		r.undo(ctx, ev, true)
		return 0, err
	}
	return r.pending.Len(), nil
}

// undo ignores cancellation of ctx so a record lost to a cancelled write is
// still rolled back.
func (r *Recorder) undo(ctx context.Context, ev Event, inPending bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), undoTimeout)
	defer cancel()
	if inPending {
		if err := r.pending.unappend(ctx, ev); err != nil {
			r.log.Warn("progress: rollback pending", zap.Error(err))
		}
	}
	if err := r.history.unappend(ctx, ev); err != nil {
		r.log.Warn("progress: rollback history", zap.Error(err))
	}
}

// Import loads an exported history into the empty log and rebuilds mastery
// from it so observation counts match the log. Pending is left alone; the
// imported events were delivered by the sessions that made them. If the
// mastery write fails the log is emptied again.
func (r *Recorder) Import(ctx context.Context, events []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.history.Import(ctx, events); err != nil {
		return err
	}
	if err := r.mastery.Rebuild(ctx, events); err != nil {
		undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), undoTimeout)
		defer cancel()
		if rerr := r.history.reset(undoCtx); rerr != nil {
			r.log.Warn("progress: rollback import", zap.Error(rerr))
		}
		return err
	}
	r.log.Info("progress: history imported", zap.Int("events", len(events)), zap.Int("items", r.mastery.Len()))
	return nil
}

func (r *Recorder) SessionID() string { return r.sessionID }

func (r *Recorder) StudentID() string { return r.studentID }
