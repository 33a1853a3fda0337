// Package engine owns one tracking session: the three progress stores, the
// recorder practice modes call, and the syncer with its triggers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/batchsync"
	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

var ErrNotInitialized = errors.New("engine: not initialized")

// Visibility mirrors whether the learner can currently see the app.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

func ParseVisibility(s string) (Visibility, error) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityVisible, VisibilityHidden:
		return v, nil
	}
	return "", fmt.Errorf("engine: unknown visibility %q", s)
}

type Options struct {
	Docs      docstore.Store
	Transport batchsync.Transport
	StudentID string
	// SessionID defaults to a random UUID.
	SessionID      string
	FlushThreshold int
	// FlushInterval defaults to batchsync.DefaultInterval; negative disables
	// the timer.
	FlushInterval time.Duration
	Logger        *zap.Logger
	Clock         func() time.Time
}

type Engine struct {
	opts Options
	log  *zap.Logger

	history  *progress.EventLog
	pending  *progress.Pending
	mastery  *progress.MasteryStore
	recorder *progress.Recorder
	syncer   *batchsync.Syncer
	timer    *batchsync.Timer

	mu       sync.Mutex
	ready    bool
	torndown bool
}

func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Transport == nil {
		opts.Transport = batchsync.SelectTransport(nil, nil, opts.Logger)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{opts: opts, log: opts.Logger.With(zap.String("session_id", opts.SessionID))}
}

// Init loads the persisted stores and starts the flush timer. A store that
// fails to load aborts Init; a corrupt one loads empty.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}

	e.history = progress.NewEventLog(e.opts.Docs, e.log)
	e.pending = progress.NewPending(e.opts.Docs, e.log)
	e.mastery = progress.NewMasteryStore(e.opts.Docs, e.log)
	for _, load := range []func(context.Context) error{e.history.Load, e.pending.Load, e.mastery.Load} {
		if err := load(ctx); err != nil {
			return fmt.Errorf("engine init: %w", err)
		}
	}

	e.syncer = batchsync.New(e.pending, e.opts.Transport,
		batchsync.WithLogger(e.log),
		batchsync.WithClock(e.opts.Clock),
	)
	e.recorder = progress.NewRecorder(e.opts.SessionID, e.history, e.pending, e.mastery,
		progress.WithFlusher(e.syncer),
		progress.WithThreshold(e.opts.FlushThreshold),
		progress.WithStudentID(e.opts.StudentID),
		progress.WithClock(e.opts.Clock),
		progress.WithLogger(e.log),
	)

	if e.opts.FlushInterval >= 0 {
		e.timer = batchsync.NewTimer(e.opts.FlushInterval, e.syncer)
		if err := e.timer.Start(); err != nil {
			return fmt.Errorf("engine init: %w", err)
		}
	}

	e.ready = true
	e.log.Info("engine: initialized",
		zap.Int("history", e.history.Len()),
		zap.Int("pending", e.pending.Len()),
		zap.Int("mastery", e.mastery.Len()),
		zap.String("transport", e.opts.Transport.Name()),
	)
	return nil
}

// Record stores one learner response. See progress.Recorder.Record.
func (e *Engine) Record(ctx context.Context, resp progress.Response) (progress.Event, error) {
	if !e.isReady() {
		return progress.Event{}, ErrNotInitialized
	}
	return e.recorder.Record(ctx, resp)
}

// SetVisibility triggers a flush when the app becomes hidden.
func (e *Engine) SetVisibility(v Visibility) {
	if v != VisibilityHidden || !e.isReady() {
		return
	}
	e.syncer.Trigger("visibility")
}

// Flush delivers the pending queue on the caller's goroutine.
func (e *Engine) Flush(ctx context.Context) (batchsync.Result, error) {
	if !e.isReady() {
		return "", ErrNotInitialized
	}
	return e.syncer.Flush(ctx)
}

// Import loads an exported history into an empty log and rebuilds mastery
// from it. See progress.Recorder.Import.
func (e *Engine) Import(ctx context.Context, events []progress.Event) error {
	if !e.isReady() {
		return ErrNotInitialized
	}
	return e.recorder.Import(ctx, events)
}

// Teardown stops the timer, waits for any in-flight flush and makes one
// final attempt. It runs once; later calls return ResultEmpty.
func (e *Engine) Teardown(ctx context.Context) (batchsync.Result, error) {
	e.mu.Lock()
	if !e.ready || e.torndown {
		e.mu.Unlock()
		return batchsync.ResultEmpty, nil
	}
	e.torndown = true
	e.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	res, err := e.syncer.Close(ctx)
	if err != nil {
		e.log.Warn("engine: final flush failed", zap.String("result", string(res)), zap.Error(err))
	} else {
		e.log.Info("engine: torn down", zap.String("result", string(res)), zap.Int("pending", e.pending.Len()))
	}
	return res, err
}

func (e *Engine) isReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *Engine) SessionID() string { return e.opts.SessionID }

func (e *Engine) History() *progress.EventLog { return e.history }

func (e *Engine) Pending() *progress.Pending { return e.pending }

func (e *Engine) Mastery() *progress.MasteryStore { return e.mastery }

func (e *Engine) SyncStatus() batchsync.Status { return e.syncer.Status() }
