package batchsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

// Queue is the pending side of the progress stores.
type Queue interface {
	Batch() []progress.Event
	Drop(ctx context.Context, n int) error
}

// Result is the outcome of one flush attempt.
type Result string

const (
	ResultEmpty  Result = "empty"
	ResultSent   Result = "sent"
	ResultFailed Result = "failed"
	ResultBusy   Result = "busy"
)

// Status describes the most recent attempt.
type Status struct {
	Transport   string    `json:"transport"`
	LastResult  Result    `json:"last_result,omitempty"`
	LastReason  string    `json:"last_reason,omitempty"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	LastSent    int       `json:"last_sent"`
	Attempts    int       `json:"attempts"`
	Dropped     int       `json:"dropped_triggers"`
}

type Option func(*Syncer)

func WithLogger(log *zap.Logger) Option {
	return func(s *Syncer) { s.log = log }
}

// WithAttemptTimeout bounds background attempts started by Trigger.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// Syncer runs at most one delivery attempt at a time. Triggers that fire
// while an attempt is running are dropped.
type Syncer struct {
	queue     Queue
	transport Transport
	log       *zap.Logger
	timeout   time.Duration
	now       func() time.Time

	// inflight holds one token while an attempt runs. Trigger takes it
	// before starting the background goroutine.
	inflight chan struct{}
	closed   atomic.Bool

	mu     sync.Mutex
	status Status
}

func New(queue Queue, transport Transport, opts ...Option) *Syncer {
	s := &Syncer{
		queue:     queue,
		transport: transport,
		log:       zap.NewNop(),
		timeout:   30 * time.Second,
		now:       time.Now,
		inflight:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(s)
	}
	s.status.Transport = transport.Name()
	return s
}

// Trigger starts a background attempt unless one is already running or the
// syncer was closed. It never blocks.
func (s *Syncer) Trigger(reason string) {
	if s.closed.Load() {
		return
	}
	if !s.tryAcquire() {
		s.busy(reason)
		return
	}
	go func() {
		defer s.release()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.attempt(ctx, reason)
	}()
}

// Flush runs one attempt on the caller's goroutine. It reports ResultBusy
// without sending when another attempt is in flight.
func (s *Syncer) Flush(ctx context.Context) (Result, error) {
	if !s.tryAcquire() {
		s.busy("manual")
		return ResultBusy, nil
	}
	defer s.release()
	return s.attempt(ctx, "manual")
}

// Close waits for an in-flight attempt, makes one final attempt and refuses
// further triggers. ctx bounds both the wait and the final attempt.
func (s *Syncer) Close(ctx context.Context) (Result, error) {
	s.closed.Store(true)
	select {
	case s.inflight <- struct{}{}:
	case <-ctx.Done():
		return ResultBusy, fmt.Errorf("wait for in-flight flush: %w", ctx.Err())
	}
	defer s.release()
	return s.attempt(ctx, "teardown")
}

// Wait blocks until an attempt started before the call has returned. It
// holds the in-flight slot briefly, so a trigger racing with it may be
// dropped as busy.
func (s *Syncer) Wait() {
	s.inflight <- struct{}{}
	s.release()
}

func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Syncer) tryAcquire() bool {
	select {
	case s.inflight <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Syncer) release() { <-s.inflight }

func (s *Syncer) busy(reason string) {
	s.log.Debug("batchsync: flush already in flight, trigger dropped", zap.String("reason", reason))
	s.mu.Lock()
	s.status.Dropped++
	s.mu.Unlock()
}

func (s *Syncer) attempt(ctx context.Context, reason string) (Result, error) {
	batch := s.queue.Batch()
	if len(batch) == 0 {
		s.record(reason, ResultEmpty, 0, nil)
		return ResultEmpty, nil
	}

	payload, err := EncodeBatch(batch)
	if err != nil {
		s.record(reason, ResultFailed, 0, err)
		return ResultFailed, err
	}

	if err := s.transport.Send(ctx, payload); err != nil {
		s.log.Warn("batchsync: transport failed, batch kept",
			zap.String("transport", s.transport.Name()),
			zap.String("reason", reason),
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		s.record(reason, ResultFailed, 0, err)
		return ResultFailed, err
	}

	if err := s.queue.Drop(ctx, len(batch)); err != nil {
		s.log.Warn("batchsync: batch sent but not cleared, it will be resent",
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		err = fmt.Errorf("clear delivered batch: %w", err)
		s.record(reason, ResultSent, len(batch), err)
		return ResultSent, err
	}

	s.log.Info("batchsync: batch sent",
		zap.String("transport", s.transport.Name()),
		zap.String("reason", reason),
		zap.Int("events", len(batch)),
	)
	s.record(reason, ResultSent, len(batch), nil)
	return ResultSent, nil
}

func (s *Syncer) record(reason string, res Result, sent int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastResult = res
	s.status.LastReason = reason
	s.status.LastAttempt = s.now().UTC()
	s.status.LastSent = sent
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.status.Attempts++
}

// EncodeBatch is the collector payload: a JSON array of events.
func EncodeBatch(events []progress.Event) ([]byte, error) {
	return json.Marshal(events)
}
