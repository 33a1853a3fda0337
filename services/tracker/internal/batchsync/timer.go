package batchsync

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultInterval is how often the timer triggers a flush.
const DefaultInterval = 5 * time.Minute

// Triggerer is satisfied by *Syncer.
type Triggerer interface {
	Trigger(reason string)
}

// Timer triggers a flush on a fixed interval. The first firing happens one
// interval after Start.
type Timer struct {
	scheduler *gocron.Scheduler
	every     time.Duration
	target    Triggerer
}

func NewTimer(every time.Duration, target Triggerer) *Timer {
	if every <= 0 {
		every = DefaultInterval
	}
	return &Timer{
		scheduler: gocron.NewScheduler(time.UTC),
		every:     every,
		target:    target,
	}
}

func (t *Timer) Start() error {
	_, err := t.scheduler.Every(t.every).WaitForSchedule().Do(func() {
		t.target.Trigger("timer")
	})
	if err != nil {
		return fmt.Errorf("schedule flush timer: %w", err)
	}
	t.scheduler.StartAsync()
	return nil
}

func (t *Timer) Stop() {
	if t.scheduler.IsRunning() {
		t.scheduler.Stop()
	}
}
