// Package progress records learner responses and aggregates per-item mastery.
//
// Three stores back it, each persisted as one whole document:
// the EventLog (every event ever recorded, never pruned), the Pending queue
// (events not yet delivered to the collector) and the MasteryStore (latest
// outcome and observation count per item key). The Recorder is the single
// writer for all three.
package progress

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidResponse is returned when a response lacks an item key or
	// carries an unknown outcome. Nothing is stored.
	ErrInvalidResponse = errors.New("progress: invalid response")
	// ErrNotPersisted wraps a document write failure. The record is lost.
	ErrNotPersisted = errors.New("progress: response not persisted")
	// ErrLogNotEmpty is returned when importing into a log that has events.
	ErrLogNotEmpty = errors.New("progress: event log is not empty")
)

// Outcome is the learner's self-reported recall for one item.
type Outcome string

const (
	OutcomeKnow     Outcome = "know"
	OutcomeUnsure   Outcome = "unsure"
	OutcomeDontKnow Outcome = "dont_know"
)

// ParseOutcome accepts the wire values, case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	if !o.Valid() {
		return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalidResponse, s)
	}
	return o, nil
}

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeKnow, OutcomeUnsure, OutcomeDontKnow:
		return true
	}
	return false
}

// Weak reports whether an item with this status belongs in weak review.
func (o Outcome) Weak() bool {
	return o == OutcomeDontKnow || o == OutcomeUnsure
}

// Event is one learner response. Events are never mutated after recording.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	StudentID string    `json:"student_id"`
	ItemKey   string    `json:"item_key"`
	ItemGloss string    `json:"item_gloss"`
	Outcome   Outcome   `json:"outcome"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
	SessionID string    `json:"session_id"`
}

// Response is what a practice mode reports when the learner answers.
type Response struct {
	ItemKey   string  `json:"item_key"`
	ItemGloss string  `json:"item_gloss"`
	Outcome   Outcome `json:"outcome"`
	Category  string  `json:"category"`
	Source    string  `json:"source"`
}

// Validate checks the two required fields.
func (r Response) Validate() error {
	if strings.TrimSpace(r.ItemKey) == "" {
		return fmt.Errorf("%w: item_key is required", ErrInvalidResponse)
	}
	if !r.Outcome.Valid() {
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidResponse, r.Outcome)
	}
	return nil
}
