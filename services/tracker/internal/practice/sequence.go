// Package practice runs a flashcard session in the terminal.
package practice

import (
	"math/rand/v2"

	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

// reinsertGap is how far ahead a missed card comes back: it is inserted six
// slots after the current one, so five other cards are seen first.
const reinsertGap = 6

// Sequence is the ordered list of cards for one session with a cursor.
// Missed cards are re-queued a few positions ahead.
type Sequence[T any] struct {
	items []T
	pos   int
}

func NewSequence[T any](items []T) *Sequence[T] {
	out := make([]T, len(items))
	copy(out, items)
	return &Sequence[T]{items: out}
}

func (s *Sequence[T]) Len() int { return len(s.items) }

func (s *Sequence[T]) Position() int { return s.pos }

// Current returns the card under the cursor; false when the sequence is empty.
func (s *Sequence[T]) Current() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[s.pos], true
}

// Items returns a copy of the current order.
func (s *Sequence[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Answer applies the in-session rule for the current card: on dont_know a
// copy is inserted at min(i+6, len); then the cursor advances with wraparound.
func (s *Sequence[T]) Answer(o progress.Outcome) {
	n := len(s.items)
	if n == 0 {
		return
	}
	i := s.pos
	if o == progress.OutcomeDontKnow {
		at := min(i+reinsertGap, n)
		s.items = append(s.items, s.items[i])
		copy(s.items[at+1:], s.items[at:n])
		s.items[at] = s.items[i]
	}
	s.pos = (i + 1) % len(s.items)
}

func (s *Sequence[T]) Next() {
	if n := len(s.items); n > 0 {
		s.pos = (s.pos + 1) % n
	}
}

func (s *Sequence[T]) Prev() {
	if n := len(s.items); n > 0 {
		s.pos = (s.pos - 1 + n) % n
	}
}

// Shuffle reorders the cards and moves the cursor to the start. A nil r uses
// the global source.
func (s *Sequence[T]) Shuffle(r *rand.Rand) {
	swap := func(i, j int) { s.items[i], s.items[j] = s.items[j], s.items[i] }
	if r == nil {
		rand.Shuffle(len(s.items), swap)
	} else {
		r.Shuffle(len(s.items), swap)
	}
	s.pos = 0
}
