package progress

import "sort"

// Keyed is anything identified by an item key (catalog cards, plain keys).
type Keyed interface {
	Key() string
}

// MasteryReader is the read side of MasteryStore.
type MasteryReader interface {
	Snapshot() map[string]MasteryRecord
	WeakItems() map[string]struct{}
}

// Rank orders statuses for review: dont_know 0, unsure 1, unrated 2, know 3.
func Rank(rec MasteryRecord, rated bool) int {
	if !rated {
		return 2
	}
	switch rec.Status {
	case OutcomeDontKnow:
		return 0
	case OutcomeUnsure:
		return 1
	case OutcomeKnow:
		return 3
	}
	return 2
}

// OrderByMastery returns items weakest first. Ties keep their input order.
func OrderByMastery[T Keyed](r MasteryReader, items []T) []T {
	snap := r.Snapshot()
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		ri, oki := snap[out[i].Key()]
		rj, okj := snap[out[j].Key()]
		return Rank(ri, oki) < Rank(rj, okj)
	})
	return out
}

// WeakOnly keeps the items whose key is currently weak, in input order.
func WeakOnly[T Keyed](r MasteryReader, items []T) []T {
	weak := r.WeakItems()
	out := make([]T, 0, len(weak))
	for _, it := range items {
		if _, ok := weak[it.Key()]; ok {
			out = append(out, it)
		}
	}
	return out
}

// Stats counts items by latest status.
type Stats struct {
	Know     int `json:"know"`
	Unsure   int `json:"unsure"`
	DontKnow int `json:"dont_know"`
	Unrated  int `json:"unrated"`
}

func (s Stats) Weak() int { return s.Unsure + s.DontKnow }

func Tally[T Keyed](r MasteryReader, items []T) Stats {
	snap := r.Snapshot()
	var s Stats
	for _, it := range items {
		rec, ok := snap[it.Key()]
		if !ok {
			s.Unrated++
			continue
		}
		switch rec.Status {
		case OutcomeKnow:
			s.Know++
		case OutcomeUnsure:
			s.Unsure++
		case OutcomeDontKnow:
			s.DontKnow++
		default:
			s.Unrated++
		}
	}
	return s
}

// ItemKey adapts a bare string key to Keyed.
type ItemKey string

func (k ItemKey) Key() string { return string(k) }
