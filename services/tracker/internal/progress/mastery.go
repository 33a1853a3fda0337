package progress

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// MasteryRecord aggregates every event recorded for one item key.
type MasteryRecord struct {
	Status           Outcome   `json:"status"`
	ObservationCount int       `json:"observation_count"`
	LastSeen         time.Time `json:"last_seen"`
}

// MasteryStore maps item keys to their latest outcome and observation count.
// The latest outcome always wins; there is no smoothing.
type MasteryStore struct {
	mu      sync.RWMutex
	docs    docstore.Store
	log     *zap.Logger
	records map[string]MasteryRecord
}

func NewMasteryStore(docs docstore.Store, log *zap.Logger) *MasteryStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &MasteryStore{docs: docs, log: log, records: make(map[string]MasteryRecord)}
}

func (m *MasteryStore) Load(ctx context.Context) error {
	records := make(map[string]MasteryRecord)
	reset, err := loadDocument(ctx, m.docs, m.log, KeyMastery, &records)
	if err != nil {
		return err
	}
	if reset || records == nil {
		records = make(map[string]MasteryRecord)
	}
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
	return nil
}

// Update merges one observation for key and persists the whole map.
func (m *MasteryStore) Update(ctx context.Context, key string, outcome Outcome, at time.Time) (MasteryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, had := m.records[key]
	next := MasteryRecord{
		Status:           outcome,
		ObservationCount: prev.ObservationCount + 1,
		LastSeen:         at,
	}
	m.records[key] = next
	if err := saveDocument(ctx, m.docs, KeyMastery, m.records); err != nil {
		if had {
			m.records[key] = prev
		} else {
			delete(m.records, key)
		}
		return MasteryRecord{}, err
	}
	return next, nil
}

// Rebuild replaces every record with one derived from events, in order:
// the count per key and the outcome of its last event. On a write failure
// the previous records are kept.
func (m *MasteryStore) Rebuild(ctx context.Context, events []Event) error {
	records := make(map[string]MasteryRecord)
	for _, ev := range events {
		rec := records[ev.ItemKey]
		records[ev.ItemKey] = MasteryRecord{
			Status:           ev.Outcome,
			ObservationCount: rec.ObservationCount + 1,
			LastSeen:         ev.Timestamp,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := saveDocument(ctx, m.docs, KeyMastery, records); err != nil {
		return err
	}
	m.records = records
	return nil
}

func (m *MasteryStore) Get(key string) (MasteryRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	return rec, ok
}

// Snapshot returns a copy of the full map.
func (m *MasteryStore) Snapshot() map[string]MasteryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]MasteryRecord, len(m.records))
	for k, v := range m.records {
		out[k] = v
	}
	return out
}

// WeakItems returns the keys whose latest status is dont_know or unsure.
func (m *MasteryStore) WeakItems() map[string]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{})
	for k, v := range m.records {
		if v.Status.Weak() {
			out[k] = struct{}{}
		}
	}
	return out
}

func (m *MasteryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
