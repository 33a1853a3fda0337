package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/example/vocab-tracker/internal/platform/api"
	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

// GetMastery returns the full mastery map keyed by item key.
func GetMastery(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": eng.Mastery().Snapshot()})
	}
}

// GetWeak returns the weak item keys, sorted.
func GetWeak(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weak := eng.Mastery().WeakItems()
		keys := make([]string, 0, len(weak))
		for k := range weak {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		api.WriteJSON(w, http.StatusOK, map[string]any{"items": keys, "count": len(keys)})
	}
}

// GetStats tallies statuses over one category of the deck, plus the weak
// count over the whole deck.
func GetStats(eng *engine.Engine, src *catalog.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck := src.Deck()
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		stats := progress.Tally(eng.Mastery(), deck.Filter(category))
		all := progress.Tally(eng.Mastery(), deck.Cards())
		if category == "" {
			category = catalog.All
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"category":   category,
			"stats":      stats,
			"weak_total": all.Weak(),
		})
	}
}

type deckCard struct {
	catalog.Card
	Status           progress.Outcome `json:"status,omitempty"`
	ObservationCount int              `json:"observation_count"`
}

// GetDeck lists cards with their mastery. order=mastery sorts weakest first;
// weak=true keeps only weak cards.
func GetDeck(eng *engine.Engine, src *catalog.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		cards := src.Deck().Filter(strings.TrimSpace(q.Get("category")))
		if q.Get("weak") == "true" {
			cards = progress.WeakOnly(eng.Mastery(), cards)
		}
		if q.Get("order") == "mastery" {
			cards = progress.OrderByMastery(eng.Mastery(), cards)
		}

		snap := eng.Mastery().Snapshot()
		out := make([]deckCard, len(cards))
		for i, c := range cards {
			rec := snap[c.Key()]
			out[i] = deckCard{Card: c, Status: rec.Status, ObservationCount: rec.ObservationCount}
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"cards":      out,
			"count":      len(out),
			"categories": append([]string{catalog.All}, src.Deck().Categories()...),
		})
	}
}
