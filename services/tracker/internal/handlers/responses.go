package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/internal/platform/api"
	"github.com/example/vocab-tracker/internal/platform/httpserver"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
	"github.com/example/vocab-tracker/services/tracker/internal/progress"
)

type recordReq struct {
	ItemKey   string `json:"item_key"`
	ItemGloss string `json:"item_gloss"`
	Outcome   string `json:"outcome"`
	Category  string `json:"category"`
	Source    string `json:"source"`
}

// RecordResponse stores one learner response.
func RecordResponse(eng *engine.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req recordReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		outcome, err := progress.ParseOutcome(req.Outcome)
		if err != nil {
			api.BadRequest(w, "INVALID_RESPONSE", "outcome must be know, unsure or dont_know", rid, map[string]any{"outcome": req.Outcome})
			return
		}

		ev, err := eng.Record(r.Context(), progress.Response{
			ItemKey:   req.ItemKey,
			ItemGloss: req.ItemGloss,
			Outcome:   outcome,
			Category:  req.Category,
			Source:    req.Source,
		})
		switch {
		case err == nil:
			api.WriteJSON(w, http.StatusCreated, ev)
		case errors.Is(err, progress.ErrInvalidResponse):
			api.BadRequest(w, "INVALID_RESPONSE", "item_key is required", rid, nil)
		case errors.Is(err, progress.ErrNotPersisted):
			api.ServiceUnavailable(w, "NOT_PERSISTED", "response could not be saved", rid)
		case errors.Is(err, engine.ErrNotInitialized):
			api.ServiceUnavailable(w, "NOT_READY", "tracker is not initialized", rid)
		default:
			log.Error("record response", zap.Error(err), zap.String("request_id", rid))
			api.Internal(w, rid)
		}
	}
}
