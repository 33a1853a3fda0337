package handlers

import (
	"bytes"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/internal/platform/api"
	"github.com/example/vocab-tracker/internal/platform/httpserver"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
	"github.com/example/vocab-tracker/services/tracker/internal/export"
)

type visibilityReq struct {
	State string `json:"state"`
}

// SetVisibility reports page visibility; hidden triggers a background flush.
func SetVisibility(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		var req visibilityReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		v, err := engine.ParseVisibility(req.State)
		if err != nil {
			api.BadRequest(w, "INVALID_STATE", "state must be hidden or visible", rid, nil)
			return
		}
		eng.SetVisibility(v)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Flush runs one delivery attempt and reports its result.
func Flush(eng *engine.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := eng.Flush(r.Context())
		out := map[string]any{"result": res, "pending": eng.Pending().Len()}
		if err != nil {
			log.Info("manual flush failed", zap.Error(err))
			out["error"] = err.Error()
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// Export downloads the full history as JSON or XLSX.
func Export(eng *engine.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			api.BadRequest(w, "INVALID_FORMAT", "format must be json or xlsx", rid, nil)
			return
		}
		var buf bytes.Buffer
		if err := export.Write(&buf, format, eng.History().Events()); err != nil {
			log.Error("export history", zap.Error(err), zap.String("request_id", rid))
			api.Internal(w, rid)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(time.Now())+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

// SyncStatus reports queue sizes and the last delivery attempt.
func SyncStatus(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"session_id": eng.SessionID(),
			"pending":    eng.Pending().Len(),
			"history":    eng.History().Len(),
			"sync":       eng.SyncStatus(),
		})
	}
}
