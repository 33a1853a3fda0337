// Package handlers exposes the tracking engine over HTTP for UI
// collaborators running outside the process.
package handlers

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/catalog"
	"github.com/example/vocab-tracker/services/tracker/internal/engine"
)

type Deps struct {
	Engine  *engine.Engine
	Catalog *catalog.Source
	Log     *zap.Logger
}

// Mount registers the /v1 routes on r.
func Mount(r chi.Router, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Catalog == nil {
		d.Catalog = catalog.Static(catalog.BuildDeck(catalog.Vocab{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/responses", RecordResponse(d.Engine, d.Log))
		r.Get("/mastery", GetMastery(d.Engine))
		r.Get("/mastery/weak", GetWeak(d.Engine))
		r.Get("/mastery/stats", GetStats(d.Engine, d.Catalog))
		r.Get("/deck", GetDeck(d.Engine, d.Catalog))
		r.Post("/visibility", SetVisibility(d.Engine))
		r.Post("/flush", Flush(d.Engine, d.Log))
		r.Get("/export", Export(d.Engine, d.Log))
		r.Get("/sync/status", SyncStatus(d.Engine))
	})
}
