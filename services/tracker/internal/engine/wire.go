package engine

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/example/vocab-tracker/internal/platform/natsconn"
	"github.com/example/vocab-tracker/services/tracker/internal/batchsync"
	"github.com/example/vocab-tracker/services/tracker/internal/config"
	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// Resources holds what Open acquired so the caller can release it after
// Teardown.
type Resources struct {
	Docs docstore.Store
	NATS *nats.Conn
}

func (r *Resources) Close() {
	if r.NATS != nil {
		_ = r.NATS.Drain()
	}
	if r.Docs != nil {
		_ = r.Docs.Close()
	}
}

// Open builds an initialized engine from cfg: it opens the document store,
// probes NATS for the fire-and-forget transport and falls back to the HTTP
// collector.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Engine, *Resources, error) {
	docs, err := docstore.Open(ctx, cfg.StoreDSN, cfg.App.IsProd())
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	res := &Resources{Docs: docs}

	var beacon batchsync.Transport
	if cfg.NATSURL != "" {
		nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.App.ServiceName})
		if err != nil {
			log.Warn("engine: nats unavailable, using http collector only", zap.Error(err))
		} else if b, err := batchsync.NewBeacon(nc, cfg.NATSSubject, log); err != nil {
			log.Warn("engine: jetstream unavailable, using http collector only", zap.Error(err))
			nc.Close()
		} else {
			res.NATS = nc
			beacon = b
		}
	}

	var post batchsync.Transport
	if cfg.CollectorURL != "" {
		opts := []batchsync.HTTPOption{batchsync.WithHTTPLogger(log)}
		if cfg.CBFailureThreshold > 0 {
			opts = append(opts, batchsync.WithCircuitBreaker(newBreaker(cfg, log)))
		}
		post = batchsync.NewHTTPPost(cfg.CollectorURL, cfg.HTTPTimeout, opts...)
	}

	e := New(Options{
		Docs:           docs,
		Transport:      batchsync.SelectTransport(beacon, post, log),
		StudentID:      cfg.StudentID,
		FlushThreshold: cfg.FlushThreshold,
		FlushInterval:  cfg.FlushInterval,
		Logger:         log,
	})
	if err := e.Init(ctx); err != nil {
		res.Close()
		return nil, nil, err
	}
	return e, res, nil
}

func newBreaker(cfg config.Config, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "collector",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CBFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit-breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
}
