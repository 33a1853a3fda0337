package batchsync

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/vocab-tracker/internal/platform/natsconn"
)

const (
	DefaultSubject = "tracker.responses"
	streamName     = "TRACKER"
)

// Beacon publishes batches to NATS JetStream without waiting for the server
// ack. A nil error only means the client accepted the message for sending.
// The zero value and a nil pointer both report ErrUnavailable.
type Beacon struct {
	js      nats.JetStreamContext
	subject string
	log     *zap.Logger
}

// NewBeacon binds a JetStream publisher to subject and makes sure a stream
// captures it.
func NewBeacon(nc *nats.Conn, subject string, log *zap.Logger) (*Beacon, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if subject == "" {
		subject = DefaultSubject
	}
	js, err := nc.JetStream(nats.PublishAsyncMaxPending(256))
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := natsconn.EnsureStream(js, streamName, subject); err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", streamName, err)
	}
	return &Beacon{js: js, subject: subject, log: log}, nil
}

func (b *Beacon) Name() string { return "nats" }

func (b *Beacon) Send(ctx context.Context, payload []byte) error {
	if b == nil || b.js == nil {
		return ErrUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.js.PublishAsync(b.subject, payload); err != nil {
		b.log.Warn("batchsync: publish rejected", zap.String("subject", b.subject), zap.Error(err))
		return err
	}
	return nil
}
