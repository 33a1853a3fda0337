// Package batchsync delivers the pending queue to the remote collector.
//
// A Syncer reads the whole queue as one batch, sends it as a JSON array and,
// once the transport reports success, drops exactly that batch. Delivery is
// at-least-once: a batch that was sent but could not be dropped is sent again
// on the next trigger.
package batchsync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnavailable is returned by a transport that cannot take a payload at all.
var ErrUnavailable = errors.New("batchsync: transport unavailable")

// Transport hands one payload to the collector. A nil error means the payload
// was accepted, which for one-way transports is all that can be known.
type Transport interface {
	Name() string
	Send(ctx context.Context, payload []byte) error
}

// Fallback tries Primary first and Secondary when Primary rejects the payload.
type Fallback struct {
	Primary   Transport
	Secondary Transport
	Log       *zap.Logger
}

func (f *Fallback) Name() string {
	return f.Primary.Name() + "+" + f.Secondary.Name()
}

func (f *Fallback) Send(ctx context.Context, payload []byte) error {
	err := f.Primary.Send(ctx, payload)
	if err == nil {
		return nil
	}
	if f.Log != nil {
		f.Log.Debug("batchsync: primary transport rejected batch, falling back",
			zap.String("primary", f.Primary.Name()),
			zap.String("secondary", f.Secondary.Name()),
			zap.Error(err),
		)
	}
	if err2 := f.Secondary.Send(ctx, payload); err2 != nil {
		return fmt.Errorf("%s: %w; %s: %w", f.Primary.Name(), err, f.Secondary.Name(), err2)
	}
	return nil
}

// none is used when neither transport is configured. Every send fails, so
// pending events accumulate locally.
type none struct{}

func (none) Name() string { return "none" }

func (none) Send(context.Context, []byte) error { return ErrUnavailable }

// SelectTransport picks the delivery path once, at construction. A nil
// argument means that transport is not available in this environment.
func SelectTransport(beacon, post Transport, log *zap.Logger) Transport {
	if log == nil {
		log = zap.NewNop()
	}
	var t Transport
	switch {
	case beacon != nil && post != nil:
		t = &Fallback{Primary: beacon, Secondary: post, Log: log}
	case beacon != nil:
		t = beacon
	case post != nil:
		t = post
	default:
		t = none{}
	}
	log.Info("batchsync: transport selected", zap.String("transport", t.Name()))
	return t
}
