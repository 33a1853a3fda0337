package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/vocab-tracker/services/tracker/internal/docstore"
)

// Document keys. Each store owns exactly one.
const (
	KeyHistory = "vocab_tracker.history"
	KeyPending = "vocab_tracker.pending"
	KeyMastery = "vocab_tracker.mastery"
)

// loadDocument decodes the document under key into dst. A missing document
// leaves dst untouched; an unparseable one is logged and reported as reset so
// the caller starts from an empty store.
func loadDocument(ctx context.Context, docs docstore.Store, log *zap.Logger, key string, dst any) (reset bool, err error) {
	body, err := docs.Get(ctx, key)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		log.Warn("progress: corrupt document reset to empty", zap.String("key", key), zap.Error(err))
		return true, nil
	}
	return false, nil
}

func saveDocument(ctx context.Context, docs docstore.Store, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := docs.Put(ctx, key, body); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}
