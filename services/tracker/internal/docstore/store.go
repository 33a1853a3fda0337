// Package docstore persists whole JSON documents under string keys.
//
// The tracker keeps its history log, pending queue and mastery map as three
// independent documents that are read once at startup and rewritten in full
// on every mutation, so a backend only needs Get and Put.
//
// Backends are picked from a DSN: sqlite (default, on-device), redis,
// postgres, or memory (tests and development only).
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no document exists under the key.
var ErrNotFound = errors.New("docstore: document not found")

// Store reads and writes whole documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, body []byte) error
	Close() error
}

// DefaultDSN keeps the documents next to the binary's working directory.
const DefaultDSN = "sqlite://data/tracker.db"

// Open returns the backend named by dsn's scheme. When isProd is true the
// in-memory backend is refused.
func Open(ctx context.Context, dsn string, isProd bool) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = DefaultDSN
	}
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		// Bare file paths are sqlite databases.
		scheme, rest = "sqlite", dsn
	}

	var (
		s   Store
		err error
	)
	switch strings.ToLower(scheme) {
	case "memory", "mem":
		if isProd {
			return nil, errors.New("production requires a durable TRACKER_STORE_DSN; in-memory store is not allowed")
		}
		return NewMemoryStore(), nil
	case "sqlite", "file":
		s, err = openSQLite(ctx, rest)
	case "redis", "rediss":
		s, err = newRedisStore(ctx, dsn)
	case "postgres", "postgresql":
		s, err = newPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("docstore: unsupported dsn scheme %q", scheme)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
