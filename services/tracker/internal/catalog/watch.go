package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDuration = 100 * time.Millisecond

// Source serves the current deck and can reload it when the file changes.
type Source struct {
	path string
	log  *zap.Logger
	deck atomic.Pointer[Deck]
}

// Open loads path once. An empty path gives an empty deck.
func Open(path string, log *zap.Logger) (*Source, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Source{path: path, log: log}
	if path == "" {
		s.deck.Store(BuildDeck(Vocab{}))
		return s, nil
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Static wraps a prebuilt deck.
func Static(d *Deck) *Source {
	s := &Source{log: zap.NewNop()}
	s.deck.Store(d)
	return s
}

func (s *Source) Deck() *Deck { return s.deck.Load() }

// Reload re-reads the file. On error the previous deck stays in place.
func (s *Source) Reload() error {
	d, err := Load(s.path)
	if err != nil {
		return err
	}
	s.deck.Store(d)
	s.log.Info("catalog: loaded", zap.String("path", s.path), zap.Int("cards", d.Len()))
	return nil
}

// Watch reloads the deck whenever the file changes until ctx is done. The
// parent directory is watched so editors that replace the file are seen.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("catalog: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("catalog: watch %s: %w", dir, err)
	}
	base := filepath.Base(s.path)

	debounce := newDebounceTimer()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				resetDebounceTimer(debounce)
			}
		case <-debounce.C:
			if err := s.Reload(); err != nil {
				s.log.Warn("catalog: reload failed, keeping previous deck", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("catalog: watcher error", zap.Error(err))
		}
	}
}

func newDebounceTimer() *time.Timer {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	return timer
}

func resetDebounceTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(debounceDuration)
}
