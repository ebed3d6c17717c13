package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/wellwatch/internal/guard"
	"github.com/ppiankov/wellwatch/internal/lexicon"
	"github.com/ppiankov/wellwatch/internal/metrics"
	"github.com/ppiankov/wellwatch/internal/scorer"
)

// DefaultDebounce is the quiet period after the last write before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Reloader watches files for changes and calls reload once writes settle.
// It watches the parent directories so editors that replace files by
// rename are still seen.
type Reloader struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	reload   func() error
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewReloader creates a file watcher for the given paths. Empty paths are
// skipped; a path whose directory does not exist is an error.
func NewReloader(paths []string, reload func() error, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("server: create file watcher: %w", err)
	}

	r := &Reloader{
		watcher:  watcher,
		files:    make(map[string]bool),
		reload:   reload,
		logger:   logger,
		debounce: DefaultDebounce,
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("server: resolve %q: %w", p, err)
		}
		r.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("server: watch %q: %w", dir, err)
		}
		dirs[dir] = true
	}
	return r, nil
}

// Watched reports how many files are being watched.
func (r *Reloader) Watched() int { return len(r.files) }

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()
	defer r.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.schedule()
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (r *Reloader) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		if err := r.reload(); err != nil {
			r.logger.Error("hot-reload failed", "error", err)
			return
		}
		r.logger.Info("hot-reload: lexicon reloaded")
	})
}

func (r *Reloader) stopTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// LexiconReload returns a reload func that rebuilds the scorer from the
// lexicon at path and swaps it into g. On error the current scorer stays.
// A lexicon file that has been moved or deleted is an error too, so a
// custom lexicon never silently reverts to the built-in one.
func LexiconReload(g *guard.Guard, path string, m *metrics.Collector) func() error {
	if path == "" {
		path = lexicon.DefaultPath()
	}
	return func() error {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			m.RecordReload("error")
			return fmt.Errorf("server: lexicon %s is gone, keeping current scorer", path)
		}
		lex, hash, err := lexicon.LoadWithHash(path)
		if err != nil {
			m.RecordReload("error")
			return err
		}
		g.ReplaceScorer(scorer.New(lex), hash)
		m.RecordReload("ok")
		return nil
	}
}
