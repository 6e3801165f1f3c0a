package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/patuh/patuh/internal/models"
	"github.com/patuh/patuh/internal/observability/logging"
)

// DefaultDebounce between a file event and the reload
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a catalog file when it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename-and-replace are still observed.
type Watcher struct {
	path     string
	debounce time.Duration
	log      logging.Logger
	fsw      *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher for path
func NewWatcher(path string, debounce time.Duration, log logging.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog watcher requires a file path")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		log:      log,
		fsw:      fsw,
	}, nil
}

// Run blocks until ctx is done. onChange receives each successfully parsed
// catalog; parse failures are logged and the previous catalog stays active.
func (w *Watcher) Run(ctx context.Context, onChange func(*models.Catalog)) error {
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(func() { w.reload(onChange) })

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Warn("catalog", "file watcher error", "error", err.Error())
		}
	}
}

// Close the underlying fsnotify watcher
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.fsw.Close()
}

func (w *Watcher) reload(onChange func(*models.Catalog)) {
	c, err := LoadFile(w.path)
	if err != nil {
		w.log.Error("catalog", "catalog reload failed, keeping previous version", "path", w.path, "error", err.Error())
		return
	}
	w.log.Info("catalog", "catalog reloaded", "path", w.path, "version", c.Version)
	onChange(c)
}

// schedule resets the debounce timer
func (w *Watcher) schedule(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, fn)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
