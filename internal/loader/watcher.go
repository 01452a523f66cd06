package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/terra-clan/box-office/internal/catalog"
)

// DefaultDebounce groups bursts of file events into one reload
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads the catalog when the dataset file changes
type Watcher struct {
	loader   *Loader
	store    *catalog.Store
	path     string
	debounce time.Duration

	mu      sync.Mutex
	pending *time.Timer
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher for the dataset file at path
func NewWatcher(loader *Loader, store *catalog.Store, path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		loader:   loader,
		store:    store,
		path:     filepath.Clean(path),
		debounce: debounce,
	}
}

// Start begins watching in a goroutine until ctx is cancelled.
// The parent directory is watched so editors that replace the file are seen.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.run(ctx, fsw)
	return nil
}

// Wait blocks until the watcher goroutine has stopped
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()

	slog.Info("catalog watcher started", "path", w.path, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			slog.Info("catalog watcher stopped")
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				slog.Debug("dataset file event", "path", event.Name, "op", event.Op.String())
				w.schedule(ctx)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.Reload(ctx)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
}

// Reload loads the dataset again and installs it only when the load
// succeeded; a failed reload keeps serving the previous state.
func (w *Watcher) Reload(ctx context.Context) bool {
	next := w.loader.Load(ctx)
	if !next.Loaded() {
		slog.Warn("catalog reload failed, keeping previous state",
			"state_id", stateID(w.store.Current()),
			"error", next.Err,
		)
		return false
	}

	prev := w.store.Swap(next)
	slog.Info("catalog reloaded",
		"previous_state_id", stateID(prev),
		"state_id", next.ID,
		"records", next.Len(),
	)
	return true
}

func stateID(s *catalog.State) string {
	if s == nil {
		return ""
	}
	return s.ID
}
