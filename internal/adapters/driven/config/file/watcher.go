package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/cardfill/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor produces on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a ConfigStore whenever its file changes and then calls
// OnChange. Callers typically re-read settings and push them into the
// search service.
type Watcher struct {
	store    *ConfigStore
	onChange func()
	debounce time.Duration
}

// NewWatcher creates a watcher for store.
func NewWatcher(store *ConfigStore, onChange func()) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: DefaultDebounce,
	}
}

// Run blocks until ctx is cancelled. The directory is watched rather than the
// file because editors often replace the file instead of writing it.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Config watcher error: %v", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		logger.Warn("Keeping previous config, reload of %s failed: %v", w.store.Path(), err)
		return
	}
	logger.Debug("Reloaded config from %s", w.store.Path())
	if w.onChange != nil {
		w.onChange()
	}
}
