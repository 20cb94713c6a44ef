package profiles

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anstrom/scandeck/internal/logging"
)

// DefaultReloadDelay collapses the burst of events an editor produces on save.
const DefaultReloadDelay = 500 * time.Millisecond

// Watch reloads the backing file whenever it is written, until ctx is done.
// The parent directory is watched so the file may be created later. Reloads
// add and replace profiles; a profile deleted from the file stays loaded
// until restart.
func (s *Store) Watch(ctx context.Context, delay time.Duration) error {
	if s.path == "" {
		return nil
	}
	if delay <= 0 {
		delay = DefaultReloadDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create profile watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Warn("failed to close profile watcher", "error", err)
		}
	}()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(s.path)
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reload = time.After(delay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("profile watcher error", "error", err)
		case <-reload:
			reload = nil
			if err := s.Load(); err != nil {
				logging.Error("failed to reload profiles", "path", s.path, "error", err)
			}
		}
	}
}
