package config

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration file when it changes on disk and hands
// the freshly validated Config to a callback. The gateway uses it to
// hot-reload pricing tables without a restart.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Config)
	done     chan struct{}
}

// NewWatcher starts watching the configuration file's directory. Watching
// the directory rather than the file survives the rename-and-replace write
// pattern editors and config management tools use.
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w := &Watcher{
		path:     path,
		watcher:  fsw,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	go w.run()

	slog.Info("configuration watcher started", "path", path)
	return w, nil
}

// run processes filesystem events until Close.
func (w *Watcher) run() {
	target := filepath.Clean(w.path)

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadConfig(w.path)
			if err != nil {
				// Keep the previous configuration on a bad reload.
				slog.Warn("configuration reload failed, keeping previous",
					"path", w.path,
					"error", err,
				)
				continue
			}

			slog.Info("configuration reloaded", "path", w.path)
			w.onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("configuration watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
