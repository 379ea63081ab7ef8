package diagnostics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchSettings loads tracker settings from a JSON file and reapplies them
// whenever the file changes, using OS-native notifications. The returned
// stop function shuts the watcher down. The watch covers the file's
// directory so editors that replace-on-save keep triggering reloads.
func WatchSettings(t *Tracker, path string) (stop func() error, err error) {
	if err := loadSettings(t, path); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("diagnostics: create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()

		return nil, fmt.Errorf("diagnostics: watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if filepath.Clean(ev.Name) != target {
					continue
				}

				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					// Reload failures keep the previous settings.
					_ = loadSettings(t, path)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w.Close, nil
}

func loadSettings(t *Tracker, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("diagnostics: read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("diagnostics: parse settings: %w", err)
	}

	t.ApplySettings(s)

	return nil
}
