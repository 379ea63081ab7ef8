package diagnostics

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func capturesStacks(t *Tracker) bool {
	key := new(int)
	t.Track(key, KindPointer)
	defer t.Untrack(key)

	for _, leak := range t.CheckLeaks() {
		if len(leak.StackTrace) > 0 {
			return true
		}
	}

	return false
}

// TestWatchSettings tests the initial load and hot reload of the settings
// file.
func TestWatchSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagnostics.json")

	if err := os.WriteFile(path, []byte(`{"capture_stacks": false}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker()

	stop, err := WatchSettings(tr, path)
	if err != nil {
		t.Fatalf("WatchSettings: %v", err)
	}
	defer stop()

	if capturesStacks(tr) {
		t.Fatal("Initial settings should disable stack capture")
	}

	if err := os.WriteFile(path, []byte(`{"capture_stacks": true, "stack_depth": 4}`), 0o644); err != nil {
		t.Fatal(err)
	}

	// The reload arrives via OS notification; poll with a deadline.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if capturesStacks(tr) {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Error("Settings change was not picked up")
}

// TestWatchSettingsMissingFile tests the failing initial load.
func TestWatchSettingsMissingFile(t *testing.T) {
	tr := NewTracker()

	if _, err := WatchSettings(tr, filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Watching an absent settings file should fail")
	}
}

// TestWatchSettingsBadJSON tests that a malformed update keeps the previous
// settings.
func TestWatchSettingsBadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagnostics.json")

	if err := os.WriteFile(path, []byte(`{"capture_stacks": true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker()

	stop, err := WatchSettings(tr, path)
	if err != nil {
		t.Fatalf("WatchSettings: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}

	// Give the watcher a moment to see the write, then confirm the old
	// settings survived.
	time.Sleep(200 * time.Millisecond)

	if !capturesStacks(tr) {
		t.Error("Malformed update should keep the previous settings")
	}
}
