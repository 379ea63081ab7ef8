package diagnostics

import (
	"strings"
	"testing"
)

// TestTracker tests block registration and leak snapshots.
func TestTracker(t *testing.T) {
	tr := NewTracker()

	k1, k2 := new(int), new(int)

	tr.Track(k1, KindPointer)
	tr.Track(k2, KindHolder)

	if tr.LiveBlocks() != 2 {
		t.Errorf("LiveBlocks = %d, want 2", tr.LiveBlocks())
	}

	leaks := tr.CheckLeaks()
	if len(leaks) != 2 {
		t.Fatalf("CheckLeaks returned %d entries, want 2", len(leaks))
	}

	tr.Untrack(k1)

	if tr.LiveBlocks() != 1 {
		t.Errorf("LiveBlocks after untrack = %d, want 1", tr.LiveBlocks())
	}

	// Untracking an unknown key is ignored.
	tr.Untrack(new(int))

	tracked, freed := tr.Stats()
	if tracked != 2 || freed != 1 {
		t.Errorf("Stats = (%d, %d), want (2, 1)", tracked, freed)
	}

	tr.Untrack(k2)

	if len(tr.CheckLeaks()) != 0 {
		t.Error("CheckLeaks should be empty after all blocks end")
	}
}

// TestStackCapture tests allocation-site recording.
func TestStackCapture(t *testing.T) {
	tr := NewTracker(WithStackCapture(true), WithStackDepth(8))

	key := new(int)
	tr.Track(key, KindHolder)

	leaks := tr.CheckLeaks()
	if len(leaks) != 1 {
		t.Fatalf("CheckLeaks returned %d entries, want 1", len(leaks))
	}

	if len(leaks[0].StackTrace) == 0 {
		t.Error("Stack capture enabled but no trace recorded")
	}

	report := FormatLeaks(leaks)
	if !strings.Contains(report, "holder variant") {
		t.Errorf("Report should name the block variant:\n%s", report)
	}

	if !strings.Contains(report, "Created at:") {
		t.Errorf("Report should include the allocation site:\n%s", report)
	}
}

// TestFormatLeaksEmpty tests the clean report.
func TestFormatLeaksEmpty(t *testing.T) {
	if got := FormatLeaks(nil); !strings.Contains(got, "No leaked") {
		t.Errorf("FormatLeaks(nil) = %q", got)
	}
}

// TestApplySettings tests hot-swapping tracker settings.
func TestApplySettings(t *testing.T) {
	tr := NewTracker()

	k1 := new(int)
	tr.Track(k1, KindPointer)

	tr.ApplySettings(Settings{CaptureStacks: true})

	k2 := new(int)
	tr.Track(k2, KindPointer)

	var withTrace, withoutTrace int
	for _, leak := range tr.CheckLeaks() {
		if len(leak.StackTrace) > 0 {
			withTrace++
		} else {
			withoutTrace++
		}
	}

	if withTrace != 1 || withoutTrace != 1 {
		t.Errorf("Traces = (%d with, %d without), want (1, 1)", withTrace, withoutTrace)
	}
}
