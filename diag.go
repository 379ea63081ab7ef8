package sharedptr

import (
	"sync/atomic"

	"github.com/orizon-lang/sharedptr/internal/diagnostics"
)

// Re-exported diagnostics surface, so callers outside the module never need
// the internal package path.
type (
	// Tracker registers live control blocks while diagnostics are enabled.
	Tracker = diagnostics.Tracker
	// LeakInfo describes a control block still alive at a checkpoint.
	LeakInfo = diagnostics.LeakInfo
	// DiagOption configures the tracker installed by EnableDiagnostics.
	DiagOption = diagnostics.Option
)

// WithLeakStacks records the allocation site of every tracked block.
func WithLeakStacks(enabled bool) DiagOption {
	return diagnostics.WithStackCapture(enabled)
}

// WithLeakStackDepth bounds recorded allocation-site traces.
func WithLeakStackDepth(depth int) DiagOption {
	return diagnostics.WithStackDepth(depth)
}

// Diagnostics are off by default; the fast path pays one atomic load when
// disabled and nothing on the release arithmetic itself.
var tracker atomic.Pointer[Tracker]

// EnableDiagnostics installs a fresh control-block tracker. Blocks created
// while it is installed register themselves and unregister when their
// bookkeeping ends, so CheckLeaks reports whatever is still alive.
func EnableDiagnostics(opts ...DiagOption) *Tracker {
	t := diagnostics.NewTracker(opts...)
	tracker.Store(t)

	return t
}

// DisableDiagnostics removes the installed tracker, discarding its records.
func DisableDiagnostics() {
	tracker.Store(nil)
}

// CheckLeaks reports control blocks still alive under the installed
// tracker; nil when diagnostics are disabled or nothing is live.
func CheckLeaks() []LeakInfo {
	if t := tracker.Load(); t != nil {
		return t.CheckLeaks()
	}

	return nil
}

// FormatLeaks formats leak information for display.
func FormatLeaks(leaks []LeakInfo) string {
	return diagnostics.FormatLeaks(leaks)
}

// WatchDiagnosticsSettings points the installed tracker at a JSON settings
// file and hot-reloads it on change. Enable diagnostics first.
func WatchDiagnosticsSettings(path string) (stop func() error, err error) {
	t := tracker.Load()
	if t == nil {
		return nil, ErrDiagnosticsDisabled
	}

	return diagnostics.WatchSettings(t, path)
}

func blockAllocated(b controlBlock, kind diagnostics.BlockKind) {
	if t := tracker.Load(); t != nil {
		t.Track(b, kind)
	}
}

func blockFreed(b controlBlock) {
	if t := tracker.Load(); t != nil {
		t.Untrack(b)
	}
}
