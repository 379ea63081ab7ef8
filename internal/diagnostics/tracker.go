// Package diagnostics provides live control-block tracking and leak
// reporting for the shared-ownership core. Tracking is entirely off the
// release fast path: blocks register on creation and unregister when their
// bookkeeping ends, so anything still registered at a checkpoint is a
// candidate leak (a live handle, or a lost one).
package diagnostics

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// BlockKind identifies which control-block variant an entry refers to.
type BlockKind int

const (
	KindPointer BlockKind = iota // external storage, adopted raw pointer
	KindHolder                   // embedded storage, combined allocation
)

// String returns the string representation of a block kind.
func (k BlockKind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindHolder:
		return "holder"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// BlockInfo records one live control block.
type BlockInfo struct {
	CreatedAt  time.Time
	StackTrace []uintptr
	Kind       BlockKind
}

// Settings controls what the tracker records. The zero value records
// creation time only.
type Settings struct {
	// CaptureStacks records the allocation site of every block.
	CaptureStacks bool `json:"capture_stacks"`
	// StackDepth bounds the captured trace; 0 means DefaultStackDepth.
	StackDepth int `json:"stack_depth"`
}

// DefaultStackDepth bounds allocation-site traces unless overridden.
const DefaultStackDepth = 16

// Tracker registers live control blocks. Safe for concurrent use; the
// handles feeding it are not required to be.
type Tracker struct {
	mu       sync.RWMutex
	live     map[any]*BlockInfo
	settings Settings
	tracked  uint64
	freed    uint64
}

// Option configures a Tracker.
type Option func(*Settings)

// WithStackCapture enables allocation-site stack traces.
func WithStackCapture(enabled bool) Option {
	return func(s *Settings) { s.CaptureStacks = enabled }
}

// WithStackDepth bounds captured traces.
func WithStackDepth(depth int) Option {
	return func(s *Settings) { s.StackDepth = depth }
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	var s Settings
	for _, opt := range opts {
		opt(&s)
	}

	return &Tracker{
		live:     make(map[any]*BlockInfo),
		settings: s,
	}
}

// ApplySettings replaces the tracker's settings. Already-recorded entries
// keep whatever was captured at registration time.
func (t *Tracker) ApplySettings(s Settings) {
	t.mu.Lock()
	t.settings = s
	t.mu.Unlock()
}

// Track registers a control block under an opaque key.
func (t *Tracker) Track(key any, kind BlockKind) {
	info := &BlockInfo{
		CreatedAt: time.Now(),
		Kind:      kind,
	}

	t.mu.Lock()

	if t.settings.CaptureStacks {
		depth := t.settings.StackDepth
		if depth <= 0 {
			depth = DefaultStackDepth
		}

		pcs := make([]uintptr, depth)
		// Skip Callers, Track, and the package-level hook.
		n := runtime.Callers(3, pcs)
		info.StackTrace = pcs[:n]
	}

	t.live[key] = info
	t.tracked++
	t.mu.Unlock()
}

// Untrack removes a control block whose bookkeeping has ended.
func (t *Tracker) Untrack(key any) {
	t.mu.Lock()
	if _, ok := t.live[key]; ok {
		delete(t.live, key)
		t.freed++
	}
	t.mu.Unlock()
}

// LiveBlocks returns the number of registered blocks.
func (t *Tracker) LiveBlocks() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.live)
}

// Stats reports lifetime tracker counters.
func (t *Tracker) Stats() (tracked, freed uint64) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.tracked, t.freed
}

// LeakInfo describes a block still registered at a checkpoint.
type LeakInfo struct {
	CreatedAt  time.Time
	StackTrace []uintptr
	Kind       BlockKind
}

// CheckLeaks snapshots every still-registered block.
func (t *Tracker) CheckLeaks() []LeakInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var leaks []LeakInfo
	for _, info := range t.live {
		leaks = append(leaks, LeakInfo{
			CreatedAt:  info.CreatedAt,
			StackTrace: info.StackTrace,
			Kind:       info.Kind,
		})
	}

	return leaks
}

// FormatLeaks formats leak information for display.
func FormatLeaks(leaks []LeakInfo) string {
	if len(leaks) == 0 {
		return "No leaked control blocks detected"
	}

	result := fmt.Sprintf("Detected %d live control blocks:\n", len(leaks))
	for i, leak := range leaks {
		result += fmt.Sprintf("  Block %d: %s variant, created %s\n", i+1, leak.Kind, leak.CreatedAt.Format(time.RFC3339))

		if len(leak.StackTrace) > 0 {
			result += "    Created at:\n"
			frames := runtime.CallersFrames(leak.StackTrace)

			for {
				frame, more := frames.Next()
				result += fmt.Sprintf("      %s:%d %s\n", frame.File, frame.Line, frame.Function)

				if !more {
					break
				}
			}
		}
	}

	return result
}
