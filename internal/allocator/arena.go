package allocator

import (
	"fmt"
	"sync"
	"unsafe"
)

// Arena is a bump allocator over one contiguous buffer. Individual frees
// are no-ops; memory comes back only through Reset or RestoreState. Suited
// to batch-constructed off-heap values with a common lifetime.
type Arena struct {
	mu      sync.Mutex
	config  *Config
	buffer  []byte
	current uintptr
	size    uintptr
	allocs  uint64
	peak    uintptr
	counters
}

// NewArena creates an arena of the given size.
func NewArena(size uintptr, opts ...Option) (*Arena, error) {
	if size == 0 {
		return nil, fmt.Errorf("allocator: arena size must be greater than 0")
	}

	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &Arena{
		config: config,
		buffer: make([]byte, size),
		size:   size,
	}, nil
}

// Alloc allocates size bytes at the default alignment.
func (a *Arena) Alloc(size uintptr) unsafe.Pointer {
	return a.AllocAligned(size, a.config.AlignmentSize)
}

// AllocAligned bumps the cursor to the requested alignment and allocates.
// Returns nil when the arena is exhausted.
func (a *Arena) AllocAligned(size, alignment uintptr) unsafe.Pointer {
	if size == 0 || !isPowerOfTwo(alignment) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	alignedCurrent := alignUp(a.current, alignment)
	alignedSize := alignUp(size, a.config.AlignmentSize)

	if alignedCurrent+alignedSize > a.size {
		return nil // out of arena space
	}

	ptr := unsafe.Pointer(&a.buffer[alignedCurrent])

	a.current = alignedCurrent + alignedSize
	a.allocs++
	a.recordAlloc(alignedSize)

	if a.current > a.peak {
		a.peak = a.current
	}

	return ptr
}

// Free is a no-op; arena memory is reclaimed wholesale by Reset.
func (a *Arena) Free(ptr unsafe.Pointer) {}

// Stats reports allocation counters.
func (a *Arena) Stats() Stats {
	stats := a.snapshot()

	a.mu.Lock()
	stats.ActiveAllocations = int(a.allocs)
	stats.BytesInUse = a.current
	a.mu.Unlock()

	return stats
}

// Reset rewinds the arena, invalidating every allocation made from it.
func (a *Arena) Reset() {
	a.mu.Lock()
	a.current = 0
	a.allocs = 0
	a.mu.Unlock()
}

// Available returns the remaining space.
func (a *Arena) Available() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.size - a.current
}

// Used returns the occupied space.
func (a *Arena) Used() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current
}

// Size returns the arena's total capacity.
func (a *Arena) Size() uintptr { return a.size }

// PeakUsage returns the high-water mark.
func (a *Arena) PeakUsage() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.peak
}

// State captures an arena position for later rollback.
type State struct {
	Current uintptr
	Allocs  uint64
}

// SaveState captures the current position.
func (a *Arena) SaveState() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return State{Current: a.current, Allocs: a.allocs}
}

// RestoreState rewinds to a previously saved position, invalidating every
// allocation made after it.
func (a *Arena) RestoreState(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if s.Current <= a.size {
		a.current = s.Current
		a.allocs = s.Allocs
	}
}
