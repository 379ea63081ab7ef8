package sharedptr

import (
	"unsafe"

	"github.com/orizon-lang/sharedptr/internal/allocator"
)

// Re-exported allocator surface, so callers outside the module never need
// the internal package path.
type (
	// OffHeapAllocator is the storage provider for NewOffHeap. The system
	// and arena allocators both satisfy it.
	OffHeapAllocator = allocator.Allocator
	// Arena is a bump allocator reclaimed wholesale by Reset.
	Arena = allocator.Arena
	// AllocStats reports allocator counters.
	AllocStats = allocator.Stats
	// AllocOption configures an allocator at construction time.
	AllocOption = allocator.Option
)

// WithAllocAlignment sets the default allocation alignment.
func WithAllocAlignment(alignment uintptr) AllocOption {
	return allocator.WithAlignment(alignment)
}

// WithMmapThreshold routes allocations at or above the threshold to mmap on
// platforms that support it.
func WithMmapThreshold(threshold uintptr) AllocOption {
	return allocator.WithMmapThreshold(threshold)
}

// WithMemoryLimit caps allocator bytes in use.
func WithMemoryLimit(limit uintptr) AllocOption {
	return allocator.WithMemoryLimit(limit)
}

// NewSystemAllocator returns a tracked allocator backed by the Go heap,
// with requests above the mmap threshold mapped directly from the
// operating system where supported.
func NewSystemAllocator(opts ...AllocOption) OffHeapAllocator {
	return allocator.NewSystem(opts...)
}

// NewArenaAllocator returns a bump allocator over one contiguous buffer.
// Individual releases are deferred to the arena's reset.
func NewArenaAllocator(size uintptr, opts ...AllocOption) (*Arena, error) {
	return allocator.NewArena(size, opts...)
}

// NewOffHeap places a value of type T in storage owned by alloc and returns
// an owning handle whose drop hook returns the storage. Release of the last
// owner is therefore a real, immediate deallocation, not a collector hint.
//
// The storage is invisible to the garbage collector: T must not contain Go
// pointers (no maps, slices, strings, channels, funcs or pointers into the
// Go heap). Violations are not detected.
func NewOffHeap[T any](alloc OffHeapAllocator, v T) (Shared[T], error) {
	var probe T

	size := unsafe.Sizeof(probe)
	align := unsafe.Alignof(probe)

	if size == 0 {
		size = 1 // zero-size values still need a distinct address
	}

	raw := alloc.AllocAligned(size, align)
	if raw == nil {
		return Shared[T]{}, ErrOutOfMemory
	}

	p := (*T)(raw)
	*p = v

	return NewFunc(p, func(q *T) {
		alloc.Free(unsafe.Pointer(q))
	}), nil
}
