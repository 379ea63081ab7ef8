// Package allocator provides the backing stores for off-heap shared values:
// a tracked system allocator with an mmap-backed large-allocation path, and
// an arena for bulk placement with wholesale reset. Storage handed out here
// is invisible to the garbage collector, so callers must not place values
// containing Go pointers in it.
package allocator

import (
	"sync/atomic"
	"unsafe"
)

// Allocator is the interface the off-heap construction path works against.
type Allocator interface {
	// Alloc returns storage for size bytes at the configured default
	// alignment, or nil when the request cannot be satisfied.
	Alloc(size uintptr) unsafe.Pointer
	// AllocAligned is Alloc with an explicit power-of-two alignment.
	AllocAligned(size, alignment uintptr) unsafe.Pointer
	// Free returns storage obtained from this allocator. Freeing nil is a
	// no-op. Arena allocators ignore individual frees.
	Free(ptr unsafe.Pointer)
	// Stats reports allocation counters.
	Stats() Stats
	// Reset releases everything at once, where the allocator supports it.
	Reset()
}

// Stats provides allocation statistics.
type Stats struct {
	TotalAllocated    uintptr
	TotalFreed        uintptr
	ActiveAllocations int
	AllocationCount   uint64
	FreeCount         uint64
	BytesInUse        uintptr
	MappedBytes       uintptr
}

// Config holds allocator tuning.
type Config struct {
	// AlignmentSize is the default allocation alignment.
	AlignmentSize uintptr
	// MmapThreshold routes requests at or above this size to mmap on
	// platforms that support it; 0 keeps everything on the Go heap.
	MmapThreshold uintptr
	// MemoryLimit caps bytes in use; 0 means unlimited.
	MemoryLimit uintptr
}

// Option mutates a Config.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		AlignmentSize: 8,
		MmapThreshold: 128 * 1024,
	}
}

// WithAlignment sets the default allocation alignment.
func WithAlignment(alignment uintptr) Option {
	return func(c *Config) { c.AlignmentSize = alignment }
}

// WithMmapThreshold sets the size at which allocations go to mmap.
func WithMmapThreshold(threshold uintptr) Option {
	return func(c *Config) { c.MmapThreshold = threshold }
}

// WithMemoryLimit caps bytes in use.
func WithMemoryLimit(limit uintptr) Option {
	return func(c *Config) { c.MemoryLimit = limit }
}

// alignUp aligns a size up to the nearest multiple of alignment.
func alignUp(size, alignment uintptr) uintptr {
	return (size + alignment - 1) &^ (alignment - 1)
}

func isPowerOfTwo(v uintptr) bool {
	return v != 0 && v&(v-1) == 0
}

// counters is the atomically updated half of every allocator's statistics.
type counters struct {
	totalAllocated uintptr
	totalFreed     uintptr
	allocCount     uint64
	freeCount      uint64
}

func (c *counters) recordAlloc(size uintptr) {
	atomic.AddUintptr(&c.totalAllocated, size)
	atomic.AddUint64(&c.allocCount, 1)
}

func (c *counters) recordFree(size uintptr) {
	atomic.AddUintptr(&c.totalFreed, size)
	atomic.AddUint64(&c.freeCount, 1)
}

func (c *counters) snapshot() Stats {
	alloc := atomic.LoadUintptr(&c.totalAllocated)
	freed := atomic.LoadUintptr(&c.totalFreed)

	return Stats{
		TotalAllocated:  alloc,
		TotalFreed:      freed,
		AllocationCount: atomic.LoadUint64(&c.allocCount),
		FreeCount:       atomic.LoadUint64(&c.freeCount),
		BytesInUse:      alloc - freed,
	}
}
