package allocator

import (
	"sync"
	"unsafe"
)

// SystemAllocator hands out individually freeable storage. Small requests
// come from the Go heap (the backing slice is pinned in a table until Free);
// requests at or above the mmap threshold go to the operating system
// directly on platforms that support it, so their release is immediate and
// observable rather than deferred to the collector.
type SystemAllocator struct {
	mu       sync.Mutex
	config   *Config
	heap     map[unsafe.Pointer][]byte
	mapped   map[unsafe.Pointer][]byte
	mappedSz uintptr
	counters
}

// NewSystem creates a system allocator.
func NewSystem(opts ...Option) *SystemAllocator {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	return &SystemAllocator{
		config: config,
		heap:   make(map[unsafe.Pointer][]byte),
		mapped: make(map[unsafe.Pointer][]byte),
	}
}

// Alloc allocates size bytes at the default alignment.
func (sa *SystemAllocator) Alloc(size uintptr) unsafe.Pointer {
	return sa.AllocAligned(size, sa.config.AlignmentSize)
}

// AllocAligned allocates size bytes at the given power-of-two alignment.
func (sa *SystemAllocator) AllocAligned(size, alignment uintptr) unsafe.Pointer {
	if size == 0 || !isPowerOfTwo(alignment) {
		return nil
	}

	if limit := sa.config.MemoryLimit; limit > 0 {
		if sa.snapshot().BytesInUse+size > limit {
			return nil
		}
	}

	if sa.config.MmapThreshold > 0 && size >= sa.config.MmapThreshold && mmapSupported {
		if ptr := sa.allocMapped(size, alignment); ptr != nil {
			return ptr
		}
		// Fall through to the heap path when the mapping fails.
	}

	return sa.allocHeap(size, alignment)
}

func (sa *SystemAllocator) allocHeap(size, alignment uintptr) unsafe.Pointer {
	// Over-allocate so any alignment can be satisfied within the slice.
	buf := make([]byte, size+alignment)
	off := alignUp(uintptr(unsafe.Pointer(&buf[0])), alignment) - uintptr(unsafe.Pointer(&buf[0]))
	aligned := unsafe.Pointer(&buf[off])

	sa.mu.Lock()
	sa.heap[aligned] = buf
	sa.mu.Unlock()

	sa.recordAlloc(uintptr(len(buf)))

	return aligned
}

func (sa *SystemAllocator) allocMapped(size, alignment uintptr) unsafe.Pointer {
	region, err := mmap(alignUp(size, pageSize()))
	if err != nil || len(region) == 0 {
		return nil
	}

	// Mappings are page aligned, which covers any sane value alignment.
	ptr := unsafe.Pointer(&region[0])

	sa.mu.Lock()
	sa.mapped[ptr] = region
	sa.mappedSz += uintptr(len(region))
	sa.mu.Unlock()

	sa.recordAlloc(uintptr(len(region)))

	return ptr
}

// Free returns storage to the allocator. Unknown pointers are ignored.
func (sa *SystemAllocator) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	sa.mu.Lock()

	if region, ok := sa.mapped[ptr]; ok {
		delete(sa.mapped, ptr)
		sa.mappedSz -= uintptr(len(region))
		sa.mu.Unlock()

		sa.recordFree(uintptr(len(region)))
		munmap(region)

		return
	}

	if buf, ok := sa.heap[ptr]; ok {
		delete(sa.heap, ptr)
		sa.mu.Unlock()

		// Dropping the table reference is the free: the collector reclaims
		// the backing slice once nothing else pins it.
		sa.recordFree(uintptr(len(buf)))

		return
	}

	sa.mu.Unlock()
}

// Stats reports allocation counters.
func (sa *SystemAllocator) Stats() Stats {
	stats := sa.snapshot()

	sa.mu.Lock()
	stats.ActiveAllocations = len(sa.heap) + len(sa.mapped)
	stats.MappedBytes = sa.mappedSz
	sa.mu.Unlock()

	return stats
}

// Reset drops every outstanding allocation at once.
func (sa *SystemAllocator) Reset() {
	sa.mu.Lock()
	mapped := sa.mapped
	sa.heap = make(map[unsafe.Pointer][]byte)
	sa.mapped = make(map[unsafe.Pointer][]byte)
	sa.mappedSz = 0
	sa.mu.Unlock()

	for _, region := range mapped {
		munmap(region)
	}
}
