// Package main demonstrates the shared-ownership handle primitives.
// This demo shows combined allocation, weak observation, aliasing,
// off-heap placement, and leak diagnostics.
package main

import (
	"fmt"

	"github.com/orizon-lang/sharedptr"
)

type Buffer struct {
	Name string
	Data [16]byte
}

type Header struct {
	Magic   uint32
	Version uint32
}

type Packet struct {
	Header  Header
	Payload int64
}

func main() {
	fmt.Println("🧩 Shared Ownership Handle Demo")
	fmt.Println("================================")

	// Demo 1: Combined allocation and shared ownership
	fmt.Println("\n📦 Demo 1: Combined Allocation")

	h := sharedptr.MakeDrop(Buffer{Name: "frame-0"}, func(b *Buffer) {
		fmt.Printf("  drop hook: releasing %q\n", b.Name)
	})

	fmt.Printf("  created %q, use count = %d\n", h.Get().Name, h.UseCount())

	h2 := h.Clone()
	fmt.Printf("  cloned, use count = %d\n", h.UseCount())

	h2.Release()
	fmt.Printf("  released clone, use count = %d\n", h.UseCount())

	// Demo 2: Weak observation and promotion
	fmt.Println("\n🔭 Demo 2: Weak Observation")

	w := sharedptr.WeakOf(h)
	fmt.Printf("  observer sees use count = %d, expired = %v\n", w.UseCount(), w.Expired())

	if locked := w.Lock(); locked.Valid() {
		fmt.Printf("  promoted while alive, use count = %d\n", locked.UseCount())
		locked.Release()
	}

	h.Release()
	fmt.Printf("  last owner released, expired = %v\n", w.Expired())

	if _, err := sharedptr.FromWeak(w); err != nil {
		fmt.Printf("  promotion after expiry: %v\n", err)
	}

	w.Release()

	// Demo 3: Aliasing a sub-object
	fmt.Println("\n🎯 Demo 3: Aliasing")

	pkt := sharedptr.Make(Packet{Header: Header{Magic: 0x4F5A, Version: 3}, Payload: 42})
	hdr := sharedptr.Alias(pkt, &pkt.Get().Header)

	fmt.Printf("  header alias: magic = %#x, shared use count = %d\n", hdr.Get().Magic, hdr.UseCount())

	pkt.Release()
	fmt.Printf("  packet handle released; header still valid, version = %d\n", hdr.Get().Version)
	hdr.Release()

	// Demo 4: Off-heap placement
	fmt.Println("\n🗺  Demo 4: Off-Heap Placement")

	alloc := sharedptr.NewSystemAllocator()

	off, err := sharedptr.NewOffHeap(alloc, Header{Magic: 0xBEEF, Version: 1})
	if err != nil {
		fmt.Printf("  off-heap placement failed: %v\n", err)
		return
	}

	fmt.Printf("  off-heap header magic = %#x, active allocations = %d\n",
		off.Get().Magic, alloc.Stats().ActiveAllocations)

	off.Release()
	fmt.Printf("  released, active allocations = %d\n", alloc.Stats().ActiveAllocations)

	// Demo 5: Leak diagnostics
	fmt.Println("\n🔍 Demo 5: Leak Diagnostics")

	sharedptr.EnableDiagnostics(sharedptr.WithLeakStacks(true))

	leaked := sharedptr.Make(Buffer{Name: "forgotten"})
	_ = leaked // never released

	fmt.Println(sharedptr.FormatLeaks(sharedptr.CheckLeaks()))

	leaked.Release()
	sharedptr.DisableDiagnostics()

	fmt.Println("✅ Demo complete")
}
