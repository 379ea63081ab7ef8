// Package sharedptr provides shared-ownership handles for deterministic
// resource management in a garbage collection-independent style.
// This implements a dual-counter control structure supporting shared and.
// weak handles, aliasing, and a combined-allocation construction path.
//
// A Shared[T] owns the managed value together with every other Shared[T]
// cloned from it; the value's drop hook runs exactly once, when the last
// owner is released. A Weak[T] observes the value without keeping it alive
// and can be promoted back to a Shared[T] while owners remain.
//
// Reference counts are plain integers: a control block must not be mutated
// from multiple goroutines without external synchronization. Substitute an
// external mutex (or fork the counters to sync/atomic) when handles cross
// goroutines; the core deliberately pays no atomicity cost.
package sharedptr
