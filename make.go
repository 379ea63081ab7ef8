package sharedptr

import (
	"unsafe"

	"github.com/orizon-lang/sharedptr/internal/diagnostics"
)

// Make constructs v inside a combined-allocation block and returns the sole
// owning handle. One heap allocation carries both the bookkeeping and the
// value, instead of the two that New incurs (one for the value, one for the
// block); this is the preferred construction path.
func Make[T any](v T) Shared[T] {
	return MakeFunc(func(p *T) { *p = v }, nil)
}

// MakeDrop is Make with an explicit drop hook.
func MakeDrop[T any](v T, drop func(*T)) Shared[T] {
	return MakeFunc(func(p *T) { *p = v }, drop)
}

// MakeFunc constructs the value in place: init runs against the block's
// embedded zero-valued slot before any handle exists. A nil init leaves the
// zero value. The drop hook (or the Disposer fallback) destroys the value
// in place when the last owner is released; the slot's storage lives on
// with the block while observers remain.
func MakeFunc[T any](init func(*T), drop func(*T)) Shared[T] {
	b := &holderBlock[T]{drop: drop}
	if init != nil {
		init(&b.value)
	}

	b.strong = 1
	blockAllocated(b, diagnostics.KindHolder)

	if sb, ok := any(&b.value).(selfBinder); ok {
		sb.bindSelf(b, unsafe.Pointer(&b.value))
	}

	return Shared[T]{obj: &b.value, ctl: b}
}

// SelfRef, when embedded in a managed type, lets the value hand out handles
// to itself from its own methods. Make populates it with a weak
// back-reference to the freshly built block; values constructed outside the
// factory keep an empty back-reference and SharedFromSelf fails with
// ErrDanglingWeak.
type SelfRef[T any] struct {
	self Weak[T]
}

// SharedFromSelf returns an owning handle to the value itself.
func (r *SelfRef[T]) SharedFromSelf() (Shared[T], error) {
	return FromWeak(r.self)
}

// WeakFromSelf returns an observer of the value itself.
func (r *SelfRef[T]) WeakFromSelf() Weak[T] {
	return r.self.Clone()
}

// selfBinder is satisfied by any *T embedding *SelfRef[T]; the factory uses
// it to install the back-reference without knowing T embeds anything.
type selfBinder interface {
	bindSelf(ctl controlBlock, obj unsafe.Pointer)
}

// selfReleaser drops the back-reference while the value is being destroyed,
// before the owning handle checks the zero-zero condition.
type selfReleaser interface {
	releaseSelf()
}

func (r *SelfRef[T]) bindSelf(ctl controlBlock, obj unsafe.Pointer) {
	r.self = Weak[T]{obj: (*T)(obj), ctl: ctl}
	ctl.counts().weak++
}

func (r *SelfRef[T]) releaseSelf() {
	if r.self.ctl != nil {
		// Bare decrement: the releasing owner performs the zero-zero check
		// right after the value's destruction finishes.
		r.self.ctl.counts().weak--
	}

	r.self.obj, r.self.ctl = nil, nil
}
