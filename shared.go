package sharedptr

import "github.com/orizon-lang/sharedptr/internal/diagnostics"

// Shared is a copyable, reference-counted owning handle for a value of type
// T. The zero value is an empty handle. Handles are value types: pass them
// with Clone (ownership share) or Move (ownership transfer), and end each
// handle's ownership with Release. Plain struct assignment produces an
// uncounted copy and must not be released twice.
//
// The exposed pointer may differ from the value the handle's block actually
// owns (see Alias), so two handles over one block can expose different
// addresses.
type Shared[T any] struct {
	obj *T
	ctl controlBlock
}

// New adopts a raw pointer into a fresh control block with a strong count of
// one. Adopting the same pointer twice through independent New calls is a
// caller error and produces a double release; it is not defended against.
func New[T any](p *T) Shared[T] {
	return NewFunc(p, nil)
}

// NewFunc is New with an explicit drop hook, run exactly once when the last
// owner is released. A nil hook falls back to the Disposer interface, then
// to leaving reclamation to the garbage collector.
func NewFunc[T any](p *T, drop func(*T)) Shared[T] {
	b := &pointerBlock[T]{obj: p, drop: drop}
	b.strong = 1
	blockAllocated(b, diagnostics.KindPointer)

	return Shared[T]{obj: p, ctl: b}
}

// Alias shares ownership of owner's block while exposing p instead of the
// owner's pointer. Used to hand out a sub-object of a managed value without
// a second allocation or separate ownership.
func Alias[T any, U any](owner Shared[U], p *T) Shared[T] {
	if owner.ctl != nil {
		owner.ctl.counts().strong++
	}

	return Shared[T]{obj: p, ctl: owner.ctl}
}

// FromWeak promotes a weak handle to an owning one. Fails with
// ErrDanglingWeak when the observed value is already gone.
func FromWeak[T any](w Weak[T]) (Shared[T], error) {
	if w.Expired() {
		return Shared[T]{}, ErrDanglingWeak
	}

	w.ctl.counts().strong++

	return Shared[T]{obj: w.obj, ctl: w.ctl}, nil
}

// Clone returns a new handle sharing ownership; the strong count grows by
// one. Cloning an empty handle yields an empty handle.
func (s Shared[T]) Clone() Shared[T] {
	if s.ctl != nil {
		s.ctl.counts().strong++
	}

	return Shared[T]{obj: s.obj, ctl: s.ctl}
}

// Move transfers ownership out of s, leaving it empty. Counts are unchanged.
func (s *Shared[T]) Move() Shared[T] {
	out := Shared[T]{obj: s.obj, ctl: s.ctl}
	s.obj, s.ctl = nil, nil

	return out
}

// Assign replaces s's ownership with a share of other. Implemented as
// temporary-and-swap: the clone swaps into s and the temporary's release
// disposes of s's previous contents, which keeps self-assignment correct
// without duplicating release logic.
func (s *Shared[T]) Assign(other Shared[T]) {
	tmp := other.Clone()
	tmp.Swap(s)
	tmp.Release()
}

// AssignMove replaces s's ownership with other's, emptying other.
func (s *Shared[T]) AssignMove(other *Shared[T]) {
	tmp := other.Move()
	tmp.Swap(s)
	tmp.Release()
}

// Release ends this handle's ownership. When the strong count reaches zero
// the managed value is destroyed, exactly once; when both counts reach zero
// the block's bookkeeping ends too. The handle is empty afterwards and
// releasing an empty handle is a no-op.
func (s *Shared[T]) Release() {
	if s.ctl != nil {
		c := s.ctl.counts()
		c.strong--

		if c.strong == 0 {
			s.ctl.releaseObject()
		}

		if c.strong+c.weak == 0 {
			freeBlock(s.ctl)
		}
	}

	s.obj, s.ctl = nil, nil
}

// Reset releases ownership, leaving the handle empty.
func (s *Shared[T]) Reset() {
	var empty Shared[T]

	empty.Swap(s)
	empty.Release()
}

// ResetTo releases current ownership and adopts p into a fresh block.
func (s *Shared[T]) ResetTo(p *T) {
	n := New(p)
	n.Swap(s)
	n.Release()
}

// ResetToFunc is ResetTo with an explicit drop hook.
func (s *Shared[T]) ResetToFunc(p *T, drop func(*T)) {
	n := NewFunc(p, drop)
	n.Swap(s)
	n.Release()
}

// Swap exchanges the contents of two handles. Counts are unchanged.
func (s *Shared[T]) Swap(other *Shared[T]) {
	s.obj, other.obj = other.obj, s.obj
	s.ctl, other.ctl = other.ctl, s.ctl
}

// Get returns the exposed pointer without affecting ownership. Nil for an
// empty handle.
func (s Shared[T]) Get() *T { return s.obj }

// Deref returns the managed value. Dereferencing an empty handle is a
// caller contract violation; there is no nil check on this path.
func (s Shared[T]) Deref() T { return *s.obj }

// UseCount returns the number of owning handles sharing the block, or zero
// for an empty handle.
func (s Shared[T]) UseCount() int {
	if s.ctl == nil {
		return 0
	}

	return s.ctl.counts().strong
}

// Valid reports whether the handle exposes a value.
func (s Shared[T]) Valid() bool { return s.obj != nil }

// Equal reports whether two handles expose the same address. Aliased handles
// over one block compare unequal when their exposed pointers differ, and
// handles from different blocks compare equal when the addresses match.
func (s Shared[T]) Equal(other Shared[T]) bool { return s.obj == other.obj }
