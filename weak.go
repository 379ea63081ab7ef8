package sharedptr

// Weak is a copyable, non-owning observer handle for a value of type T
// managed through Shared handles. It never keeps the value alive; it only
// keeps the block's bookkeeping alive, so expiry stays observable after the
// value is gone. The zero value is an empty handle.
type Weak[T any] struct {
	obj *T
	ctl controlBlock
}

// WeakOf derives an observer from an owning handle; the weak count grows by
// one. Deriving from an empty handle yields an empty observer.
func WeakOf[T any](s Shared[T]) Weak[T] {
	if s.ctl != nil {
		s.ctl.counts().weak++
	}

	return Weak[T]{obj: s.obj, ctl: s.ctl}
}

// Clone returns a new observer of the same block.
func (w Weak[T]) Clone() Weak[T] {
	if w.ctl != nil {
		w.ctl.counts().weak++
	}

	return Weak[T]{obj: w.obj, ctl: w.ctl}
}

// Move transfers the observation out of w, leaving it empty. Counts are
// unchanged.
func (w *Weak[T]) Move() Weak[T] {
	out := Weak[T]{obj: w.obj, ctl: w.ctl}
	w.obj, w.ctl = nil, nil

	return out
}

// Assign replaces w's observation with a clone of other, via
// temporary-and-swap like Shared.Assign.
func (w *Weak[T]) Assign(other Weak[T]) {
	tmp := other.Clone()
	tmp.Swap(w)
	tmp.Release()
}

// AssignMove replaces w's observation with other's, emptying other.
func (w *Weak[T]) AssignMove(other *Weak[T]) {
	tmp := other.Move()
	tmp.Swap(w)
	tmp.Release()
}

// AssignShared replaces w's observation with one derived from an owning
// handle.
func (w *Weak[T]) AssignShared(s Shared[T]) {
	tmp := WeakOf(s)
	tmp.Swap(w)
	tmp.Release()
}

// Release ends this observer. When both counts reach zero the block's
// bookkeeping ends; the managed value itself was already destroyed when the
// last owner went away. Releasing an empty observer is a no-op.
func (w *Weak[T]) Release() {
	if w.ctl != nil {
		c := w.ctl.counts()
		c.weak--

		if c.strong+c.weak == 0 {
			freeBlock(w.ctl)
		}
	}

	w.obj, w.ctl = nil, nil
}

// Reset releases the observation, leaving the handle empty.
func (w *Weak[T]) Reset() {
	var empty Weak[T]

	empty.Swap(w)
	empty.Release()
}

// Swap exchanges the contents of two observers. Counts are unchanged.
func (w *Weak[T]) Swap(other *Weak[T]) {
	w.obj, other.obj = other.obj, w.obj
	w.ctl, other.ctl = other.ctl, w.ctl
}

// Lock promotes the observer to an owning handle, or returns an empty
// handle when the value is already gone. Unlike FromWeak it never fails
// loudly; callers test the result with Valid.
func (w Weak[T]) Lock() Shared[T] {
	if w.Expired() {
		return Shared[T]{}
	}

	w.ctl.counts().strong++

	return Shared[T]{obj: w.obj, ctl: w.ctl}
}

// Expired reports whether the observed value has been destroyed.
func (w Weak[T]) Expired() bool { return w.UseCount() == 0 }

// UseCount returns the number of owning handles still alive for the
// observed block, or zero for an empty observer.
func (w Weak[T]) UseCount() int {
	if w.ctl == nil {
		return 0
	}

	return w.ctl.counts().strong
}
