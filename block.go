package sharedptr

// refCounts is the shared bookkeeping carried by every control block.
// strong counts live owning handles; weak counts live observers.
// Counts are plain ints: cross-goroutine mutation without external
// synchronization is a caller contract violation.
type refCounts struct {
	strong int
	weak   int
}

// controlBlock is the capability every handle operates through. Exactly two
// concrete variants exist; the set is closed.
type controlBlock interface {
	counts() *refCounts

	// releaseObject destroys the managed value. Called exactly once, when
	// the strong count reaches zero. The block's counts stay valid and
	// inspectable afterwards, until both counts reach zero.
	releaseObject()
}

// pointerBlock wraps a value allocated independently of the block. Release
// runs the drop hook against the wrapped pointer and severs the reference.
type pointerBlock[T any] struct {
	refCounts
	obj  *T
	drop func(*T)
}

func (b *pointerBlock[T]) counts() *refCounts { return &b.refCounts }

func (b *pointerBlock[T]) releaseObject() {
	runDrop(b.drop, b.obj)
	b.obj = nil
}

// holderBlock embeds the value's storage directly inside the block, so one
// allocation carries both the bookkeeping and the value. Release destroys
// the value in place; the storage itself lives and dies with the block.
type holderBlock[T any] struct {
	refCounts
	value T
	drop  func(*T)
}

func (b *holderBlock[T]) counts() *refCounts { return &b.refCounts }

func (b *holderBlock[T]) releaseObject() {
	runDrop(b.drop, &b.value)
	if sr, ok := any(&b.value).(selfReleaser); ok {
		sr.releaseSelf()
	}

	// Destroy in place: clear the slot so anything the value referenced
	// becomes collectable while weak observers keep the block itself alive.
	var zero T
	b.value = zero
}

// Disposer is the optional destructor interface. When a handle is built
// without an explicit drop hook, release calls Dispose if the managed
// value implements it.
type Disposer interface {
	Dispose()
}

func runDrop[T any](drop func(*T), p *T) {
	if drop != nil {
		drop(p)

		return
	}

	if d, ok := any(p).(Disposer); ok {
		d.Dispose()
	}
}

// freeBlock ends the block's bookkeeping lifetime once both counts are zero.
// The caller has already severed its own reference; unregistering here lets
// the tracker flag blocks that never get this far.
func freeBlock(b controlBlock) {
	blockFreed(b)
}
