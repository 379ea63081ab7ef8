package sharedptr

import (
	"errors"
	"testing"
)

// TestWeakEmpty tests the zero-value observer.
func TestWeakEmpty(t *testing.T) {
	var w Weak[int]

	if !w.Expired() {
		t.Error("Zero-value observer should be expired")
	}

	if w.UseCount() != 0 {
		t.Errorf("Zero-value UseCount = %d, want 0", w.UseCount())
	}

	if s := w.Lock(); s.Valid() {
		t.Error("Locking a zero-value observer should yield an empty handle")
	}

	w.Release()
	w.Release()
}

// TestWeakObserve tests observation without ownership.
func TestWeakObserve(t *testing.T) {
	drops := 0
	h := NewFunc(&widget{id: 1}, func(*widget) { drops++ })
	w := WeakOf(h)

	if w.Expired() {
		t.Error("Observer of a live value should not be expired")
	}

	if w.UseCount() != 1 {
		t.Errorf("UseCount = %d, want 1 (observers do not own)", w.UseCount())
	}

	if h.UseCount() != 1 {
		t.Errorf("Owner UseCount = %d, want 1 (deriving an observer must not change it)", h.UseCount())
	}

	h.Release()

	if drops != 1 {
		t.Error("Observer kept the value alive")
	}

	if !w.Expired() {
		t.Error("Observer should expire when the last owner is released")
	}

	if w.UseCount() != 0 {
		t.Errorf("Expired UseCount = %d, want 0", w.UseCount())
	}

	if s := w.Lock(); s.Valid() {
		t.Error("Lock after expiry should yield an empty handle")
	}

	w.Release()
}

// TestWeakLock tests promotion while owners remain.
func TestWeakLock(t *testing.T) {
	h := Make(42)
	w := WeakOf(h)

	locked := w.Lock()

	if !locked.Valid() {
		t.Fatal("Lock of a live value should succeed")
	}

	if locked.Get() != h.Get() {
		t.Error("Promoted handle should expose the observed value")
	}

	if h.UseCount() != 2 {
		t.Errorf("UseCount after lock = %d, want 2", h.UseCount())
	}

	locked.Release()

	if h.UseCount() != 1 {
		t.Errorf("UseCount after releasing the promotion = %d, want 1", h.UseCount())
	}

	h.Release()
	w.Release()
}

// TestFromWeak tests the failing promotion path.
func TestFromWeak(t *testing.T) {
	t.Run("Live", func(t *testing.T) {
		h := Make(5)
		w := WeakOf(h)

		promoted, err := FromWeak(w)
		if err != nil {
			t.Fatalf("FromWeak on a live value: %v", err)
		}

		if *promoted.Get() != 5 || h.UseCount() != 2 {
			t.Error("Promotion should share ownership of the live value")
		}

		promoted.Release()
		h.Release()
		w.Release()
	})

	t.Run("Expired", func(t *testing.T) {
		h := Make(5)
		w := WeakOf(h)
		h.Release()

		promoted, err := FromWeak(w)
		if !errors.Is(err, ErrDanglingWeak) {
			t.Fatalf("FromWeak on an expired observer: err = %v, want ErrDanglingWeak", err)
		}

		if promoted.Valid() {
			t.Error("Failed promotion must not construct an owning handle")
		}

		if w.UseCount() != 0 {
			t.Error("Failed promotion must not alter the strong count")
		}

		w.Release()
	})
}

// TestWeakCloneMove tests observer copy and transfer.
func TestWeakCloneMove(t *testing.T) {
	h := Make(1)
	w := WeakOf(h)

	w2 := w.Clone()

	if w2.Expired() || w2.UseCount() != 1 {
		t.Error("Cloned observer should see the same liveness")
	}

	moved := w2.Move()

	if !w2.Expired() {
		t.Error("Moved-from observer should be empty")
	}

	if moved.Expired() {
		t.Error("Moved-to observer should still see the live value")
	}

	moved.Release()
	w.Release()
	h.Release()
}

// TestWeakAssign tests observer assignment via temporary-and-swap.
func TestWeakAssign(t *testing.T) {
	h1 := Make(1)
	h2 := Make(2)

	w := WeakOf(h1)
	other := WeakOf(h2)

	w.Assign(other)

	if locked := w.Lock(); !locked.Valid() || *locked.Get() != 2 {
		t.Error("Assignment should retarget the observer")
	} else {
		locked.Release()
	}

	w.Assign(w) // self-assignment stays valid

	if w.Expired() {
		t.Error("Self-assignment should leave the observer intact")
	}

	w.AssignShared(h1)

	if locked := w.Lock(); !locked.Valid() || *locked.Get() != 1 {
		t.Error("AssignShared should retarget to the owning handle's value")
	} else {
		locked.Release()
	}

	other.Release()
	w.Release()
	h1.Release()
	h2.Release()
}

// TestWeakSwapReset tests the remaining modifiers.
func TestWeakSwapReset(t *testing.T) {
	h1 := Make(1)
	h2 := Make(2)

	a := WeakOf(h1)
	b := WeakOf(h2)

	a.Swap(&b)

	if la := a.Lock(); *la.Get() != 2 {
		t.Error("Swap should exchange observations")
	} else {
		la.Release()
	}

	b.Reset()

	if !b.Expired() {
		t.Error("Reset observer should be expired")
	}

	if h1.UseCount() != 1 {
		t.Error("Resetting an observer must not change the strong count")
	}

	a.Release()
	h1.Release()
	h2.Release()
}

// TestBlockLifetime verifies that the block's bookkeeping outlives the value
// while observers remain, and ends exactly once when both counts reach zero,
// in either destruction order.
func TestBlockLifetime(t *testing.T) {
	t.Run("OwnerThenObserver", func(t *testing.T) {
		tr := EnableDiagnostics()
		defer DisableDiagnostics()

		h := Make(1)
		w := WeakOf(h)

		if tr.LiveBlocks() != 1 {
			t.Fatalf("LiveBlocks = %d, want 1", tr.LiveBlocks())
		}

		h.Release()

		if tr.LiveBlocks() != 1 {
			t.Error("Block bookkeeping ended while an observer remains")
		}

		w.Release()

		if tr.LiveBlocks() != 0 {
			t.Error("Block bookkeeping should end with the last observer")
		}
	})

	t.Run("ObserverThenOwner", func(t *testing.T) {
		tr := EnableDiagnostics()
		defer DisableDiagnostics()

		h := Make(1)
		w := WeakOf(h)

		w.Release()

		if tr.LiveBlocks() != 1 {
			t.Error("Block bookkeeping ended while an owner remains")
		}

		h.Release()

		if tr.LiveBlocks() != 0 {
			t.Error("Block bookkeeping should end with the last owner")
		}

		tracked, freed := tr.Stats()
		if tracked != 1 || freed != 1 {
			t.Errorf("Tracker stats = (%d tracked, %d freed), want (1, 1)", tracked, freed)
		}
	})
}
