package sharedptr

import "errors"

// ErrDanglingWeak is returned when promoting a weak handle whose value has
// already been destroyed. It is the only signaled error in the core; the
// remaining misuse classes (dereferencing an empty handle, adopting one raw
// pointer twice, unsynchronized cross-goroutine count mutation, counter
// overflow) are unchecked caller contract violations.
var ErrDanglingWeak = errors.New("sharedptr: dangling weak reference")

// ErrOutOfMemory is returned by the off-heap construction path when the
// backing allocator cannot satisfy the request.
var ErrOutOfMemory = errors.New("sharedptr: allocator out of memory")

// ErrDiagnosticsDisabled is returned when a diagnostics operation needs an
// installed tracker and none is present.
var ErrDiagnosticsDisabled = errors.New("sharedptr: diagnostics not enabled")
