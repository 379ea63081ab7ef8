//go:build !unix

package allocator

import (
	"errors"
	"os"
)

const mmapSupported = false

func pageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// mmap is unavailable on this platform; the system allocator keeps every
// request on the heap path.
func mmap(length uintptr) ([]byte, error) {
	return nil, errors.New("allocator: mmap unsupported on this platform")
}

func munmap(region []byte) {}
