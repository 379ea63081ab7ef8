//go:build unix

package allocator

import (
	"golang.org/x/sys/unix"
)

const mmapSupported = true

func pageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// mmap obtains an anonymous private mapping of length bytes.
func mmap(length uintptr) ([]byte, error) {
	return unix.Mmap(-1, 0, int(length),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
}

// munmap returns a mapping to the operating system.
func munmap(region []byte) {
	_ = unix.Munmap(region)
}
