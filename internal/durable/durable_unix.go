//go:build linux || freebsd

package durable

import "golang.org/x/sys/unix"

// fdatasync flushes f's data (not necessarily its metadata) to stable
// storage, grounded on hive/dirty/flush_unix.go's fdatasync.
func fdatasync(fd uintptr) error {
	return unix.Fdatasync(int(fd))
}
