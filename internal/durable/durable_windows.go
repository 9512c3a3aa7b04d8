//go:build windows

package durable

import "golang.org/x/sys/windows"

// fdatasync flushes f's data and metadata to stable storage via
// FlushFileBuffers, grounded on hive/dirty/flush_windows.go's fdatasync.
func fdatasync(fd uintptr) error {
	return windows.FlushFileBuffers(windows.Handle(fd))
}
