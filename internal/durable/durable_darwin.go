//go:build darwin

package durable

import "golang.org/x/sys/unix"

// fdatasync flushes f's data to stable storage using F_FULLFSYNC, which on
// macOS is required for power-loss durability (plain fsync only reaches
// the drive cache), grounded on hive/dirty/flush_darwin.go's fdatasync.
func fdatasync(fd uintptr) error {
	_, err := unix.FcntlInt(fd, unix.F_FULLFSYNC, 0)
	return err
}
