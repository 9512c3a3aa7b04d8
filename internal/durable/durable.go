// Package durable provides cross-platform fsync-to-stable-storage helpers
// for the writer's atomic file sink (spec.md §6.4: "mutation-safe
// rewriting through a temp file rename"), grounded on the teacher's
// per-OS flush helpers in hive/dirty/flush_{unix,darwin,windows}.go.
package durable

import "os"

// Sync flushes f's data to stable storage, using the most durable
// mechanism available on the current OS (fdatasync on Linux and FreeBSD,
// F_FULLFSYNC on macOS, FlushFileBuffers on Windows). No other platform
// has an implementation.
func Sync(f *os.File) error {
	return fdatasync(f.Fd())
}
