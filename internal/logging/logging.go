// Package logging is the ambient logging sink (SPEC_FULL.md §2.2),
// grounded on cmd/hiveexplorer/logger/logger.go. It defaults to
// discarding everything so the core library stays silent; only
// cmd/recctl calls Init to turn logging on.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the active logger. Discards all output until Init is called.
var L *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "recdb-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures Init.
type Options struct {
	Enabled bool       // If false, all logging is discarded.
	LogDir  string     // Directory for log files. Default: ~/.recdb/logs
	Level   slog.Level // Minimum level. Default: LevelInfo when enabled.
}

// Init configures L. Call from main() before any log calls.
func Init(opts Options) error {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	logDir := opts.LogDir
	if logDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		logDir = filepath.Join(home, ".recdb", "logs")
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	cleanOldLogs(logDir)

	filename := filepath.Join(logDir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	level := opts.Level
	if level == 0 {
		level = slog.LevelInfo
	}

	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return nil
}

// cleanOldLogs removes log files older than retentionDays, best-effort.
func cleanOldLogs(logDir string) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(logDir, name))
		}
	}
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
