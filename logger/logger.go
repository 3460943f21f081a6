// Package logger provides file-backed debug logging for the engine. A
// program that owns the terminal cannot log to stdout, so diagnostics go
// to a file, and only when debug logging is enabled.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// DefaultLogPath is where debug output lands unless Init overrides it.
const DefaultLogPath = "/tmp/miaou-matrix-debug.log"

var (
	mu      sync.Mutex
	handle  *slog.Logger
	logFile *os.File
	enabled bool
)

// Init opens the log file and enables logging. Returns an error if the
// file cannot be opened; logging stays disabled in that case.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if path == "" {
		path = DefaultLogPath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logger: open %s: %w", path, err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	handle = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	enabled = true
	return nil
}

// Enabled reports whether logging is active.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a formatted debug line. No-op unless Init succeeded.
func Log(format string, args ...any) {
	mu.Lock()
	h := handle
	on := enabled
	mu.Unlock()
	if !on || h == nil {
		return
	}
	h.Debug(fmt.Sprintf(format, args...))
}

// Close flushes and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	handle = nil
	enabled = false
}
