// Package telemetry carries the ambient logging, CSV profiling, and
// websocket status-streaming surface of spec.md §6/§7: log_stream,
// log_pool, profile_csv_enabled, profile_csv_path. The teacher logs
// straight to stdout via fmt/log (no structured logging library appears
// anywhere in the retrieved pack), so Logger stays a thin wrapper over
// the standard library rather than adopting an out-of-pack dependency.
package telemetry

import (
	"log"
	"os"
	"sync"
)

// Logger wraps the standard library logger with the per-path once-guard
// spec.md §7 asks for ("logging once per path, not spamming per frame")
// plus independent toggles for the stream and pool subsystems (spec.md
// §6: log_stream, log_pool).
type Logger struct {
	std        *log.Logger
	LogStream  bool
	LogPool    bool

	onceMu   sync.Mutex
	warnedAt map[string]bool
}

// NewLogger builds a Logger writing to stderr, matching the teacher's
// go-to-stderr-on-error convention (main.go's log.Fatalf).
func NewLogger(logStream, logPool bool) *Logger {
	return &Logger{
		std:       log.New(os.Stderr, "", log.LstdFlags),
		LogStream: logStream,
		LogPool:   logPool,
		warnedAt:  make(map[string]bool),
	}
}

// Stream logs a streaming-subsystem message if LogStream is enabled.
func (l *Logger) Stream(format string, args ...any) {
	if l == nil || !l.LogStream {
		return
	}
	l.std.Printf("[stream] "+format, args...)
}

// Pool logs a GPU-pool-subsystem message if LogPool is enabled.
func (l *Logger) Pool(format string, args ...any) {
	if l == nil || !l.LogPool {
		return
	}
	l.std.Printf("[pool] "+format, args...)
}

// WarnOnce logs a warning for path exactly once for the lifetime of the
// Logger, suppressing repeat spam from a recurring per-frame failure
// (e.g. the same region file failing to flush every tick).
func (l *Logger) WarnOnce(path, format string, args ...any) {
	if l == nil {
		return
	}
	l.onceMu.Lock()
	already := l.warnedAt[path]
	l.warnedAt[path] = true
	l.onceMu.Unlock()
	if already {
		return
	}
	l.std.Printf("[warn once: %s] "+format, append([]any{path}, args...)...)
}

// Errorf always logs, regardless of the stream/pool toggles — reserved
// for conditions the operator must see (region I/O failure, pool
// exhaustion).
func (l *Logger) Errorf(format string, args ...any) {
	if l == nil {
		log.Printf(format, args...)
		return
	}
	l.std.Printf("[error] "+format, args...)
}
