// Package logging provides the ops, diag and trace log streams shared by
// the zarr-divider packages.
package logging

import (
	"io"
	"log"
	"sync"
)

// Writers holds the io.Writers for each logging stream.
type Writers struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

var (
	mu          sync.RWMutex
	opsLogger   *log.Logger
	diagLogger  *log.Logger
	traceLogger *log.Logger
)

// SetWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetWriters(w Writers) {
	mu.Lock()
	defer mu.Unlock()
	opsLogger = newLogger("[divider] ", w.Ops)
	diagLogger = newLogger("[divider] ", w.Diag)
	traceLogger = newLogger("[divider] ", w.Trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream (errors, lifecycle events, written layers).
func Opsf(format string, args ...any) {
	logf(&opsLogger, format, args...)
}

// Diagf logs to the diag stream (per-layer detail).
func Diagf(format string, args ...any) {
	logf(&diagLogger, format, args...)
}

// Tracef logs to the trace stream (per-chunk detail).
func Tracef(format string, args ...any) {
	logf(&traceLogger, format, args...)
}

func logf(target **log.Logger, format string, args ...any) {
	mu.RLock()
	l := *target
	mu.RUnlock()
	if l != nil {
		l.Printf(format, args...)
	}
}
