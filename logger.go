package gpubind

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gpubind and all registered backends.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by gpubind:
//   - [slog.LevelDebug]: layout details (binding counts, assigned offsets)
//   - [slog.LevelWarn]: binding mismatches the binder could not repair, limit warnings
//   - [slog.LevelError]: validation failures, unassigned static resources
//
// Example:
//
//	gpubind.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.RLock()
	defer sinksMu.RUnlock()
	for s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger. Backend packages call this to share
// the same configuration without import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by backends that keep their own logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

var (
	sinksMu sync.RWMutex
	sinks   = make(map[loggerSetter]struct{})
)

// PropagateLogger registers b to receive the current logger now and on
// every later SetLogger call. Values that do not accept a logger are ignored.
func PropagateLogger(b any) {
	ls, ok := b.(loggerSetter)
	if !ok {
		return
	}
	ls.SetLogger(Logger())

	sinksMu.Lock()
	sinks[ls] = struct{}{}
	sinksMu.Unlock()
}

// DetachLogger stops propagating logger changes to b.
func DetachLogger(b any) {
	ls, ok := b.(loggerSetter)
	if !ok {
		return
	}
	sinksMu.Lock()
	delete(sinks, ls)
	sinksMu.Unlock()
}
