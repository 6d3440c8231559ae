package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds event-scoped logging context threaded through a single
// Dispatch call so every line it emits carries the same correlation fields.
type LogContext struct {
	TraceID   string    // run correlation ID (a UUID per cachesim run)
	SpanID    string    // OpenTelemetry span ID
	CacheName string    // Name of the cache instance handling the event
	Command   string    // Event command being dispatched
	Addr      uint64    // Address the event concerns
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a cache instance.
func NewLogContext(cacheName string) *LogContext {
	return &LogContext{
		CacheName: cacheName,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		CacheName: lc.CacheName,
		Command:   lc.Command,
		Addr:      lc.Addr,
		StartTime: lc.StartTime,
	}
}

// WithCommand returns a copy with the command set
func (lc *LogContext) WithCommand(cmd string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Command = cmd
	}
	return clone
}

// WithAddr returns a copy with the address set
func (lc *LogContext) WithAddr(addr uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Addr = addr
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
