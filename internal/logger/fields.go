package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// These keys stay consistent across every cache instance in a simulation
// run, so log aggregation and querying work the same way regardless of
// which component emitted the line.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // correlation ID of one cachesim run
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Component & Event
	// ========================================================================
	KeyCacheName = "cache"     // Symbolic name of the cache instance
	KeyCommand   = "cmd"       // Event command: ReadReq, SupplyData, Invalidate, etc.
	KeyEventID   = "event_id"  // Event id (origin.seq)
	KeyLink      = "link"      // Logical link an event arrived/departed on
	KeyLinkID    = "link_id"   // Disambiguates among multiple links of the same kind
	KeyAddr      = "addr"      // Byte address
	KeyBaseAddr  = "base_addr" // Block-aligned address
	KeyStatus    = "status"    // Operation/response status code

	// ========================================================================
	// Block / Coherence State
	// ========================================================================
	KeyBlockStatus = "block_status" // Block coherence state: Invalid, Shared, Exclusive, Dirty
	KeyRow         = "row"          // Row/set index
	KeyCol         = "col"          // Way index within a row
	KeyMode        = "mode"         // Cache mode: STANDARD, INCLUSIVE, EXCLUSIVE

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeySize  = "size"  // Transfer size in bytes
	KeyCount = "count" // Byte count requested

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeySessionID = "session_id" // Simulation run identifier
	KeyRequestID = "request_id" // Component-scoped request id

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code
	KeySource     = "source"      // Data source/origin tag
	KeyOperation  = "operation"   // Handler/sub-operation name

	// ========================================================================
	// Cache Layer
	// ========================================================================
	KeyCacheHit      = "cache_hit"      // Cache hit indicator
	KeyCacheState    = "cache_state"    // Same as KeyBlockStatus, used in teardown summaries
	KeyCacheSize     = "cache_size"     // Current occupancy (blocks)
	KeyCacheCapacity = "cache_capacity" // Maximum occupancy (rows * ways)
	KeyEvicted       = "evicted"        // Number of blocks evicted
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for a run correlation ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// CacheName returns a slog.Attr for the emitting cache instance's name.
func CacheName(name string) slog.Attr {
	return slog.String(KeyCacheName, name)
}

// Command returns a slog.Attr for an event's command.
func Command(cmd fmt.Stringer) slog.Attr {
	return slog.String(KeyCommand, cmd.String())
}

// EventID returns a slog.Attr for an event id already formatted as a string.
func EventID(id string) slog.Attr {
	return slog.String(KeyEventID, id)
}

// Link returns a slog.Attr for the logical link name.
func Link(link fmt.Stringer) slog.Attr {
	return slog.String(KeyLink, link.String())
}

// LinkID returns a slog.Attr disambiguating among links of the same kind.
func LinkID(idx int) slog.Attr {
	return slog.Int(KeyLinkID, idx)
}

// Addr returns a slog.Attr for a byte address.
func Addr(addr uint64) slog.Attr {
	return slog.Uint64(KeyAddr, addr)
}

// BaseAddr returns a slog.Attr for a block-aligned address.
func BaseAddr(addr uint64) slog.Attr {
	return slog.Uint64(KeyBaseAddr, addr)
}

// Status returns a slog.Attr for a numeric status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// BlockStatus returns a slog.Attr for a block's coherence state.
func BlockStatus(status fmt.Stringer) slog.Attr {
	return slog.String(KeyBlockStatus, status.String())
}

// Row returns a slog.Attr for a row/set index.
func Row(row int) slog.Attr {
	return slog.Int(KeyRow, row)
}

// Col returns a slog.Attr for a way index.
func Col(col int) slog.Attr {
	return slog.Int(KeyCol, col)
}

// Mode returns a slog.Attr for the configured cache mode.
func Mode(mode fmt.Stringer) slog.Attr {
	return slog.String(KeyMode, mode.String())
}

// Size returns a slog.Attr for a transfer size.
func Size(size uint32) slog.Attr {
	return slog.Any(KeySize, size)
}

// Count returns a slog.Attr for a byte count.
func Count(c uint32) slog.Attr {
	return slog.Any(KeyCount, c)
}

// SessionID returns a slog.Attr for the simulation run identifier.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// RequestID returns a slog.Attr for a component-scoped request id.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Source returns a slog.Attr for a data source/origin tag.
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Operation returns a slog.Attr for a handler/sub-operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// CacheHit returns a slog.Attr for a cache hit indicator.
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// CacheState returns a slog.Attr for a block's coherence state, as used in
// teardown summaries.
func CacheState(state string) slog.Attr {
	return slog.String(KeyCacheState, state)
}

// CacheSize returns a slog.Attr for the current occupancy.
func CacheSize(size int64) slog.Attr {
	return slog.Int64(KeyCacheSize, size)
}

// CacheCapacity returns a slog.Attr for the maximum occupancy.
func CacheCapacity(capacity int64) slog.Attr {
	return slog.Int64(KeyCacheCapacity, capacity)
}

// Evicted returns a slog.Attr for the number of blocks evicted.
func Evicted(n int) slog.Attr {
	return slog.Int(KeyEvicted, n)
}
