package coherence

import (
	"fmt"

	"github.com/marmos91/cachesim/internal/logger"
)

// ProtocolViolation reports a coherence-design bug: a split request
// spanning a block, a Dirty block asked to answer a non-snoop peer, a
// Fetch for an absent block or in an illegal state, a directory lookup
// miss, a write hit on a block in an unexpected state, or an unrecognised
// command. (EXCLUSIVE mode is rejected earlier, as a config.Error.) These indicate a
// bug in the surrounding coherence design, not a runtime condition, so
// Dispatch aborts rather than attempting partial recovery.
type ProtocolViolation struct {
	Op     string
	Reason string
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("cachesim: protocol violation in %s: %s", e.Op, e.Reason)
}

// fatal logs the violation with full context and aborts the current
// dispatch by panicking. Every fatal path flushes its log line before
// panicking, matching the component's "no partial-state repair" policy.
func fatal(op, reason string, args ...any) {
	logger.Error("protocol violation: "+reason, append([]any{"op", op}, args...)...)
	panic(&ProtocolViolation{Op: op, Reason: reason})
}

// discardRace logs a transient race with a peer (an unmatched SupplyData,
// a Downstream RequestData miss, a NACK for an unknown request) and moves
// on: the peer is expected to reissue if it still needs a response.
func discardRace(op, reason string, args ...any) {
	logger.Warn("discarding race: "+reason, append([]any{"op", op}, args...)...)
}
