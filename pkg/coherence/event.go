package coherence

import "fmt"

// EventID uniquely identifies an event within a run, matching the wire
// schema's (u64,u32) pair: a monotonic counter paired with the id of the
// component that minted it, so ids stay unique across caches without a
// shared allocator.
type EventID struct {
	Seq    uint64
	Origin uint32
}

// Zero reports whether the id is the unset value.
func (id EventID) Zero() bool { return id == EventID{} }

func (id EventID) String() string { return fmt.Sprintf("%d.%d", id.Origin, id.Seq) }

// Sequencer mints unique EventIDs for one cache instance.
type Sequencer struct {
	origin uint32
	next   uint64
}

// NewSequencer returns a Sequencer tagging every id with origin.
func NewSequencer(origin uint32) *Sequencer {
	return &Sequencer{origin: origin}
}

// Next returns the next unused EventID.
func (s *Sequencer) Next() EventID {
	s.next++
	return EventID{Seq: s.next, Origin: s.origin}
}

// Command is the operation an Event carries.
type Command int

const (
	ReadReq Command = iota
	WriteReq
	RequestData
	SupplyData
	Invalidate
	ACK
	NACK
	Fetch
	FetchInvalidate
	BusClearToSend
)

func (c Command) String() string {
	switch c {
	case ReadReq:
		return "ReadReq"
	case WriteReq:
		return "WriteReq"
	case RequestData:
		return "RequestData"
	case SupplyData:
		return "SupplyData"
	case Invalidate:
		return "Invalidate"
	case ACK:
		return "ACK"
	case NACK:
		return "NACK"
	case Fetch:
		return "Fetch"
	case FetchInvalidate:
		return "FetchInvalidate"
	case BusClearToSend:
		return "BusClearToSend"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Source names the logical link an Event arrived on (or, for an outbound
// Event, the link it should be sent on).
type Source int

const (
	Upstream Source = iota
	Downstream
	Snoop
	Directory
	Prefetcher
	Self
)

func (s Source) String() string {
	switch s {
	case Upstream:
		return "Upstream"
	case Downstream:
		return "Downstream"
	case Snoop:
		return "Snoop"
	case Directory:
		return "Directory"
	case Prefetcher:
		return "Prefetcher"
	case Self:
		return "Self"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Direction selects which egress links an invalidate broadcasts on.
type Direction int

const (
	Down Direction = iota
	Up
	Both
)

// Flags are orthogonal modifiers carried on an Event.
type Flags uint8

const (
	// FlagWriteback marks a SupplyData as an unsolicited writeback rather
	// than a response to a RequestData.
	FlagWriteback Flags = 1 << iota

	// FlagLocked marks a ReadReq/WriteReq as part of a CPU atomic
	// read-modify-write sequence.
	FlagLocked

	// FlagDelayed marks a SupplyData with no real payload yet: the real
	// data will follow once a pending atomic unlock completes.
	FlagDelayed

	// FlagUnlock marks a WriteReq as the unlock half of an atomic
	// sequence (the write that releases a prior Locked ReadReq).
	FlagUnlock
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Event is the single structure carrying every command exchanged between
// caches, the CPU, the snoop bus, and the directory.
type Event struct {
	ID         EventID
	ResponseTo EventID // zero if this event does not answer another

	Cmd   Command
	Src   Source // link the event is logically associated with
	Dst   string // symbolic destination name (peer/link target)
	LinkID int   // disambiguates among multiple links of the same Source

	Addr     uint64 // byte address
	BaseAddr uint64 // Addr aligned down to the block boundary
	Size     uint32

	Flags   Flags
	Payload []byte

	// firstPhaseComplete is bookkeeping threaded through the dispatcher,
	// not part of the wire schema: set true on the first event replayed
	// out of a settled Invalidation queue, so a handler re-entered that
	// way can distinguish "my own invalidation just completed" from an
	// original arrival (see completeInvalidate, handleFetch).
	firstPhaseComplete bool
}

// IsSelfOrigin reports whether ev is a Snoop-sourced event that originated
// from this very cache, identified by the origin tag minted into its
// EventID rather than by any symbolic name: the bus is a shared medium, so
// every participant's own broadcast loops back to it exactly like any
// other snoop traffic.
func (ev *Event) IsSelfOrigin(myOrigin uint32) bool {
	return ev.Src == Snoop && ev.ID.Origin == myOrigin
}
