package coherence

import "time"

// Kernel is the narrow slice of the simulator kernel the cache depends on:
// the simulation clock and the ability to schedule deferred work on the
// cache's self link. Everything else about the kernel (scheduling of other
// components, global clocks across the run) is out of scope here.
//
// ScheduleSelf takes a plain closure rather than a tagged self-event
// struct: the cyclic-ownership hazard called out for this component is
// about structural back-references kept alive for a transaction's
// lifetime (block to load-info, supply to bus-event), which this package
// avoids by keying its tables on address instead of holding pointers (see
// LoadTable, InvalidationTable, SupplyTable, Block.LoadAddr). A one-shot
// callback handed to the kernel and invoked exactly once carries no such
// reference; it is the same shape every self-delivering timer in Go uses.
type Kernel interface {
	// Now returns the current simulation time.
	Now() int64

	// ScheduleSelf arranges for fn to run after delay simulation-time
	// units, on this cache's self link, strictly after every
	// already-scheduled event at an earlier time.
	ScheduleSelf(delay time.Duration, fn func())
}

// PointToPointLink is a single destination, point-to-point connection: an
// upstream CPU/cache link or the downstream link to the next level.
type PointToPointLink interface {
	// Send delivers ev to the peer at the other end of the link.
	Send(ev *Event)
}

// SnoopBus is the shared medium with an external arbiter. All attached
// caches observe every granted request in the same total order.
type SnoopBus interface {
	// Request enqueues ev for arbitration. initCB, if non-nil, fires when
	// the bus grants the request (BusClearToSend); finishCB, if non-nil,
	// fires when the transaction completes.
	Request(ev *Event, initCB, finishCB func())

	// Cancel withdraws a still-queued request, returning the callbacks
	// that were registered with it so the caller can discard them.
	Cancel(ev *Event) (initCB, finishCB func())
}

// DirectoryLink is the network endpoint connecting to directory
// controllers. On construction it reports the peer directory list; after
// that, Send forwards point-to-point to whichever peer owns an address
// (see Cache.DirectoryTarget).
type DirectoryLink interface {
	PointToPointLink

	// Peers returns the directory controllers known at link
	// initialization.
	Peers() []PeerRange
}

// PeerRange describes one directory controller's address interval and
// optional interleave.
type PeerRange struct {
	Name            string
	Start, End      uint64 // [Start, End)
	InterleaveSize  uint64 // 0 disables interleave matching
	InterleaveStep  uint64
}

// Contains reports whether addr is routed to this peer.
func (p PeerRange) Contains(addr uint64) bool {
	if addr < p.Start || addr >= p.End {
		return false
	}
	if p.InterleaveSize == 0 {
		return true
	}
	offset := (addr - p.Start) % p.InterleaveStep
	return offset < p.InterleaveSize
}

// Links aggregates every external surface a Cache can be wired to. All
// fields are optional except that a meaningful configuration needs at
// least one downstream path (Downstream, Directory, or Snoop with
// NextLevelName set).
type Links struct {
	Upstream   []PointToPointLink // index 0 is the CPU, when present
	Downstream PointToPointLink
	Snoop      SnoopBus
	Directory  DirectoryLink

	// NextLevelName is the symbolic destination used when forwarding a
	// fill request over the snoop bus (no point-to-point downstream
	// link).
	NextLevelName string

	// SelfName is this cache's symbolic name: a snoop RequestData that
	// misses here starts a load only when its Dst is SelfName. Our own
	// broadcasts looping back on the snoop bus are recognised by origin
	// (Event.IsSelfOrigin), not by name.
	SelfName string
}
