package coherence

import (
	"time"

	"github.com/marmos91/cachesim/internal/logger"
	"github.com/marmos91/cachesim/pkg/config"
)

// Cache is one coherent, set-associative cache controller instance.
//
// It owns its block storage, its outstanding-transaction tables, and its
// wiring to the surrounding simulator. Every exported method that
// processes an event is meant to be called from Dispatch, which the
// simulator kernel drives one event at a time; there is no internal
// locking because there is no concurrency to guard against (see §5 of the
// design).
type Cache struct {
	cfg   *config.Config
	links Links
	kernel Kernel

	storage *Storage
	loads   *LoadTable
	invals  *InvalidationTable
	supplies *SupplyTable

	peers []PeerRange

	origin uint32
	seq    *Sequencer

	// isL1 is latched true on the first ReadReq/WriteReq arrival, unless
	// the config forces it explicitly (see the open question on fragile
	// auto-detection under prefetcher-only traffic).
	isL1 bool

	counters counters
}

// New constructs a Cache from a validated Config and the links it has been
// wired to. origin must be unique among the caches sharing a simulation
// run; it tags every EventID this cache mints.
func New(cfg *config.Config, links Links, kernel Kernel, origin uint32, metrics Metrics) *Cache {
	c := &Cache{
		cfg:      cfg,
		links:    links,
		kernel:   kernel,
		storage:  NewStorage(cfg.NumRows, cfg.NumWays, cfg.BlockSize),
		loads:    NewLoadTable(),
		invals:   NewInvalidationTable(),
		supplies: NewSupplyTable(),
		origin:   origin,
		seq:      NewSequencer(origin),
		isL1:     cfg.IsL1,
	}
	c.counters.metrics = metrics
	if links.Directory != nil {
		c.peers = links.Directory.Peers()
	}
	return c
}

// Stats returns the teardown statistics snapshot.
func (c *Cache) Stats() Stats { return c.counters.Stats }

// Inspect reports the coherence state of the block holding addr, without
// disturbing LRU order or any in-flight transaction. Intended for test
// assertions and coherence-invariant checking across a set of caches; not
// used by the dispatch path itself.
func (c *Cache) Inspect(addr uint64) (status Status, present bool) {
	blk, ok := c.storage.FindBlock(addr, false)
	if !ok {
		return Invalid, false
	}
	return blk.Status, true
}

// IsL1 reports whether this cache has been identified as sitting directly
// below a CPU (never forwards requests upward).
func (c *Cache) IsL1() bool { return c.isL1 }

func (c *Cache) now() int64 { return c.kernel.Now() }

func (c *Cache) scheduleSelf(delay time.Duration, fn func()) {
	c.kernel.ScheduleSelf(delay, fn)
}

func (c *Cache) accessDelay() time.Duration { return c.cfg.AccessTime }

func (c *Cache) nextID() EventID { return c.seq.Next() }

// sendUpstream delivers ev on upstream link idx (0 is the CPU, when
// present); an index with no such link is logged and the event discarded.
func (c *Cache) sendUpstream(idx int, ev *Event) {
	if idx < 0 || idx >= len(c.links.Upstream) {
		discardRace("sendUpstream", "no such upstream link", "idx", idx)
		return
	}
	c.links.Upstream[idx].Send(ev)
}

func (c *Cache) broadcastUpstream(ev *Event, except int) {
	for i, l := range c.links.Upstream {
		if i == except {
			continue
		}
		cp := *ev
		l.Send(&cp)
	}
}

func (c *Cache) sendDownstream(ev *Event) {
	if c.links.Downstream == nil {
		discardRace("sendDownstream", "no downstream link configured")
		return
	}
	c.links.Downstream.Send(ev)
}

func (c *Cache) sendDirectory(ev *Event) {
	if c.links.Directory == nil {
		discardRace("sendDirectory", "no directory link configured")
		return
	}
	c.links.Directory.Send(ev)
}

func (c *Cache) logDebug(msg string, args ...any) {
	logger.Debug(msg, append([]any{"cache", c.links.SelfName}, args...)...)
}
