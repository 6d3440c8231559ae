package coherence

import "github.com/marmos91/cachesim/pkg/config"

// startLoad begins or joins a miss on the block containing addr. direction
// selects whether the eventual fill travels toward memory (the ordinary
// case) or toward upstream (a directory fetch pulling fresher data down
// from a CPU-side cache, e.g. a transiently Dirty block in Inclusive mode
// whose real data still lives above us). FindBlock(addr, true) either
// returns the block already resident at this exact address (any status,
// including the transient-Dirty case) or a genuinely free way in the same
// row — both are reload targets beginLoad can reuse directly; only when
// neither exists (a full row with no matching tag) does the eviction
// ladder in chooseVictim run.
func (c *Cache) startLoad(addr uint64, ev *Event, src Source, direction LoadDirection) {
	base := c.storage.BaseAddr(addr)

	if li, ok := c.loads.Get(base); ok {
		li.Enqueue(ev, src, c.now())
		return
	}

	row := c.storage.Row(addr)
	if blk, ok := c.storage.FindBlock(addr, true); ok {
		c.beginLoad(blk, base, ev, src, direction)
		return
	}
	c.chooseVictim(row, base, ev, src, direction)
}

func (c *Cache) beginLoad(blk *Block, base uint64, ev *Event, src Source, direction LoadDirection) {
	blk.BaseAddr = base
	blk.Tag = base
	blk.Status = Assigned
	blk.Lock()
	blk.LoadAddr = base
	blk.HasLoadRef = true

	li := &LoadInfo{
		BaseAddr:     base,
		InitiatingID: ev.ID,
		TargetBlock:  blk,
		Direction:    direction,
	}
	li.Enqueue(ev, src, c.now())
	c.loads.Put(li)
	c.issueFill(li)
}

// chooseVictim implements the eviction ladder: an Invalid slot is handled
// by the caller before this is reached, so this only ever sees a full row.
func (c *Cache) chooseVictim(row *Row, base uint64, ev *Event, src Source, direction LoadDirection) {
	victim := c.storage.GetLRU(row)
	if victim == nil {
		row.Enqueue(ev, src, base, true)
		return
	}

	if c.cfg.Mode == config.Inclusive && victim.Status != Invalid {
		c.issueInvalidate(victim, Invalid, Up, false, -1, ev, src)
		return
	}

	if victim.Status == Exclusive || victim.Status == Dirty {
		c.writeback(victim, Invalid)
		row.Enqueue(ev, src, base, true)
		return
	}

	victim.Status = Invalid
	c.beginLoad(victim, base, ev, src, direction)
}

// issueFill schedules the outbound load request after the access latency.
func (c *Cache) issueFill(li *LoadInfo) {
	c.scheduleSelf(c.accessDelay(), func() {
		c.sendFill(li)
	})
}

// sendFill picks the first available channel, in the order the design
// prescribes: downstream point-to-point, directory, snoop bus. A fetch
// traveling upward broadcasts to every upstream link instead.
func (c *Cache) sendFill(li *LoadInfo) {
	if _, ok := c.loads.Get(li.BaseAddr); !ok {
		return
	}

	req := &Event{
		ID:       c.nextID(),
		Cmd:      RequestData,
		Addr:     li.BaseAddr,
		BaseAddr: li.BaseAddr,
		Size:     uint32(c.cfg.BlockSize),
	}

	if li.Direction == LoadUp {
		req.Src = Upstream
		c.broadcastUpstream(req, -1)
		return
	}

	switch {
	case c.links.Downstream != nil:
		req.Src = Downstream
		c.sendDownstream(req)
	case c.links.Directory != nil:
		req.Src = Directory
		req.Dst = c.DirectoryTarget(li.BaseAddr)
		c.sendDirectory(req)
	case c.links.Snoop != nil:
		req.Src = Snoop
		req.Dst = c.links.NextLevelName
		li.BusEvent = req
		c.links.Snoop.Request(req, func() {}, func() {
			if cur, ok := c.loads.Get(li.BaseAddr); ok {
				cur.BusEvent = nil
			}
		})
	default:
		discardRace("sendFill", "no outbound channel configured", "addr", li.BaseAddr)
	}
}

// runRowWaiters retries events parked for addr specifically, then any
// event parked for "the next free slot in general" in this row.
func (c *Cache) runRowWaiters(row *Row, addr uint64) {
	for _, w := range row.DrainAddr(addr) {
		c.Dispatch(w.ev, w.src)
	}
	for _, w := range row.DrainAny() {
		c.Dispatch(w.ev, w.src)
	}
}
