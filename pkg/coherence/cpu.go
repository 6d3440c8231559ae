package coherence

// handleCPURequest implements the CPU-request handler: hit/miss dispatch
// for ReadReq and WriteReq, including the atomic-lock and upgrade-miss
// paths. Any arrival here marks this cache as L1 (a cache that only ever
// sees peer traffic never reaches this handler).
func (c *Cache) handleCPURequest(ev *Event, src Source) {
	if !c.isL1 {
		c.isL1 = true
	}

	blk, ok := c.storage.FindBlock(ev.Addr, true)
	if !ok || blk.Status == Invalid || blk.Status == Assigned {
		if ev.Cmd == ReadReq {
			c.counters.readMiss()
		} else {
			c.counters.writeMiss()
		}
		c.startLoad(ev.Addr, ev, src, LoadDown)
		return
	}

	if inv, pending := c.invals.Get(blk.BaseAddr); pending {
		inv.Enqueue(ev, src)
		return
	}

	switch ev.Cmd {
	case ReadReq:
		c.cpuRead(ev, src, blk)
	case WriteReq:
		c.cpuWrite(ev, src, blk)
	}
}

func (c *Cache) cpuRead(ev *Event, src Source, blk *Block) {
	if ev.Flags.Has(FlagLocked) {
		c.cpuLockedRead(ev, src, blk)
		return
	}
	c.scheduleCPUResponse(ev, src, blk)
	c.counters.readHit()
}

func (c *Cache) cpuLockedRead(ev *Event, src Source, blk *Block) {
	if blk.Status != Exclusive {
		c.issueInvalidate(blk, Exclusive, Both, true, linkIdxOf(ev, src), ev, src)
		return
	}
	if blk.WBInProgress || blk.LockedCount > 0 {
		c.scheduleSelf(c.accessDelay(), func() { c.Dispatch(ev, src) })
		return
	}
	blk.UserLockedCount++
	blk.UserLockNeedsWB = false
	c.scheduleCPUResponse(ev, src, blk)
	c.counters.readHit()
}

func (c *Cache) cpuWrite(ev *Event, src Source, blk *Block) {
	switch blk.Status {
	case Exclusive, Dirty:
		offset := ev.Addr - blk.BaseAddr
		copy(blk.Data[offset:], ev.Payload)
		blk.Status = Dirty
		blk.LastTouched = c.now()

		if blk.UserLockedCount > 0 && ev.Flags.Has(FlagUnlock) {
			blk.UserLockedCount--
			if blk.UserLockedCount == 0 && blk.UserLockNeedsWB {
				c.writeback(blk, Shared)
			}
		}
		c.scheduleCPUResponse(ev, src, blk)
		c.counters.writeHit()
	case Shared:
		c.issueInvalidate(blk, Exclusive, Both, true, linkIdxOf(ev, src), ev, src)
		c.counters.upgradeMiss()
	default:
		fatal("cpuWrite", "write hit on block in unexpected state", "status", blk.Status)
	}
}

// scheduleCPUResponse builds the reply carrying the requested sub-range
// (or, for a write, an empty acknowledgement) and delivers it upstream
// after the configured access latency.
func (c *Cache) scheduleCPUResponse(ev *Event, src Source, blk *Block) {
	resp := &Event{
		ID:         c.nextID(),
		ResponseTo: ev.ID,
		Cmd:        ev.Cmd,
		Addr:       ev.Addr,
		BaseAddr:   blk.BaseAddr,
		Size:       ev.Size,
	}
	if ev.Cmd == ReadReq {
		offset := ev.Addr - blk.BaseAddr
		end := offset + uint64(ev.Size)
		resp.Payload = append([]byte(nil), blk.Data[offset:end]...)
	}
	linkIdx := ev.LinkID
	c.scheduleSelf(c.accessDelay(), func() {
		c.sendUpstream(linkIdx, resp)
	})
}

// linkIdxOf returns the upstream link index to exclude when an invalidate
// is triggered by ev, or -1 when ev did not arrive on an upstream link.
func linkIdxOf(ev *Event, src Source) int {
	if src != Upstream {
		return -1
	}
	return ev.LinkID
}
