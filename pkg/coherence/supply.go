package coherence

// handleSupplyData is the fill-arrival half of the supply handler: a
// SupplyData matching one of our own outstanding loads fills that load's
// target block (the other half, answering a peer's RequestData, runs as the
// scheduled completion of handleRequestData and never re-enters Dispatch
// on its own account). A matching fill is accepted without checking the
// target block's status. Any other SupplyData, including a writeback sent
// down from an upstream cache, is logged and discarded: a writeback never
// updates a block held here.
func (c *Cache) handleSupplyData(ev *Event, src Source) {
	li, ok := c.loads.Get(ev.BaseAddr)
	if !ok {
		discardRace("handleSupplyData", "no outstanding load for address", "addr", ev.BaseAddr)
		return
	}

	if li.BusEvent != nil && c.links.Snoop != nil {
		c.links.Snoop.Cancel(li.BusEvent)
		li.BusEvent = nil
	}

	blk := li.TargetBlock

	if ev.Flags.Has(FlagDelayed) {
		dropSnoopWaiters(li)
		if li.Empty() {
			blk.Status = Invalid
			blk.Unlock()
			blk.HasLoadRef = false
			c.loads.Delete(ev.BaseAddr)
		}
		return
	}

	copy(blk.Data, ev.Payload)
	blk.Status = Shared
	blk.LastTouched = c.now()
	blk.Unlock()
	blk.HasLoadRef = false
	c.loads.Delete(ev.BaseAddr)
	c.counters.supplyHit()

	for _, w := range li.Drain() {
		if w.src == Snoop {
			// served by the same bus transaction we just consumed
			continue
		}
		c.Dispatch(w.ev, w.src)
	}
	c.runRowWaiters(c.storage.Row(ev.BaseAddr), ev.BaseAddr)
}

func dropSnoopWaiters(li *LoadInfo) {
	kept := li.queue[:0]
	for _, w := range li.queue {
		if w.src != Snoop {
			kept = append(kept, w)
		}
	}
	li.queue = kept
}

// sendSupply is the scheduled completion of handleRequestData (§ supply):
// it runs after the access latency chosen when the request arrived, and
// may find the transaction already canceled.
func (c *Cache) sendSupply(base uint64, peer string, ev *Event, src Source, blk *Block) {
	sp, ok := c.supplies.Get(base, peer)
	if !ok || sp.Canceled {
		blk.Unlock()
		return
	}
	c.supplies.Delete(base, peer)
	blk.Unlock()

	resp := &Event{
		ID:         c.nextID(),
		ResponseTo: ev.ID,
		Cmd:        SupplyData,
		Addr:       ev.Addr,
		BaseAddr:   base,
		Size:       uint32(c.cfg.BlockSize),
	}

	if blk.UserLockedCount > 0 {
		resp.Flags |= FlagDelayed
		blk.UserLockNeedsWB = true
		c.replySupply(resp, src, ev)
		return
	}

	resp.Payload = append([]byte(nil), blk.Data...)
	if (src == Snoop || src == Directory) && blk.Status == Exclusive {
		blk.Status = Shared
	}
	c.replySupply(resp, src, ev)
	c.counters.supplyHit()
}

func (c *Cache) replySupply(resp *Event, src Source, orig *Event) {
	switch src {
	case Upstream:
		c.sendUpstream(orig.LinkID, resp)
	case Downstream:
		c.sendDownstream(resp)
	case Directory:
		resp.Dst = orig.Dst
		c.sendDirectory(resp)
	case Snoop:
		c.links.Snoop.Request(resp, func() {}, func() {})
	default:
		discardRace("replySupply", "no channel for source", "src", src)
	}
}
