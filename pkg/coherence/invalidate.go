package coherence

import "github.com/marmos91/cachesim/pkg/config"

// issueInvalidate creates an invalidation record for blk's address, locks
// the block, and broadcasts Invalidate on every egress matching dir. Callers
// pass except (an upstream link index, or -1) to exclude the link that
// delivered the triggering event from an Up-direction broadcast, and pass
// ev/src so the triggering event is queued for replay once the
// invalidation settles. The enqueue happens before any ACK is awaited,
// because a broadcast with nothing to wait on (no upstream links, no
// downstream or snoop egress configured) completes synchronously below,
// and a caller enqueuing afterward would queue onto an already-drained,
// already-deleted record. If an invalidation for this address is already
// in flight, ev/src join its existing queue instead of starting a second
// one. Every link in this simulator can deliver synchronously (a zero-delay
// Wire calls the peer's Dispatch in the same stack frame), so WaitingACKs is
// incremented before each Send, never after: an ACK arriving back before
// Send returns must still see the count it is meant to be decrementing. The
// trailing completion check re-reads the table instead of trusting the
// local inv, since a synchronous ACK earlier in this same call may already
// have completed and deleted it.
func (c *Cache) issueInvalidate(blk *Block, newStatus Status, dir Direction, cancelable bool, except int, ev *Event, src Source) *Invalidation {
	base := blk.BaseAddr
	if existing, ok := c.invals.Get(base); ok {
		existing.Enqueue(ev, src)
		return existing
	}

	blk.Lock()
	id := c.nextID()
	inv := &Invalidation{
		IssuingID:      id,
		BaseAddr:       base,
		TargetBlock:    blk,
		NewStatusOnACK: newStatus,
		CanCancel:      cancelable,
	}
	c.invals.Put(inv)
	inv.Enqueue(ev, src)

	mk := func(linkIdx int) *Event {
		return &Event{ID: id, Cmd: Invalidate, Addr: base, BaseAddr: base, LinkID: linkIdx}
	}

	if dir == Down || dir == Both {
		if c.links.Snoop != nil {
			req := mk(0)
			inv.BusEvent = req
			inv.WaitingACKs++
			c.links.Snoop.Request(req, func() {}, func() {
				if cur, ok := c.invals.Get(base); ok && cur.IssuingID == id {
					cur.WaitingACKs--
					if cur.WaitingACKs == 0 {
						c.completeInvalidate(cur)
					}
				}
			})
		}
		if c.links.Downstream != nil {
			inv.WaitingACKs++
			c.sendDownstream(mk(0))
		}
	}
	if dir == Up || dir == Both {
		for i, l := range c.links.Upstream {
			if i == except {
				continue
			}
			inv.WaitingACKs++
			l.Send(mk(i))
		}
	}

	if cur, ok := c.invals.Get(base); ok && cur.WaitingACKs == 0 {
		c.completeInvalidate(cur)
	}
	return inv
}

// handleInvalidate is the responder side: a peer (or the bus) asking us
// to relinquish a block.
func (c *Cache) handleInvalidate(ev *Event, src Source) {
	base := ev.BaseAddr

	if existing, ok := c.invals.Get(base); ok && existing.IssuingID != ev.ID {
		if existing.CanCancel {
			c.cancelInvalidate(existing)
		} else {
			c.scheduleSelf(c.accessDelay(), func() { c.Dispatch(ev, src) })
			return
		}
	}

	blk, ok := c.storage.FindBlock(base, false)
	if !ok || blk.Status == Invalid {
		c.ackInvalidate(ev, src)
		return
	}

	newStatus := Invalid
	if c.cfg.Mode == config.Inclusive && src == Upstream {
		newStatus = Dirty
	}

	if blk.Status == Exclusive || blk.Status == Dirty {
		c.writeback(blk, newStatus)
	} else {
		blk.Status = newStatus
		blk.LastTouched = c.now()
	}
	c.ackInvalidate(ev, src)
}

// cancelInvalidate preempts a cancelable invalidation in favor of one that
// arrived for the same block, rescheduling every event it held.
func (c *Cache) cancelInvalidate(inv *Invalidation) {
	if inv.BusEvent != nil && c.links.Snoop != nil {
		c.links.Snoop.Cancel(inv.BusEvent)
	}
	c.invals.Delete(inv.BaseAddr)
	if inv.TargetBlock != nil {
		inv.TargetBlock.Unlock()
	}
	for _, w := range inv.Drain() {
		w := w
		c.scheduleSelf(c.accessDelay(), func() { c.Dispatch(w.ev, w.src) })
	}
}

func (c *Cache) ackInvalidate(ev *Event, src Source) {
	ack := &Event{ID: c.nextID(), ResponseTo: ev.ID, Cmd: ACK, Addr: ev.Addr, BaseAddr: ev.BaseAddr, LinkID: ev.LinkID}
	switch src {
	case Upstream:
		c.sendUpstream(ev.LinkID, ack)
	case Downstream:
		c.sendDownstream(ack)
	case Directory:
		ack.Dst = ev.Dst
		c.sendDirectory(ack)
	case Snoop:
		c.links.Snoop.Request(ack, func() {}, func() {})
	}
}

func (c *Cache) handleACK(ev *Event, src Source) {
	inv, ok := c.invals.Get(ev.BaseAddr)
	if !ok || ev.ResponseTo != inv.IssuingID {
		discardRace("handleACK", "ACK for unknown invalidation", "addr", ev.BaseAddr)
		return
	}
	inv.WaitingACKs--
	if inv.WaitingACKs > 0 {
		return
	}
	c.completeInvalidate(inv)
}

// completeInvalidate applies the invalidation's outcome once every ACK is
// in: the block takes its new status, unlocks, and every event queued
// behind the invalidation replays in arrival order. The first replay is
// marked firstPhaseComplete so a handler re-entered this way can tell "my
// own invalidation just finished" from "I am seeing this event for the
// first time" (see handleFetch).
func (c *Cache) completeInvalidate(inv *Invalidation) {
	c.invals.Delete(inv.BaseAddr)
	if inv.TargetBlock != nil {
		inv.TargetBlock.Status = inv.NewStatusOnACK
		inv.TargetBlock.Unlock()
		inv.TargetBlock.LastTouched = c.now()
	}

	queue := inv.Drain()
	for i, w := range queue {
		w.ev.firstPhaseComplete = i == 0
		c.Dispatch(w.ev, w.src)
	}
	c.runRowWaiters(c.storage.Row(inv.BaseAddr), inv.BaseAddr)
}

// handleNACK matches against either an outstanding invalidation or an
// outstanding load and reacts accordingly.
func (c *Cache) handleNACK(ev *Event, src Source) {
	if inv, ok := c.invals.Get(ev.BaseAddr); ok && ev.ResponseTo == inv.IssuingID {
		c.invals.Delete(ev.BaseAddr)
		if inv.TargetBlock != nil {
			inv.TargetBlock.Unlock()
		}
		for _, w := range inv.Drain() {
			w := w
			if c.isL1 {
				c.scheduleSelf(c.accessDelay(), func() { c.Dispatch(w.ev, w.src) })
				continue
			}
			c.forwardNACK(w.ev, w.src)
		}
		return
	}

	if li, ok := c.loads.Get(ev.BaseAddr); ok && ev.ResponseTo == li.InitiatingID {
		c.issueFill(li)
		return
	}

	discardRace("handleNACK", "NACK for unknown transaction", "addr", ev.BaseAddr)
}

func (c *Cache) forwardNACK(ev *Event, src Source) {
	nack := &Event{ID: c.nextID(), ResponseTo: ev.ID, Cmd: NACK, Addr: ev.Addr, BaseAddr: ev.BaseAddr, LinkID: ev.LinkID}
	switch src {
	case Upstream:
		c.sendUpstream(ev.LinkID, nack)
	case Downstream:
		c.sendDownstream(nack)
	case Directory:
		nack.Dst = ev.Dst
		c.sendDirectory(nack)
	case Snoop:
		c.links.Snoop.Request(nack, func() {}, func() {})
	}
}
