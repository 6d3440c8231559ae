package coherence

// handleFetch answers a directory Fetch or FetchInvalidate. FetchInvalidate
// first ensures upstream has been invalidated (re-entering here once every
// ACK is in, recognised by firstPhaseComplete) before the block may be
// demoted; the block itself is kept valid across that wait (the upstream
// invalidate's target status is its own current status, a no-op) since
// respondFetch still needs to read it.
func (c *Cache) handleFetch(ev *Event, src Source) {
	invalidate := ev.Cmd == FetchInvalidate

	blk, ok := c.storage.FindBlock(ev.BaseAddr, false)
	if !ok {
		fatal("handleFetch", "fetch for address not present", "addr", ev.BaseAddr)
		return
	}

	if invalidate && !ev.firstPhaseComplete {
		if inv, inProgress := c.invals.Get(ev.BaseAddr); inProgress {
			inv.Enqueue(ev, src)
			return
		}
		c.issueInvalidate(blk, blk.Status, Up, false, -1, ev, src)
		return
	}

	switch blk.Status {
	case Shared:
		c.respondFetch(ev, src, blk)
		if invalidate {
			blk.Status = Invalid
		}
	case Dirty:
		c.startLoad(blk.BaseAddr, ev, src, LoadUp)
	default:
		fatal("handleFetch", "fetch on block in illegal state", "status", blk.Status)
	}
}

func (c *Cache) respondFetch(ev *Event, src Source, blk *Block) {
	resp := &Event{
		ID:         c.nextID(),
		ResponseTo: ev.ID,
		Cmd:        SupplyData,
		Addr:       blk.BaseAddr,
		BaseAddr:   blk.BaseAddr,
		Size:       uint32(c.cfg.BlockSize),
		Payload:    append([]byte(nil), blk.Data...),
	}
	switch src {
	case Directory:
		resp.Dst = ev.Dst
		c.sendDirectory(resp)
	case Downstream:
		c.sendDownstream(resp)
	default:
		discardRace("respondFetch", "fetch from unsupported source", "src", src)
	}
}
