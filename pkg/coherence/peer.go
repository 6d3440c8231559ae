package coherence

// handleRequestData answers a peer's pull for a block we may hold. Our
// own broadcast looping back on the snoop bus never reaches here: Dispatch
// discards it before routing (see § event dispatcher).
func (c *Cache) handleRequestData(ev *Event, src Source) {
	if ev.Size != uint32(c.cfg.BlockSize) {
		fatal("handleRequestData", "split request unsupported", "size", ev.Size)
	}

	base := c.storage.BaseAddr(ev.Addr)

	if inv, ok := c.invals.Get(base); ok {
		inv.Enqueue(ev, src)
		return
	}

	if blk, ok := c.storage.FindBlock(ev.Addr, false); ok && blk.Status != Assigned {
		if blk.Status == Dirty {
			if src != Snoop {
				fatal("handleRequestData", "dirty block cannot answer a non-snoop peer directly", "addr", base)
			}
			return
		}

		peer := peerName(ev, src)
		c.supplies.Put(&SupplyInProgress{Addr: base, Peer: peer})
		blk.Lock()
		c.scheduleSelf(c.accessDelay(), func() {
			c.sendSupply(base, peer, ev, src, blk)
		})
		return
	}

	switch {
	case src == Downstream:
		discardRace("handleRequestData", "miss from downstream, likely a stale writeback race", "addr", base)
	case src == Snoop && ev.Dst != c.links.SelfName:
		discardRace("handleRequestData", "snoop miss not addressed to us", "addr", base)
	default:
		c.counters.supplyMiss()
		c.startLoad(base, ev, src, LoadDown)
	}
}

func peerName(ev *Event, src Source) string {
	if ev.Dst != "" {
		return ev.Dst
	}
	return src.String()
}
