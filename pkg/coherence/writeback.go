package coherence

// writeback propagates blk's Dirty payload toward the next level and
// settles it at newStatus once the write completes. It is idempotent per
// WBInProgress: a second call while one is already running is a no-op, so
// callers may invoke it freely from both the CPU-unlock path and the
// eviction/invalidate-responder paths without coordinating first.
func (c *Cache) writeback(blk *Block, newStatus Status) {
	if blk.WBInProgress {
		return
	}
	blk.WBInProgress = true
	blk.Lock()

	wb := &Event{
		ID:       c.nextID(),
		Cmd:      SupplyData,
		Addr:     blk.BaseAddr,
		BaseAddr: blk.BaseAddr,
		Size:     uint32(c.cfg.BlockSize),
		Flags:    FlagWriteback,
		Payload:  append([]byte(nil), blk.Data...),
	}

	finish := func() {
		blk.WBInProgress = false
		blk.Unlock()
		blk.Status = newStatus
		blk.LastTouched = c.now()
		if newStatus == Invalid {
			blk.HasLoadRef = false
		}
		c.runRowWaiters(c.storage.Row(blk.BaseAddr), blk.BaseAddr)
	}

	if c.links.Snoop != nil {
		cp := *wb
		c.links.Snoop.Request(&cp, func() {}, finish)
	} else {
		finish()
	}
	if c.links.Downstream != nil {
		cp := *wb
		c.sendDownstream(&cp)
	}
	if c.links.Directory != nil {
		cp := *wb
		cp.Dst = c.DirectoryTarget(blk.BaseAddr)
		c.sendDirectory(&cp)
	}
}
