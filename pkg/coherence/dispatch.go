package coherence

// Dispatch routes an incoming event to the handler for its command. It is
// the single re-entry point: the simulator kernel calls it once per event,
// to completion, before delivering the next one (see §5 of the design).
// Self-events scheduled by a handler re-enter here exactly the same way an
// externally arriving event would.
func (c *Cache) Dispatch(ev *Event, src Source) {
	ev.Src = src

	if ev.IsSelfOrigin(c.origin) {
		// Our own broadcast looping back on the bus: a plain send we
		// already processed locally and must not re-run. An ACK still
		// goes to handleACK, which discards it unless it answers one of
		// our outstanding invalidations; our own bus Invalidate is counted
		// by its bus finish callback in issueInvalidate, not by an ACK.
		if ev.Cmd != ACK {
			return
		}
	}

	switch ev.Cmd {
	case ReadReq, WriteReq:
		c.handleCPURequest(ev, src)
	case RequestData:
		c.handleRequestData(ev, src)
	case SupplyData:
		c.handleSupplyData(ev, src)
	case Invalidate:
		c.handleInvalidate(ev, src)
	case Fetch, FetchInvalidate:
		c.handleFetch(ev, src)
	case ACK:
		c.handleACK(ev, src)
	case NACK:
		c.handleNACK(ev, src)
	case BusClearToSend:
		// Delivered via the SnoopBus init callback directly; nothing to
		// route here beyond what Request's initCB already triggered.
	default:
		fatal("Dispatch", "unrecognised command", "cmd", ev.Cmd)
	}
}
