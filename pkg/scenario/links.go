package scenario

import (
	"time"

	"github.com/marmos91/cachesim/pkg/coherence"
)

// wire is a point-to-point link that delivers synchronously to whatever
// Dispatch function it is bound to, recording every event it carries so a
// run's CPU-facing ports can be read back as responses.
type wire struct {
	sent []*coherence.Event

	to    func(ev *coherence.Event, src coherence.Source)
	toSrc coherence.Source
}

func newWire(src coherence.Source, dispatch func(ev *coherence.Event, src coherence.Source)) *wire {
	return &wire{to: dispatch, toSrc: src}
}

func (w *wire) Send(ev *coherence.Event) {
	w.sent = append(w.sent, ev)
	if w.to != nil {
		w.to(ev, w.toSrc)
	}
}

// forwarder is a PointToPointLink whose destination is filled in after
// construction, breaking the construction-order cycle that appears when a
// cache's downstream neighbor has to exist before the link can be built.
type forwarder struct {
	target coherence.PointToPointLink
}

func (f *forwarder) Send(ev *coherence.Event) {
	if f.target != nil {
		f.target.Send(ev)
	}
}

// snoopForwarder is a coherence.SnoopBus whose destination bus is filled in
// after construction, the same way forwarder breaks the point-to-point
// construction-order cycle: a snoop group can name members declared in
// chains processed earlier or later than the group itself, so every member
// gets a forwarder at cache-construction time and the group wiring pass
// fills in its target once the shared bus exists.
type snoopForwarder struct {
	target coherence.SnoopBus
}

func (f *snoopForwarder) Request(ev *coherence.Event, initCB, finishCB func()) {
	if f.target != nil {
		f.target.Request(ev, initCB, finishCB)
	}
}

func (f *snoopForwarder) Cancel(ev *coherence.Event) (initCB, finishCB func()) {
	if f.target == nil {
		return nil, nil
	}
	return f.target.Cancel(ev)
}

// bus is a coherence.SnoopBus: requests are arbitrated after a fixed delay
// on the run's shared clock, then broadcast in attachment order to every
// participant including the requester, matching the real bus's
// self-recognition-by-origin-tag design (coherence.Event.IsSelfOrigin).
type bus struct {
	clock        clockLike
	arbDelay     time.Duration
	participants []func(ev *coherence.Event, src coherence.Source)
	pending      map[*coherence.Event]*busTxn
}

type clockLike interface {
	ScheduleSelf(delay time.Duration, fn func())
}

type busTxn struct {
	initCB, finishCB func()
	canceled         bool
}

func newBus(clock clockLike, arbDelay time.Duration) *bus {
	return &bus{clock: clock, arbDelay: arbDelay, pending: make(map[*coherence.Event]*busTxn)}
}

func (b *bus) attach(dispatch func(ev *coherence.Event, src coherence.Source)) {
	b.participants = append(b.participants, dispatch)
}

func (b *bus) Request(ev *coherence.Event, initCB, finishCB func()) {
	txn := &busTxn{initCB: initCB, finishCB: finishCB}
	b.pending[ev] = txn
	b.clock.ScheduleSelf(b.arbDelay, func() {
		if txn.canceled {
			return
		}
		delete(b.pending, ev)
		if txn.initCB != nil {
			txn.initCB()
		}
		for _, p := range b.participants {
			p(ev, coherence.Snoop)
		}
		if txn.finishCB != nil {
			txn.finishCB()
		}
	})
}

func (b *bus) Cancel(ev *coherence.Event) (initCB, finishCB func()) {
	txn, ok := b.pending[ev]
	if !ok {
		return nil, nil
	}
	txn.canceled = true
	delete(b.pending, ev)
	return txn.initCB, txn.finishCB
}

// memory is a terminal PointToPointLink standing in for main memory: every
// RequestData it receives is answered with a freshly zeroed SupplyData
// after a fixed latency, and every Invalidate is ACKed immediately after
// that same latency, since memory never holds a cached copy of its own to
// invalidate.
type memory struct {
	clock     clockLike
	delay     time.Duration
	blockSize int
	reply     func(ev *coherence.Event, src coherence.Source)
}

func newMemory(clock clockLike, delay time.Duration, blockSize int, reply func(ev *coherence.Event, src coherence.Source)) *memory {
	return &memory{clock: clock, delay: delay, blockSize: blockSize, reply: reply}
}

func (m *memory) Send(ev *coherence.Event) {
	switch ev.Cmd {
	case coherence.RequestData:
		m.clock.ScheduleSelf(m.delay, func() {
			m.reply(&coherence.Event{
				ResponseTo: ev.ID,
				Cmd:        coherence.SupplyData,
				Addr:       ev.Addr,
				BaseAddr:   ev.BaseAddr,
				Size:       uint32(m.blockSize),
				Payload:    make([]byte, m.blockSize),
			}, coherence.Downstream)
		})
	case coherence.Invalidate:
		m.clock.ScheduleSelf(m.delay, func() {
			m.reply(&coherence.Event{
				ResponseTo: ev.ID,
				Cmd:        coherence.ACK,
				Addr:       ev.Addr,
				BaseAddr:   ev.BaseAddr,
			}, coherence.Downstream)
		})
	}
}
