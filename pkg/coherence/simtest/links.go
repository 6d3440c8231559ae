package simtest

import (
	"time"

	"github.com/marmos91/cachesim/pkg/coherence"
)

// Wire is a point-to-point link that delivers synchronously to whatever
// Dispatch function it is bound to, recording every event it carries so
// tests can assert on traffic shape without instrumenting the Cache
// itself.
type Wire struct {
	Sent []*coherence.Event

	to    func(ev *coherence.Event, src coherence.Source)
	toSrc coherence.Source
}

// NewWire returns a Wire delivering to dispatch, tagging every delivered
// event with src (the logical link the receiver sees it arrive on).
func NewWire(src coherence.Source, dispatch func(ev *coherence.Event, src coherence.Source)) *Wire {
	return &Wire{to: dispatch, toSrc: src}
}

// Send implements coherence.PointToPointLink.
func (w *Wire) Send(ev *coherence.Event) {
	w.Sent = append(w.Sent, ev)
	if w.to != nil {
		w.to(ev, w.toSrc)
	}
}

// Bus is a fake coherence.SnoopBus: requests are arbitrated after a fixed
// delay on the shared Clock and then broadcast, in attachment order, to
// every participant — including the requester, matching the real
// component's self-recognition-by-origin-tag design (see
// Event.IsSelfOrigin).
type Bus struct {
	clock        *Clock
	arbDelay     time.Duration
	participants []func(ev *coherence.Event, src coherence.Source)
	pending      map[*coherence.Event]*busTxn
}

type busTxn struct {
	initCB, finishCB func()
	canceled         bool
}

// NewBus returns a Bus driven by clock, granting every request after
// arbDelay simulation-time units.
func NewBus(clock *Clock, arbDelay time.Duration) *Bus {
	return &Bus{clock: clock, arbDelay: arbDelay, pending: make(map[*coherence.Event]*busTxn)}
}

// Attach registers a participant's Dispatch function to receive every
// granted bus transaction.
func (b *Bus) Attach(dispatch func(ev *coherence.Event, src coherence.Source)) {
	b.participants = append(b.participants, dispatch)
}

// Request implements coherence.SnoopBus.
func (b *Bus) Request(ev *coherence.Event, initCB, finishCB func()) {
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

// Cancel implements coherence.SnoopBus.
func (b *Bus) Cancel(ev *coherence.Event) (initCB, finishCB func()) {
	txn, ok := b.pending[ev]
	if !ok {
		return nil, nil
	}
	txn.canceled = true
	delete(b.pending, ev)
	return txn.initCB, txn.finishCB
}

// Forwarder is a PointToPointLink whose destination is filled in after
// construction, breaking the construction-order cycle that appears when
// two caches (or a cache and a Memory) each need a link pointing at the
// other before either has been built.
type Forwarder struct {
	Target coherence.PointToPointLink
}

// Send implements coherence.PointToPointLink, forwarding to Target once
// set. A Send before Target is assigned is silently dropped, matching how
// an unwired link behaves elsewhere in this package.
func (f *Forwarder) Send(ev *coherence.Event) {
	if f.Target != nil {
		f.Target.Send(ev)
	}
}

// Directory is a fake coherence.DirectoryLink routing by the Event.Dst
// symbolic name set by Cache.DirectoryTarget.
type Directory struct {
	peers []coherence.PeerRange
	route map[string]func(ev *coherence.Event, src coherence.Source)
}

// NewDirectory returns a Directory advertising peers.
func NewDirectory(peers []coherence.PeerRange) *Directory {
	return &Directory{peers: peers, route: make(map[string]func(ev *coherence.Event, src coherence.Source))}
}

// Register binds name (one of the PeerRange.Name values) to a Dispatch
// function.
func (d *Directory) Register(name string, dispatch func(ev *coherence.Event, src coherence.Source)) {
	d.route[name] = dispatch
}

// Peers implements coherence.DirectoryLink.
func (d *Directory) Peers() []coherence.PeerRange { return d.peers }

// Send implements coherence.PointToPointLink, routing by ev.Dst.
func (d *Directory) Send(ev *coherence.Event) {
	if fn, ok := d.route[ev.Dst]; ok {
		fn(ev, coherence.Directory)
	}
}
