package simtest

import (
	"time"

	"github.com/marmos91/cachesim/pkg/coherence"
)

// Memory is a terminal PointToPointLink standing in for main memory: every
// RequestData it receives is answered with a freshly zeroed SupplyData
// after a fixed latency, delivered back to reply. It never refuses, never
// NACKs, and holds no state of its own — the simplest possible backstop
// below the lowest configured cache level.
type Memory struct {
	clock     *Clock
	delay     time.Duration
	blockSize int
	reply     func(ev *coherence.Event, src coherence.Source)
}

// NewMemory returns a Memory answering every request after delay
// simulation-time units, delivering the reply to reply tagged with
// coherence.Downstream as its Source.
func NewMemory(clock *Clock, delay time.Duration, blockSize int, reply func(ev *coherence.Event, src coherence.Source)) *Memory {
	return &Memory{clock: clock, delay: delay, blockSize: blockSize, reply: reply}
}

// Send implements coherence.PointToPointLink.
func (m *Memory) Send(ev *coherence.Event) {
	if ev.Cmd != coherence.RequestData {
		return
	}
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
}
