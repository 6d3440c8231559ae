// Package kernel provides the minimal discrete-event clock a scenario run
// needs to drive one or more coherence.Cache instances: a deterministic,
// single-threaded priority queue of deferred closures, implementing
// coherence.Kernel directly.
package kernel

import (
	"container/heap"
	"time"
)

// Clock is a min-heap-ordered event queue. Every coherence.Cache in a
// scenario shares one Clock, so a single Run call drains the whole
// hierarchy's self-events in a globally consistent order.
type Clock struct {
	now   int64
	seq   uint64
	timers timerHeap
}

// New returns a Clock starting at simulation time zero.
func New() *Clock { return &Clock{} }

// Now implements coherence.Kernel.
func (c *Clock) Now() int64 { return c.now }

// ScheduleSelf implements coherence.Kernel. Ties at the same simulation
// time are broken by arrival order, so two events scheduled for the same
// instant run in the order they were scheduled.
func (c *Clock) ScheduleSelf(delay time.Duration, fn func()) {
	c.seq++
	heap.Push(&c.timers, &timerEntry{at: c.now + int64(delay), seq: c.seq, fn: fn})
}

// Pending reports whether any timer remains queued.
func (c *Clock) Pending() bool { return c.timers.Len() > 0 }

// Run drains every queued timer in time order, advancing Now as it goes.
// If horizon is positive, Run stops before executing any timer scheduled
// past it, leaving it queued for a subsequent Run call.
func (c *Clock) Run(horizon int64) {
	for c.timers.Len() > 0 {
		next := c.timers[0]
		if horizon > 0 && next.at > horizon {
			return
		}
		heap.Pop(&c.timers)
		c.now = next.at
		next.fn()
	}
}

type timerEntry struct {
	at  int64
	seq uint64
	fn  func()
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)   { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
