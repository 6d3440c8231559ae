// Package simtest provides an in-process discrete-event scheduler and fake
// link implementations for exercising pkg/coherence without a real
// simulator kernel. It plays the role the teacher's pkg/cache/testing
// package plays for the content cache: a minimal harness that drives the
// component under test through its real public entry points instead of
// reaching into unexported state.
package simtest

import (
	"container/heap"
	"time"
)

// Clock is a single-threaded, ordered event queue implementing
// coherence.Kernel. Every Cache under test in a scenario shares one Clock,
// so cross-cache event ordering stays deterministic.
type Clock struct {
	now   int64
	seq   uint64
	timers timerHeap
}

// NewClock returns a Clock starting at simulation time zero.
func NewClock() *Clock {
	return &Clock{}
}

// Now implements coherence.Kernel.
func (c *Clock) Now() int64 { return c.now }

// ScheduleSelf implements coherence.Kernel: fn runs after delay simulation
// time units, strictly after anything already scheduled for an earlier
// time, and in insertion order among entries at the same time.
func (c *Clock) ScheduleSelf(delay time.Duration, fn func()) {
	c.seq++
	heap.Push(&c.timers, &timerEntry{at: c.now + int64(delay), seq: c.seq, fn: fn})
}

// Run drains the queue, advancing Now to each timer's scheduled time and
// invoking it, until no more work is pending or the next timer is scheduled
// later than the absolute simulation time horizon (0 disables the limit).
// That timer is removed from the queue without running. The horizon keeps
// a runaway test from hanging; Run reports nothing when it is reached.
func (c *Clock) Run(horizon int64) {
	for c.timers.Len() > 0 {
		next := heap.Pop(&c.timers).(*timerEntry)
		if horizon > 0 && next.at > horizon {
			return
		}
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
	*h = old[:n-1]
	return item
}
