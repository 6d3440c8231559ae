package kernel

import (
	"testing"
	"time"
)

func TestClockRunsInTimeOrder(t *testing.T) {
	c := New()
	var order []string

	c.ScheduleSelf(30*time.Nanosecond, func() { order = append(order, "c") })
	c.ScheduleSelf(10*time.Nanosecond, func() { order = append(order, "a") })
	c.ScheduleSelf(20*time.Nanosecond, func() { order = append(order, "b") })

	c.Run(0)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("expected strict time order a,b,c, got %v", order)
	}
	if c.Now() != 30 {
		t.Fatalf("expected clock to advance to the last fired timer, got %d", c.Now())
	}
}

func TestClockBreaksTiesByScheduleOrder(t *testing.T) {
	c := New()
	var order []string

	c.ScheduleSelf(5*time.Nanosecond, func() { order = append(order, "first") })
	c.ScheduleSelf(5*time.Nanosecond, func() { order = append(order, "second") })

	c.Run(0)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected tie-break by scheduling order, got %v", order)
	}
}

func TestClockHorizonLeavesLaterTimersQueued(t *testing.T) {
	c := New()
	fired := 0
	c.ScheduleSelf(5*time.Nanosecond, func() { fired++ })
	c.ScheduleSelf(50*time.Nanosecond, func() { fired++ })

	c.Run(10)
	if fired != 1 {
		t.Fatalf("expected only the timer within the horizon to fire, got %d", fired)
	}
	if !c.Pending() {
		t.Fatal("expected the later timer to remain queued past the horizon")
	}

	c.Run(0)
	if fired != 2 {
		t.Fatalf("expected the remaining timer to fire once horizon is lifted, got %d", fired)
	}
	if c.Pending() {
		t.Fatal("expected no timers left after draining")
	}
}

func TestScheduleSelfDuringRunIsObservedInOrder(t *testing.T) {
	c := New()
	var order []int
	c.ScheduleSelf(1*time.Nanosecond, func() {
		order = append(order, 1)
		c.ScheduleSelf(1*time.Nanosecond, func() { order = append(order, 2) })
	})
	c.Run(0)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected a timer scheduled mid-run to fire after, got %v", order)
	}
}
