package coherence_test

import (
	"testing"

	"github.com/marmos91/cachesim/pkg/coherence"
	"github.com/marmos91/cachesim/pkg/coherence/simtest"
	"github.com/marmos91/cachesim/pkg/config"
)

// buildTwoLevel wires an L1 directly above an L2, with a Memory stub below
// the L2, all driven by one shared simtest.Clock. It mirrors the simplest
// hierarchy the component is meant to sit in: CPU -> L1 -> L2 -> memory.
func buildTwoLevel(t *testing.T) (clock *simtest.Clock, l1, l2 *coherence.Cache, cpu *simtest.Wire) {
	t.Helper()

	clock = simtest.NewClock()

	cfg, err := config.Load(map[string]string{"num_ways": "2", "num_rows": "2", "blocksize": "64"})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	l2DownstreamPlaceholder := &simtest.Forwarder{}
	l2UpstreamPlaceholder := &simtest.Forwarder{}

	l2 = coherence.New(cfg, coherence.Links{
		SelfName:   "L2",
		Upstream:   []coherence.PointToPointLink{l2UpstreamPlaceholder},
		Downstream: l2DownstreamPlaceholder,
	}, clock, 2, nil)

	mem := simtest.NewMemory(clock, 1, cfg.BlockSize, l2.Dispatch)
	l2DownstreamPlaceholder.Target = mem

	cpu = simtest.NewWire(coherence.Upstream, nil)

	l1 = coherence.New(cfg, coherence.Links{
		SelfName:   "L1",
		Upstream:   []coherence.PointToPointLink{cpu},
		Downstream: simtest.NewWire(coherence.Upstream, l2.Dispatch),
	}, clock, 1, nil)

	l2UpstreamPlaceholder.Target = simtest.NewWire(coherence.Downstream, l1.Dispatch)

	return clock, l1, l2, cpu
}

func TestTwoLevelReadMissThenHit(t *testing.T) {
	clock, l1, _, cpu := buildTwoLevel(t)

	l1.Dispatch(&coherence.Event{Cmd: coherence.ReadReq, Addr: 0, Size: 8, LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	if len(cpu.Sent) != 1 {
		t.Fatalf("expected 1 CPU response after cold read, got %d", len(cpu.Sent))
	}
	if cpu.Sent[0].Cmd != coherence.ReadReq {
		t.Fatalf("expected ReadReq response, got %v", cpu.Sent[0].Cmd)
	}
	if len(cpu.Sent[0].Payload) != 8 {
		t.Fatalf("expected 8-byte payload, got %d", len(cpu.Sent[0].Payload))
	}

	status, present := l1.Inspect(0)
	if !present || status != coherence.Shared {
		t.Fatalf("expected L1 block Shared after fill, got %v present=%v", status, present)
	}

	l1.Dispatch(&coherence.Event{Cmd: coherence.ReadReq, Addr: 0, Size: 8, LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	if len(cpu.Sent) != 2 {
		t.Fatalf("expected a second CPU response after a hit, got %d", len(cpu.Sent))
	}

	// The original miss replays once its fill lands, counting as a hit in
	// its own right, so the cold read contributes one miss and one hit
	// before the explicit second Dispatch above adds a second hit.
	stats := l1.Stats()
	if stats.ReadMisses != 1 || stats.ReadHits != 2 {
		t.Fatalf("expected 1 miss and 2 hits, got %+v", stats)
	}
}

func TestTwoLevelWriteUpgradeInvalidatesL2(t *testing.T) {
	clock, l1, l2, cpu := buildTwoLevel(t)

	// Warm both levels with a read first.
	l1.Dispatch(&coherence.Event{Cmd: coherence.ReadReq, Addr: 0, Size: 8, LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	l1.Dispatch(&coherence.Event{Cmd: coherence.WriteReq, Addr: 0, Size: 8, Payload: []byte("12345678"), LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	l1Status, _ := l1.Inspect(0)
	if l1Status != coherence.Dirty {
		t.Fatalf("expected L1 block Dirty after a write hit following upgrade, got %v", l1Status)
	}

	l2Status, present := l2.Inspect(0)
	if present && l2Status != coherence.Invalid {
		t.Fatalf("expected L2 copy invalidated by L1's upgrade, got %v", l2Status)
	}

	if err := simtest.CheckExclusivity(0, map[string]*coherence.Cache{"L1": l1, "L2": l2}); err != nil {
		t.Fatalf("exclusivity invariant violated: %v", err)
	}

	if cpu.Sent[len(cpu.Sent)-1].Cmd != coherence.WriteReq {
		t.Fatalf("expected the last CPU response to answer the write")
	}
}
