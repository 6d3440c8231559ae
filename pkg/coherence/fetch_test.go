package coherence_test

import (
	"testing"

	"github.com/marmos91/cachesim/pkg/coherence"
	"github.com/marmos91/cachesim/pkg/coherence/simtest"
	"github.com/marmos91/cachesim/pkg/config"
)

// buildMidWithDirectory wires an L1 above a Mid cache whose only downward
// egress is a directory link standing in for both the directory controller
// and the backing memory behind it: a RequestData addressed to "DIR" is
// answered like a memory fill, and every other event reaching "DIR" is
// recorded for assertions.
func buildMidWithDirectory(t *testing.T) (clock *simtest.Clock, l1, mid *coherence.Cache, dirReceived *[]*coherence.Event) {
	t.Helper()

	clock = simtest.NewClock()
	cfg, err := config.Load(map[string]string{"num_ways": "2", "num_rows": "2", "blocksize": "64"})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	dir := simtest.NewDirectory([]coherence.PeerRange{{Name: "DIR", Start: 0, End: 1 << 20}})
	received := make([]*coherence.Event, 0)

	midUpstreamPlaceholder := &simtest.Forwarder{}
	mid = coherence.New(cfg, coherence.Links{
		SelfName:  "Mid",
		Upstream:  []coherence.PointToPointLink{midUpstreamPlaceholder},
		Directory: dir,
	}, clock, 2, nil)

	dir.Register("DIR", func(ev *coherence.Event, src coherence.Source) {
		received = append(received, ev)
		if ev.Cmd == coherence.RequestData {
			clock.ScheduleSelf(1, func() {
				mid.Dispatch(&coherence.Event{
					ResponseTo: ev.ID,
					Cmd:        coherence.SupplyData,
					Addr:       ev.Addr,
					BaseAddr:   ev.BaseAddr,
					Size:       ev.Size,
					Payload:    make([]byte, cfg.BlockSize),
				}, coherence.Directory)
			})
		}
	})

	cpu := simtest.NewWire(coherence.Upstream, nil)
	l1 = coherence.New(cfg, coherence.Links{
		SelfName:   "L1",
		Upstream:   []coherence.PointToPointLink{cpu},
		Downstream: simtest.NewWire(coherence.Upstream, mid.Dispatch),
	}, clock, 1, nil)

	midUpstreamPlaceholder.Target = simtest.NewWire(coherence.Downstream, l1.Dispatch)

	return clock, l1, mid, &received
}

// TestFetchInvalidateKeepsBlockValidUntilUpstreamSettles exercises the
// directory pulling a block back from a cache that has handed a shared copy
// upstream: Mid must invalidate L1 first, replying to the directory only
// once that settles, and must not touch its own copy's status before then.
func TestFetchInvalidateKeepsBlockValidUntilUpstreamSettles(t *testing.T) {
	clock, l1, mid, dirReceived := buildMidWithDirectory(t)

	// Warm L1 (and, transitively, Mid) with a read.
	l1.Dispatch(&coherence.Event{Cmd: coherence.ReadReq, Addr: 0, Size: 8, LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	if status, present := l1.Inspect(0); !present || status != coherence.Shared {
		t.Fatalf("expected L1 warmed to Shared, got %v present=%v", status, present)
	}
	if status, present := mid.Inspect(0); !present || status != coherence.Shared {
		t.Fatalf("expected Mid warmed to Shared, got %v present=%v", status, present)
	}

	// The directory asks Mid to fetch-and-invalidate the block.
	mid.Dispatch(&coherence.Event{Cmd: coherence.FetchInvalidate, Addr: 0, BaseAddr: 0, Dst: "DIR"}, coherence.Directory)
	clock.Run(1_000_000)

	l1Status, l1Present := l1.Inspect(0)
	if l1Present || l1Status != coherence.Invalid {
		t.Fatalf("expected L1's copy invalidated by the upstream broadcast, got %v present=%v", l1Status, l1Present)
	}

	midStatus, midPresent := mid.Inspect(0)
	if midPresent || midStatus != coherence.Invalid {
		t.Fatalf("expected Mid's own copy invalidated after replying to the fetch, got %v present=%v", midStatus, midPresent)
	}

	received := *dirReceived
	if len(received) == 0 {
		t.Fatal("expected the directory to receive a reply to the fetch")
	}
	reply := received[len(received)-1]
	if reply.Cmd != coherence.SupplyData {
		t.Fatalf("expected the fetch reply to carry SupplyData, got %v", reply.Cmd)
	}
	if len(reply.Payload) != 64 {
		t.Fatalf("expected a full block payload, got %d bytes", len(reply.Payload))
	}
}

// TestFetchWithoutInvalidateLeavesBlockShared exercises a plain directory
// Fetch (no forced invalidation): Mid answers with its data and keeps the
// block Shared, and L1's copy is left untouched.
func TestFetchWithoutInvalidateLeavesBlockShared(t *testing.T) {
	clock, l1, mid, dirReceived := buildMidWithDirectory(t)

	l1.Dispatch(&coherence.Event{Cmd: coherence.ReadReq, Addr: 0, Size: 8, LinkID: 0}, coherence.Upstream)
	clock.Run(1_000_000)

	mid.Dispatch(&coherence.Event{Cmd: coherence.Fetch, Addr: 0, BaseAddr: 0, Dst: "DIR"}, coherence.Directory)
	clock.Run(1_000_000)

	if status, present := mid.Inspect(0); !present || status != coherence.Shared {
		t.Fatalf("expected Mid's copy to remain Shared after a plain fetch, got %v present=%v", status, present)
	}
	if status, present := l1.Inspect(0); !present || status != coherence.Shared {
		t.Fatalf("expected L1's copy untouched by a plain fetch, got %v present=%v", status, present)
	}

	received := *dirReceived
	if len(received) == 0 || received[len(received)-1].Cmd != coherence.SupplyData {
		t.Fatalf("expected a SupplyData reply to the fetch, got %+v", received)
	}
}
