package scenario

import (
	"fmt"
	"time"

	"github.com/marmos91/cachesim/internal/bytesize"
	"github.com/marmos91/cachesim/internal/logger"
	"github.com/marmos91/cachesim/pkg/coherence"
	"github.com/marmos91/cachesim/pkg/config"
	"github.com/marmos91/cachesim/pkg/kernel"
	"github.com/marmos91/cachesim/pkg/metrics"
)

// Run is a fully wired, not-yet-executed scenario: every level's
// coherence.Cache, its CPU-facing port, and the shared clock driving it.
type Run struct {
	clock   *kernel.Clock
	horizon int64

	caches map[string]*coherence.Cache
	cpu    map[string]*wire
	cfgs   map[string]*config.Config

	// order preserves the scenario's declared level order, purely for
	// stable, deterministic Report output.
	order []string
}

// Build wires every cache level declared in sc, connects chains downward
// to a memory stub, joins any declared snoop groups, and returns a Run
// ready for Execute. origin tags are assigned in declaration order
// starting at 1, so log lines and EventIDs are stable across runs of the
// same scenario file.
func Build(sc *Scenario) (*Run, error) {
	r := &Run{
		clock:   kernel.New(),
		horizon: sc.Horizon,
		caches:  make(map[string]*coherence.Cache),
		cpu:     make(map[string]*wire),
		cfgs:    make(map[string]*config.Config),
	}

	memDelay := sc.Memory.Delay
	if memDelay <= 0 {
		memDelay = 1
	}

	snoopMembers := make(map[string]bool)
	for _, grp := range sc.Snoop {
		for _, name := range grp.Members {
			snoopMembers[name] = true
		}
	}
	snoopSlots := make(map[string]*snoopForwarder)

	var origin uint32
	for _, chain := range sc.Chains {
		n := len(chain.Levels)
		downPlaceholders := make([]*forwarder, n)
		cfgs := make([]*config.Config, n)

		for i, lvl := range chain.Levels {
			cfg, err := config.Load(lvl.Config)
			if err != nil {
				return nil, fmt.Errorf("cachesim: level %q: %w", lvl.Name, err)
			}
			cfgs[i] = cfg
		}

		for i := 0; i < n; i++ {
			origin++
			name := chain.Levels[i].Name

			var up coherence.PointToPointLink
			if i == 0 {
				cpuPort := newWire(coherence.Upstream, nil)
				r.cpu[name] = cpuPort
				up = cpuPort
			} else {
				prev := r.caches[chain.Levels[i-1].Name]
				up = newWire(coherence.Downstream, prev.Dispatch)
			}

			downPlaceholders[i] = &forwarder{}

			var snoopLink coherence.SnoopBus
			if snoopMembers[name] {
				slot := &snoopForwarder{}
				snoopSlots[name] = slot
				snoopLink = slot
			}

			cache := coherence.New(cfgs[i], coherence.Links{
				SelfName:   name,
				Upstream:   []coherence.PointToPointLink{up},
				Downstream: downPlaceholders[i],
				Snoop:      snoopLink,
			}, r.clock, origin, metrics.NewCacheMetrics())

			r.caches[name] = cache
			r.cfgs[name] = cfgs[i]
			r.order = append(r.order, name)

			if i > 0 {
				downPlaceholders[i-1].target = newWire(coherence.Upstream, cache.Dispatch)
			}
			logger.Debug("wired cache level", "cache", name, "ways", cfgs[i].NumWays, "rows", cfgs[i].NumRows)
		}

		last := r.caches[chain.Levels[n-1].Name]
		downPlaceholders[n-1].target = newMemory(r.clock, memDelay, cfgs[n-1].BlockSize, last.Dispatch)
	}

	for _, grp := range sc.Snoop {
		arb := grp.ArbDelay
		if arb <= 0 {
			arb = 1
		}
		b := newBus(r.clock, arb)
		for _, name := range grp.Members {
			b.attach(r.caches[name].Dispatch)
			snoopSlots[name].target = b
		}
		logger.Debug("wired snoop group", "members", grp.Members)
	}

	return r, nil
}

// Execute schedules every op at its declared simulation time and runs the
// clock to exhaustion (or to Horizon, if the scenario set one).
func (r *Run) Execute(ops []OpSpec) error {
	for _, op := range ops {
		cache, ok := r.caches[op.Cache]
		if !ok {
			return fmt.Errorf("cachesim: op references unknown level %q", op.Cache)
		}
		cmd := coherence.ReadReq
		if op.Op == "write" {
			cmd = coherence.WriteReq
		}
		var flags coherence.Flags
		if op.Locked {
			flags = coherence.FlagLocked
		}
		r.clock.ScheduleSelf(time.Duration(op.At), func() {
			cache.Dispatch(&coherence.Event{
				Cmd:   cmd,
				Addr:  op.Addr,
				Size:  op.Size,
				Flags: flags,
			}, coherence.Upstream)
		})
	}
	r.clock.Run(r.horizon)
	return nil
}

// Report snapshots every level's teardown statistics in declaration
// order.
func (r *Run) Report() *Report {
	rep := &Report{}
	for _, name := range r.order {
		rep.Levels = append(rep.Levels, LevelStats{
			Name:      name,
			BlockSize: bytesize.ByteSize(r.cfgs[name].BlockSize),
			Stats:     r.caches[name].Stats(),
		})
	}
	return rep
}
