package scenario

import (
	"testing"

	"github.com/marmos91/cachesim/pkg/coherence"
)

const twoLevelYAML = `
chains:
  - levels:
      - name: L1
        config: {num_ways: 2, num_rows: 2, blocksize: 64}
      - name: L2
        config: {num_ways: 2, num_rows: 2, blocksize: 64}
memory:
  delay: 1
ops:
  - cache: L1
    op: read
    addr: 0
    size: 8
    at: 0
  - cache: L1
    op: read
    addr: 0
    size: 8
    at: 10
`

func TestLoadValidatesLevelsAndOps(t *testing.T) {
	sc, err := Load([]byte(twoLevelYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sc.Chains) != 1 || len(sc.Chains[0].Levels) != 2 {
		t.Fatalf("unexpected chain shape: %+v", sc.Chains)
	}
}

func TestLoadRejectsUnknownOpTarget(t *testing.T) {
	_, err := Load([]byte(`
chains:
  - levels:
      - name: L1
        config: {num_ways: 2, num_rows: 2, blocksize: 64}
ops:
  - cache: does-not-exist
    op: read
    addr: 0
    size: 8
`))
	if err == nil {
		t.Fatal("expected an error for an op targeting an unknown level")
	}
}

func TestLoadRejectsBadLevelConfig(t *testing.T) {
	_, err := Load([]byte(`
chains:
  - levels:
      - name: L1
        config: {num_rows: 3}
ops:
  - cache: L1
    op: read
    addr: 0
    size: 8
`))
	if err == nil {
		t.Fatal("expected an error for a non-power-of-two num_rows")
	}
}

func TestBuildAndExecuteReadMissThenHit(t *testing.T) {
	sc, err := Load([]byte(twoLevelYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	run, err := Build(sc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := run.Execute(sc.Ops); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	report := run.Report()
	if len(report.Levels) != 2 {
		t.Fatalf("expected 2 levels reported, got %d", len(report.Levels))
	}

	l1 := report.Levels[0]
	if l1.Name != "L1" {
		t.Fatalf("expected L1 first, got %q", l1.Name)
	}
	// The cold read's own replay after its fill lands counts as a hit in
	// its own right (see pkg/coherence's scenario tests for the full
	// trace), so one cold read plus one explicit follow-up read produces
	// 1 miss and 2 hits.
	if l1.Stats.ReadMisses != 1 || l1.Stats.ReadHits != 2 {
		t.Fatalf("unexpected L1 stats: %+v", l1.Stats)
	}

	cpu, ok := run.cpu["L1"]
	if !ok || len(cpu.sent) != 2 {
		t.Fatalf("expected 2 CPU responses, got %+v", cpu)
	}
}

const snoopYAML = `
chains:
  - levels:
      - name: L1a
        config: {num_ways: 2, num_rows: 2, blocksize: 64}
  - levels:
      - name: L1b
        config: {num_ways: 2, num_rows: 2, blocksize: 64}
snoop:
  - members: [L1a, L1b]
    arb_delay: 1
memory:
  delay: 1
ops:
  - cache: L1a
    op: read
    addr: 0
    size: 8
    at: 0
  - cache: L1a
    op: write
    addr: 0
    size: 8
    at: 100
`

// TestBuildWiresSnoopBusForWriteUpgradeInvalidate exercises the snoop bus
// end to end through the scenario runtime: L1a's upgrade miss on a write
// must broadcast Invalidate to its sibling L1b over the shared bus (not
// just loop back to itself), and the write must complete once every peer
// and the memory stub have acknowledged.
func TestBuildWiresSnoopBusForWriteUpgradeInvalidate(t *testing.T) {
	sc, err := Load([]byte(snoopYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	run, err := Build(sc)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := run.Execute(sc.Ops); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	status, present := run.caches["L1a"].Inspect(0)
	if !present || status != coherence.Dirty {
		t.Fatalf("expected L1a's block to end Dirty after the write, got status=%v present=%v", status, present)
	}

	var l1a, l1b LevelStats
	for _, lvl := range run.Report().Levels {
		switch lvl.Name {
		case "L1a":
			l1a = lvl
		case "L1b":
			l1b = lvl
		}
	}
	if l1a.Stats.ReadMisses != 1 || l1a.Stats.ReadHits != 1 || l1a.Stats.UpgradeMisses != 1 || l1a.Stats.WriteHits != 1 {
		t.Fatalf("unexpected L1a stats: %+v", l1a.Stats)
	}
	if l1b.Stats != (coherence.Stats{}) {
		t.Fatalf("expected L1b untouched by the write-upgrade invalidate, got %+v", l1b.Stats)
	}
}
