package coherence

// Metrics receives observability events from a Cache. A nil Metrics is
// valid everywhere it is used: every call site nil-checks first, so
// statistics collection costs nothing when disabled.
type Metrics interface {
	ObserveReadHit()
	ObserveReadMiss()
	ObserveWriteHit()
	ObserveWriteMiss()
	ObserveSupplyHit()
	ObserveSupplyMiss()
	ObserveUpgradeMiss()
}

// Stats is the snapshot of counters exposed at teardown.
type Stats struct {
	ReadHits, ReadMisses     uint64
	WriteHits, WriteMisses   uint64
	SupplyHits, SupplyMisses uint64
	UpgradeMisses            uint64
}

type counters struct {
	Stats
	metrics Metrics
}

func (c *counters) readHit() {
	c.ReadHits++
	if c.metrics != nil {
		c.metrics.ObserveReadHit()
	}
}

func (c *counters) readMiss() {
	c.ReadMisses++
	if c.metrics != nil {
		c.metrics.ObserveReadMiss()
	}
}

func (c *counters) writeHit() {
	c.WriteHits++
	if c.metrics != nil {
		c.metrics.ObserveWriteHit()
	}
}

func (c *counters) writeMiss() {
	c.WriteMisses++
	if c.metrics != nil {
		c.metrics.ObserveWriteMiss()
	}
}

func (c *counters) supplyHit() {
	c.SupplyHits++
	if c.metrics != nil {
		c.metrics.ObserveSupplyHit()
	}
}

func (c *counters) supplyMiss() {
	c.SupplyMisses++
	if c.metrics != nil {
		c.metrics.ObserveSupplyMiss()
	}
}

func (c *counters) upgradeMiss() {
	c.UpgradeMisses++
	if c.metrics != nil {
		c.metrics.ObserveUpgradeMiss()
	}
}
