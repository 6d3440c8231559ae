package prometheus

import (
	"github.com/marmos91/cachesim/pkg/coherence"
	"github.com/marmos91/cachesim/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	metrics.RegisterCacheMetricsConstructor(NewCacheMetrics)
}

// cacheMetrics is the Prometheus implementation of coherence.Metrics.
type cacheMetrics struct {
	accesses *prometheus.CounterVec
}

// NewCacheMetrics creates a new Prometheus-backed coherence.Metrics
// instance. Every instance shares the one cachesim_accesses_total vector
// in the registry, so its counts are totals over all caches in the run.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewCacheMetrics() coherence.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	accesses := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cachesim_accesses_total",
			Help: "Total number of cache accesses by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: "read", "write", "supply", "upgrade"; outcome: "hit", "miss"
	)
	if err := reg.Register(accesses); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		accesses = are.ExistingCollector.(*prometheus.CounterVec)
	}

	return &cacheMetrics{accesses: accesses}
}

func (m *cacheMetrics) ObserveReadHit()  { m.observe("read", "hit") }
func (m *cacheMetrics) ObserveReadMiss() { m.observe("read", "miss") }

func (m *cacheMetrics) ObserveWriteHit()  { m.observe("write", "hit") }
func (m *cacheMetrics) ObserveWriteMiss() { m.observe("write", "miss") }

func (m *cacheMetrics) ObserveSupplyHit()  { m.observe("supply", "hit") }
func (m *cacheMetrics) ObserveSupplyMiss() { m.observe("supply", "miss") }

func (m *cacheMetrics) ObserveUpgradeMiss() { m.observe("upgrade", "miss") }

func (m *cacheMetrics) observe(kind, outcome string) {
	if m == nil {
		return
	}
	m.accesses.WithLabelValues(kind, outcome).Inc()
}
