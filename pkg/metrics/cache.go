package metrics

import "github.com/marmos91/cachesim/pkg/coherence"

// NewCacheMetrics creates a Prometheus-backed coherence.Metrics instance.
//
// Returns nil if statistics collection is not enabled (InitRegistry was
// never called). A nil Metrics is valid: every call site on the hot path
// nil-checks before recording, so disabled statistics cost nothing beyond
// the check itself.
func NewCacheMetrics() coherence.Metrics {
	if !IsEnabled() {
		return nil
	}
	if newPrometheusCacheMetrics == nil {
		return nil
	}
	return newPrometheusCacheMetrics()
}

// newPrometheusCacheMetrics is supplied by pkg/metrics/prometheus during its
// package init. The indirection avoids metrics depending directly on its own
// prometheus subpackage, which would otherwise import back into metrics.
var newPrometheusCacheMetrics func() coherence.Metrics

// RegisterCacheMetricsConstructor is called by pkg/metrics/prometheus's
// init() to wire its constructor in without import-cycling back here.
func RegisterCacheMetricsConstructor(constructor func() coherence.Metrics) {
	newPrometheusCacheMetrics = constructor
}
