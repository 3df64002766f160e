package goCinema

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by goCinema APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricLoginSuccess is an exported constant or variable used by the session engine.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure is an exported constant or variable used by the session engine.
	MetricLoginFailure
	// MetricSignupSuccess is an exported constant or variable used by the session engine.
	MetricSignupSuccess
	// MetricSignupFailure is an exported constant or variable used by the session engine.
	MetricSignupFailure
	// MetricSignupValidationRejected is an exported constant or variable used by the session engine.
	MetricSignupValidationRejected
	// MetricLogoutSuccess is an exported constant or variable used by the session engine.
	MetricLogoutSuccess
	// MetricLogoutFailure is an exported constant or variable used by the session engine.
	MetricLogoutFailure
	// MetricLogoutLocal counts logouts that cleared the session without a provider call.
	MetricLogoutLocal
	// MetricRefreshSuccess is an exported constant or variable used by the session engine.
	MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the session engine.
	MetricRefreshFailure
	// MetricSessionExpired counts sessions force-cleared because they could not be renewed.
	MetricSessionExpired
	// MetricCatalogCacheHit is an exported constant or variable used by the session engine.
	MetricCatalogCacheHit
	// MetricCatalogCacheMiss is an exported constant or variable used by the session engine.
	MetricCatalogCacheMiss
	// MetricCatalogRequestFailure is an exported constant or variable used by the session engine.
	MetricCatalogRequestFailure
	// MetricCatalogFetchLatency is the only histogram: wall time of catalog network fetches.
	MetricCatalogFetchLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics defines a public type used by goCinema APIs.
//
// Metrics instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot defines a public type used by goCinema APIs.
//
// MetricsSnapshot instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics describes the newmetrics operation and its observable behavior.
//
// NewMetrics allocates counters according to cfg. Disabled metrics make every call a no-op.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled describes the enabled operation and its observable behavior.
//
// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled describes the latencyenabled operation and its observable behavior.
//
// LatencyEnabled reports whether the latency histogram is recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc describes the inc operation and its observable behavior.
//
// Inc adds one to the counter id. Out-of-range ids are ignored. Safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe describes the observe operation and its observable behavior.
//
// Observe records d in the histogram for id. Only MetricCatalogFetchLatency is accepted.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricCatalogFetchLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value describes the value operation and its observable behavior.
//
// Value returns the current counter value, or 0 when metrics are disabled.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot copies every counter and histogram. Safe for concurrent use.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricCatalogFetchLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricCatalogFetchLatency].buckets[i])
		}
		s.Histograms[MetricCatalogFetchLatency] = buckets
	}

	return s
}

// Buckets: <=5ms, <=10ms, <=25ms, <=50ms, <=100ms, <=250ms, <=500ms, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
