package aspxauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies an Engine counter or histogram.
type MetricID uint16

const (
	// MetricDecodeSuccess counts cookies that decoded to a ticket.
	MetricDecodeSuccess MetricID = iota
	// MetricDecodeSignatureFailure counts cookies whose outer or inner signature did not verify.
	MetricDecodeSignatureFailure
	// MetricDecodeCryptoFailure counts cookies that failed hex decoding, decryption or unpadding.
	MetricDecodeCryptoFailure
	// MetricDecodeFormatFailure counts decrypted payloads that were structurally invalid.
	MetricDecodeFormatFailure
	// MetricDecodeVersionMismatch counts tickets rejected for their embedded version.
	MetricDecodeVersionMismatch
	// MetricDecodeExpired counts tickets rejected as expired.
	MetricDecodeExpired
	// MetricEncodeSuccess counts issued cookies.
	MetricEncodeSuccess
	// MetricEncodeFailure counts Encode calls that returned an error.
	MetricEncodeFailure
	// MetricDecodeLatency is the decode latency histogram.
	MetricDecodeLatency
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

// Metrics holds lock-free counters updated on the Engine hot paths.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of the Engine metrics. Histogram buckets are
// per-bucket counts, not cumulative.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics returns a Metrics set configured by cfg. A disabled set ignores all updates.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether latency histograms are recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in histogram id. Only MetricDecodeLatency carries a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricDecodeLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when enabled, the latency histogram.
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
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricDecodeLatency].buckets[i])
		}
		s.Histograms[MetricDecodeLatency] = buckets
	}

	return s
}

// bucketIndex maps a decode latency to the upper bounds 10µs, 25µs, 50µs, 100µs, 250µs,
// 500µs, 1ms and +Inf.
func bucketIndex(d time.Duration) int {
	us := d.Microseconds()

	switch {
	case us <= 10:
		return 0
	case us <= 25:
		return 1
	case us <= 50:
		return 2
	case us <= 100:
		return 3
	case us <= 250:
		return 4
	case us <= 500:
		return 5
	case us <= 1000:
		return 6
	default:
		return 7
	}
}
