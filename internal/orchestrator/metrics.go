package orchestrator

import (
	"sync/atomic"
	"time"
)

// Metrics tracks engine counters for observability collaborators. All
// fields are updated with atomic operations; no locking on the hot path.
type Metrics struct {
	totalProcessed  uint64
	succeeded       uint64
	failed          uint64
	fraudDeclined   uint64
	durationNanos   uint64
	durationSamples uint64
}

// NewMetrics creates a zeroed metrics set.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncProcessed()     { atomic.AddUint64(&m.totalProcessed, 1) }
func (m *Metrics) IncSucceeded()     { atomic.AddUint64(&m.succeeded, 1) }
func (m *Metrics) IncFailed()        { atomic.AddUint64(&m.failed, 1) }
func (m *Metrics) IncFraudDeclined() { atomic.AddUint64(&m.fraudDeclined, 1) }

// ObserveDuration records one end-to-end processing duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	atomic.AddUint64(&m.durationNanos, uint64(d.Nanoseconds()))
	atomic.AddUint64(&m.durationSamples, 1)
}

// Snapshot is a point-in-time view of the engine metrics.
type Snapshot struct {
	TotalProcessed        uint64        `json:"total_processed"`
	SuccessRate           float64       `json:"success_rate"`
	AverageProcessingTime time.Duration `json:"average_processing_time"`
	FraudDeclineRate      float64       `json:"fraud_decline_rate"`
}

// Snapshot returns the current counter values as rates.
func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadUint64(&m.totalProcessed)
	succeeded := atomic.LoadUint64(&m.succeeded)
	declined := atomic.LoadUint64(&m.fraudDeclined)
	nanos := atomic.LoadUint64(&m.durationNanos)
	samples := atomic.LoadUint64(&m.durationSamples)

	snap := Snapshot{TotalProcessed: total}
	if total > 0 {
		snap.SuccessRate = float64(succeeded) / float64(total)
		snap.FraudDeclineRate = float64(declined) / float64(total)
	}
	if samples > 0 {
		snap.AverageProcessingTime = time.Duration(nanos / samples)
	}
	return snap
}
