package obs

import (
	"sync/atomic"
	"time"

	"tradelink/internal/wire"
)

const maxMessageType = int(wire.ConnectorMissing)

// Metrics collects lightweight counters and latency stats.
type Metrics struct {
	inbound  [maxMessageType + 1]uint64
	outbound [maxMessageType + 1]uint64

	requestFailures uint64
	pushFailures    uint64
	malformed       uint64
	listenerPanics  uint64
	journalDrops    uint64
	prunedPeers     uint64

	requestLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Inbound         map[wire.MessageType]uint64
	Outbound        map[wire.MessageType]uint64
	RequestFailures uint64
	PushFailures    uint64
	Malformed       uint64
	ListenerPanics  uint64
	JournalDrops    uint64
	PrunedPeers     uint64
	RequestLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveInbound counts a received envelope.
func (m *Metrics) ObserveInbound(t wire.MessageType) {
	if m == nil {
		return
	}
	if idx := int(t); idx < len(m.inbound) {
		atomic.AddUint64(&m.inbound[idx], 1)
	}
}

// ObserveRequest counts a sent envelope and how long its reply took.
// Failed requests only bump the failure counter.
func (m *Metrics) ObserveRequest(t wire.MessageType, d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		atomic.AddUint64(&m.requestFailures, 1)
		return
	}
	if idx := int(t); idx < len(m.outbound) {
		atomic.AddUint64(&m.outbound[idx], 1)
	}
	m.requestLatency.Observe(d)
}

// IncPushFailure records a fan-out push that did not reach its peer.
func (m *Metrics) IncPushFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.pushFailures, 1)
}

// IncMalformed records an inbound payload that could not be decoded.
func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.malformed, 1)
}

// IncListenerPanic records a recovered event listener panic.
func (m *Metrics) IncListenerPanic() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.listenerPanics, 1)
}

// IncJournalDrop records a journal entry dropped on a full queue.
func (m *Metrics) IncJournalDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.journalDrops, 1)
}

// AddPrunedPeers records peers removed for missing heartbeats.
func (m *Metrics) AddPrunedPeers(n int) {
	if m == nil || n <= 0 {
		return
	}
	atomic.AddUint64(&m.prunedPeers, uint64(n))
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Inbound:         countsByType(&m.inbound),
		Outbound:        countsByType(&m.outbound),
		RequestFailures: atomic.LoadUint64(&m.requestFailures),
		PushFailures:    atomic.LoadUint64(&m.pushFailures),
		Malformed:       atomic.LoadUint64(&m.malformed),
		ListenerPanics:  atomic.LoadUint64(&m.listenerPanics),
		JournalDrops:    atomic.LoadUint64(&m.journalDrops),
		PrunedPeers:     atomic.LoadUint64(&m.prunedPeers),
		RequestLatency:  m.requestLatency.Snapshot(),
	}
}

func countsByType(counts *[maxMessageType + 1]uint64) map[wire.MessageType]uint64 {
	out := make(map[wire.MessageType]uint64)
	for i := range counts {
		if v := atomic.LoadUint64(&counts[i]); v > 0 {
			out[wire.MessageType(i)] = v
		}
	}
	return out
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
