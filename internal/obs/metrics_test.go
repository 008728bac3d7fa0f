package obs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradelink/internal/wire"
)

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()
	m.ObserveInbound(wire.TickNotify)
	m.ObserveInbound(wire.TickNotify)
	m.ObserveInbound(wire.ConnectorMissing)
	m.ObserveRequest(wire.GetSize, 2*time.Millisecond, nil)
	m.ObserveRequest(wire.GetSize, 4*time.Millisecond, nil)
	m.ObserveRequest(wire.AvgPrice, time.Millisecond, errors.New("timeout"))
	m.IncPushFailure()
	m.AddPrunedPeers(2)
	m.AddPrunedPeers(0)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Inbound[wire.TickNotify])
	assert.Equal(t, uint64(1), snap.Inbound[wire.ConnectorMissing])
	assert.Equal(t, uint64(2), snap.Outbound[wire.GetSize])
	assert.Zero(t, snap.Outbound[wire.AvgPrice])
	assert.Equal(t, uint64(1), snap.RequestFailures)
	assert.Equal(t, uint64(1), snap.PushFailures)
	assert.Equal(t, uint64(2), snap.PrunedPeers)

	assert.Equal(t, uint64(2), snap.RequestLatency.Count)
	assert.Equal(t, 2*time.Millisecond, snap.RequestLatency.Min)
	assert.Equal(t, 4*time.Millisecond, snap.RequestLatency.Max)
	assert.Equal(t, 3*time.Millisecond, snap.RequestLatency.Avg)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveInbound(wire.TickNotify)
	m.ObserveRequest(wire.GetSize, time.Millisecond, nil)
	m.IncPushFailure()
	m.IncMalformed()
	m.IncListenerPanic()
	m.IncJournalDrop()
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestSnapshotString(t *testing.T) {
	m := NewMetrics()
	m.ObserveInbound(wire.Heartbeat)
	m.ObserveInbound(wire.RegisterClient)
	m.ObserveRequest(wire.TickNotify, time.Millisecond, nil)
	m.IncJournalDrop()

	s := m.Snapshot().String()
	assert.Contains(t, s, "in=[REGISTERCLIENT=1 HEARTBEAT=1]")
	assert.Contains(t, s, "out=[TICKNOTIFY=1]")
	assert.Contains(t, s, "journal_drop=1")
	assert.Contains(t, s, "latency(n=1 ")
}
