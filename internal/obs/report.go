package obs

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yanun0323/logs"

	"tradelink/internal/wire"
)

// Report logs a metrics summary every interval until ctx is done.
func Report(ctx context.Context, m *Metrics, interval time.Duration) error {
	if m == nil || interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			logs.Info(m.Snapshot().String())
		}
	}
}

func (s Snapshot) String() string {
	var b strings.Builder
	b.WriteString("stats in=[")
	writeCounts(&b, s.Inbound)
	b.WriteString("] out=[")
	writeCounts(&b, s.Outbound)
	b.WriteString("]")
	appendField(&b, "req_fail", s.RequestFailures)
	appendField(&b, "push_fail", s.PushFailures)
	appendField(&b, "malformed", s.Malformed)
	appendField(&b, "panics", s.ListenerPanics)
	appendField(&b, "journal_drop", s.JournalDrops)
	appendField(&b, "pruned", s.PrunedPeers)
	b.WriteString(" latency(n=")
	b.WriteString(strconv.FormatUint(s.RequestLatency.Count, 10))
	b.WriteString(" min=")
	b.WriteString(s.RequestLatency.Min.String())
	b.WriteString(" avg=")
	b.WriteString(s.RequestLatency.Avg.String())
	b.WriteString(" max=")
	b.WriteString(s.RequestLatency.Max.String())
	b.WriteString(")")
	return b.String()
}

func writeCounts(b *strings.Builder, counts map[wire.MessageType]uint64) {
	types := make([]wire.MessageType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for i, t := range types {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.String())
		b.WriteByte('=')
		b.WriteString(strconv.FormatUint(counts[t], 10))
	}
}

func appendField(b *strings.Builder, name string, v uint64) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(strconv.FormatUint(v, 10))
}
