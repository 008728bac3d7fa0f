package journal

import (
	"context"
	"time"

	"github.com/yanun0323/logs"

	"tradelink/internal/bus"
	"tradelink/internal/errors"
	"tradelink/internal/obs"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
)

const DefaultQueueSize = 1024

type entry struct {
	fill  *FillRecord
	order *OrderRecord
}

// Writer queues fills and orders without blocking the caller and writes
// them to a Store from a single goroutine.
type Writer struct {
	store   Store
	queue   *bus.Queue[entry]
	metrics *obs.Metrics
	now     func() time.Time
}

// NewWriter creates a writer with room for queueSize pending rows.
func NewWriter(store Store, queueSize int, metrics *obs.Metrics) *Writer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Writer{
		store:   store,
		queue:   bus.NewQueue[entry](queueSize),
		metrics: metrics,
		now:     time.Now,
	}
}

// RecordFill queues a fill. A full queue drops it.
func (w *Writer) RecordFill(t wire.Trade) {
	r := NewFillRecord(t, w.now())
	w.publish(entry{fill: &r})
}

// RecordOrder queues an order request. A full queue drops it.
func (w *Writer) RecordOrder(o wire.Order) {
	r := NewOrderRecord(o, w.now())
	w.publish(entry{order: &r})
}

func (w *Writer) publish(e entry) {
	err := w.queue.TryPublish(e)
	switch {
	case err == nil:
	case errors.Is(err, bus.ErrQueueFull):
		w.metrics.IncJournalDrop()
		logs.Errorf("journal entry dropped, err: %+v", exception.ErrJournalQueueFull)
	default:
		logs.Errorf("journal entry dropped, err: %+v", exception.ErrJournalClosed)
	}
}

// Dropped returns how many rows were dropped on a full queue.
func (w *Writer) Dropped() uint64 {
	return w.queue.Dropped()
}

// Run writes queued rows until ctx is done or Close drains the queue.
func (w *Writer) Run(ctx context.Context) {
	w.queue.Run(ctx, func(e entry) {
		var err error
		switch {
		case e.fill != nil:
			err = w.store.SaveFill(ctx, e.fill)
		case e.order != nil:
			err = w.store.SaveOrder(ctx, e.order)
		}
		if err != nil {
			logs.Errorf("write journal entry, err: %+v", err)
		}
	})
}

// Close stops accepting rows. Run returns once the queue is drained.
func (w *Writer) Close() {
	w.queue.Close()
}
