package link

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"tradelink/internal/registry"
	"tradelink/internal/state"
	"tradelink/internal/wire"
)

type serverRole struct {
	link      *Link
	registry  *registry.Registry
	positions *state.PositionBook
	ranges    *state.RangeBook
}

func (s *serverRole) handle(ctx context.Context, env wire.Envelope) int64 {
	switch env.Type {
	case wire.GetSize:
		if p, ok := s.positions.Position(env.Payload); ok {
			return int64(p.Size)
		}
	case wire.AvgPrice:
		if p, ok := s.positions.Position(env.Payload); ok {
			return s.pack(env, p.AvgPrice)
		}
	case wire.NDayHigh:
		if high, ok := s.ranges.High(env.Payload); ok {
			return s.pack(env, high)
		}
	case wire.NDayLow:
		if low, ok := s.ranges.Low(env.Payload); ok {
			return s.pack(env, low)
		}
	case wire.SendOrder:
		s.execute(ctx, env)
	case wire.RegisterClient:
		s.registry.Register(env.Payload)
	case wire.RegisterStock:
		if id, basket, ok := s.subscription(env); ok {
			s.registry.SetStocks(id, basket)
		}
	case wire.RegisterIndex:
		if id, basket, ok := s.subscription(env); ok {
			s.registry.SetIndices(id, basket)
		}
	case wire.ClearClient:
		s.registry.Unregister(env.Payload)
	case wire.ClearStocks:
		s.registry.ClearStocks(env.Payload)
	case wire.Heartbeat:
		s.registry.Heartbeat(env.Payload)
	default:
		if !env.Type.Known() {
			logs.Infof("unknown message type %d from %s", uint16(env.Type), env.Source)
		}
	}
	return 0
}

func (s *serverRole) pack(env wire.Envelope, v decimal.Decimal) int64 {
	p, err := wire.Pack(v)
	if err != nil {
		logs.Errorf("pack %s reply for %s, err: %+v", env.Type, env.Payload, err)
		return 0
	}
	return p
}

func (s *serverRole) subscription(env wire.Envelope) (string, wire.Basket, bool) {
	id, basket, err := wire.DecodeSubscription(env.Payload)
	if err != nil {
		s.link.metrics.IncMalformed()
		logs.Errorf("drop %s from %s, err: %+v", env.Type, env.Source, err)
		return "", nil, false
	}
	return id, basket, true
}

// execute raises the fill request and then tells every registered peer
// about the order, whatever they subscribe to.
func (s *serverRole) execute(ctx context.Context, env wire.Envelope) {
	o, err := wire.DecodeOrder(env.Payload)
	if err != nil {
		s.link.metrics.IncMalformed()
		logs.Errorf("drop %s from %s, err: %+v", env.Type, env.Source, err)
		return
	}
	if s.link.recorder != nil {
		s.link.recorder.RecordOrder(o)
	}
	s.link.emitted(s.link.GotFillRequest.emit(o))
	s.push(ctx, wire.OrderNotify, env.Payload, s.registry.AllIdentities())
}

// push sends payload to each peer. A failed push is logged and skipped.
func (s *serverRole) push(ctx context.Context, typ wire.MessageType, payload string, peers []string) int {
	sent := 0
	for _, id := range peers {
		if _, err := s.link.sender.Request(ctx, id, typ, payload); err != nil {
			s.link.metrics.IncPushFailure()
			logs.Errorf("push %s to %s, err: %+v", typ, id, err)
			continue
		}
		sent++
	}
	return sent
}

// NewTick records a trade in the day range and sends the tick to every peer
// subscribed to its symbol. It returns the number of peers reached.
func (l *Link) NewTick(ctx context.Context, t wire.Tick) int {
	if t.Symbol == "" {
		return 0
	}
	s := l.server
	if t.IsTrade() {
		s.ranges.Observe(t.Symbol, t.Trade)
	}
	return s.push(ctx, wire.TickNotify, wire.EncodeTick(t), s.registry.SubscribedTo(t.Symbol))
}

// NewIndexTick sends an index update to every peer subscribed to the index.
func (l *Link) NewIndexTick(ctx context.Context, i wire.IndexTick) int {
	if i.Name == "" {
		return 0
	}
	s := l.server
	return s.push(ctx, wire.TickNotify, wire.EncodeIndexTick(i), s.registry.SubscribedToIndex(i.Name))
}

// NewFill applies a fill to the broker position and sends it to every peer
// subscribed to its symbol.
func (l *Link) NewFill(ctx context.Context, t wire.Trade) int {
	if t.Symbol == "" {
		return 0
	}
	s := l.server
	s.positions.ApplyFill(t)
	if l.recorder != nil {
		l.recorder.RecordFill(t)
	}
	return s.push(ctx, wire.ExecuteNotify, wire.EncodeTrade(t), s.registry.SubscribedTo(t.Symbol))
}

// ClearIndex drops a peer's index subscriptions.
func (l *Link) ClearIndex(id string) {
	l.server.registry.ClearIndices(id)
}

// NumClients returns the number of registered peers.
func (l *Link) NumClients() int {
	return l.server.registry.Len()
}

// Clients returns the registered peers in registration order.
func (l *Link) Clients() []string {
	return l.server.registry.AllIdentities()
}

// Peer returns the registry record of a peer.
func (l *Link) Peer(id string) (registry.Record, bool) {
	return l.server.registry.Get(id)
}

// ServerPosition returns the broker's position for symbol.
func (l *Link) ServerPosition(symbol string) (state.Position, bool) {
	return l.server.positions.Position(symbol)
}

// Positions returns the broker's position book.
func (l *Link) Positions() *state.PositionBook {
	return l.server.positions
}

// PruneStale unregisters peers whose last heartbeat is older than maxAge
// and returns them. A non-positive maxAge prunes nothing.
func (l *Link) PruneStale(maxAge time.Duration) []string {
	if maxAge <= 0 {
		return nil
	}
	r := l.server.registry
	stale := r.Stale(maxAge)
	pruned := stale[:0]
	for _, id := range stale {
		if r.Unregister(id) {
			pruned = append(pruned, id)
			logs.Infof("pruned stale peer %s", id)
		}
	}
	l.metrics.AddPrunedPeers(len(pruned))
	return pruned
}
