package link

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"tradelink/internal/cache"
	"tradelink/internal/errors"
	"tradelink/internal/state"
	"tradelink/internal/wire"
	"tradelink/pkg/exception"
)

type clientRole struct {
	link  *Link
	cache *cache.Cache
}

func (c *clientRole) handle(ctx context.Context, env wire.Envelope) int64 {
	l := c.link

	switch env.Type {
	case wire.TickNotify:
		c.tick(ctx, env)
	case wire.ExecuteNotify:
		t, err := wire.DecodeTrade(env.Payload)
		if err != nil {
			c.malformed(env, err)
			break
		}
		if _, err := c.cache.RefreshPosition(ctx, t.Symbol); err != nil {
			logs.Errorf("refresh position %s, err: %+v", t.Symbol, err)
		}
		l.emitted(l.GotFill.emit(t))
	case wire.OrderNotify:
		o, err := wire.DecodeOrder(env.Payload)
		if err != nil {
			c.malformed(env, err)
			break
		}
		l.emitted(l.GotOrder.emit(o))
	}

	l.emitted(l.GotMessage.emit(Message{Type: env.Type, Source: env.Source}))
	return 0
}

func (c *clientRole) tick(ctx context.Context, env wire.Envelope) {
	l := c.link

	if wire.IsIndex(wire.RecordSymbol(env.Payload)) {
		i, err := wire.DecodeIndexTick(env.Payload)
		if err != nil {
			c.malformed(env, err)
			return
		}
		l.emitted(l.GotIndexTick.emit(i))
		return
	}

	t, err := wire.DecodeTick(env.Payload)
	if err != nil {
		c.malformed(env, err)
		return
	}
	if t.IsTrade() {
		if err := c.cache.ObserveTrade(ctx, t.Symbol, t.Trade); err != nil {
			logs.Errorf("seed range %s, err: %+v", t.Symbol, err)
		}
	}
	l.emitted(l.GotTick.emit(t))
}

func (c *clientRole) malformed(env wire.Envelope, err error) {
	c.link.metrics.IncMalformed()
	logs.Errorf("drop %s from %s, err: %+v", env.Type, env.Source, err)
}

// send delivers one request to the current broker.
func (l *Link) send(ctx context.Context, typ wire.MessageType, payload string) (int64, error) {
	if l.sender == nil {
		return 0, exception.ErrNilTransport
	}
	if l.Me() == "" {
		return 0, exception.ErrNoLocalIdentity
	}
	return l.sender.Request(ctx, l.Him(), typ, payload)
}

// Register announces this client to the broker.
func (l *Link) Register(ctx context.Context) error {
	_, err := l.send(ctx, wire.RegisterClient, l.Me())
	return err
}

// Disconnect removes this client from the broker. A broker that is already
// gone is not an error.
func (l *Link) Disconnect(ctx context.Context) error {
	_, err := l.send(ctx, wire.ClearClient, l.Me())
	if errors.Is(err, exception.ErrPeerNotFound) {
		return nil
	}
	return err
}

// Subscribe replaces this client's symbol subscriptions.
func (l *Link) Subscribe(ctx context.Context, b wire.Basket) error {
	_, err := l.send(ctx, wire.RegisterStock, wire.EncodeSubscription(l.Me(), b))
	return err
}

// RegisterIndex replaces this client's index subscriptions.
func (l *Link) RegisterIndex(ctx context.Context, b wire.Basket) error {
	_, err := l.send(ctx, wire.RegisterIndex, wire.EncodeSubscription(l.Me(), b))
	return err
}

// Unsubscribe clears this client's symbol subscriptions.
func (l *Link) Unsubscribe(ctx context.Context) error {
	_, err := l.send(ctx, wire.ClearStocks, l.Me())
	return err
}

// SendOrder sends o to the broker and returns its reply code. A nil order
// sends nothing.
func (l *Link) SendOrder(ctx context.Context, o *wire.Order) (int, error) {
	if o == nil {
		return 0, nil
	}
	res, err := l.send(ctx, wire.SendOrder, wire.EncodeOrder(*o))
	return int(res), err
}

// HeartBeat refreshes this client's liveness at the broker.
func (l *Link) HeartBeat(ctx context.Context) (int, error) {
	res, err := l.send(ctx, wire.Heartbeat, l.Me())
	return int(res), err
}

func (l *Link) price(ctx context.Context, typ wire.MessageType, symbol string) (decimal.Decimal, error) {
	res, err := l.send(ctx, typ, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	return wire.Unpack(res), nil
}

// DayHigh asks the broker for the day high of symbol.
func (l *Link) DayHigh(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.NDayHigh, symbol)
}

// DayLow asks the broker for the day low of symbol.
func (l *Link) DayLow(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.NDayLow, symbol)
}

// DayOpen asks the broker for the opening price. Zero means unknown.
func (l *Link) DayOpen(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.OpenPrice, symbol)
}

// DayClose asks the broker for the closing price, zero while the market is
// still open.
func (l *Link) DayClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.ClosePrice, symbol)
}

// YestClose asks the broker for the previous session's closing price.
func (l *Link) YestClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.YestClose, symbol)
}

// AvgPrice asks the broker for the average cost of the position in symbol.
func (l *Link) AvgPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.price(ctx, wire.AvgPrice, symbol)
}

// PosSize asks the broker for the signed position size in symbol.
func (l *Link) PosSize(ctx context.Context, symbol string) (int, error) {
	res, err := l.send(ctx, wire.GetSize, symbol)
	return int(res), err
}

// BrokerName returns the broker's numeric name code.
func (l *Link) BrokerName(ctx context.Context) (int64, error) {
	return l.send(ctx, wire.BrokerName, "")
}

// FastHigh returns the cached day high, querying only on a miss.
func (l *Link) FastHigh(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.client.cache.DayHigh(ctx, symbol)
}

// FastLow returns the cached day low, querying only on a miss.
func (l *Link) FastLow(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return l.client.cache.DayLow(ctx, symbol)
}

// FastPos returns the cached position, querying only on a miss.
func (l *Link) FastPos(ctx context.Context, symbol string) (state.Position, error) {
	return l.client.cache.Position(ctx, symbol)
}

// Cache returns the client-side query cache.
func (l *Link) Cache() *cache.Cache {
	return l.client.cache
}
