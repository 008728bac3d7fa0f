package main

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/link"
	"tradelink/internal/wire"
)

type loneSender struct{}

func (loneSender) Identity() string  { return link.SimBroker }
func (loneSender) Found(string) bool { return false }
func (loneSender) Request(context.Context, string, wire.MessageType, string) (int64, error) {
	return 0, nil
}

func TestPaperFill(t *testing.T) {
	p := newPaper()
	p.observe(wire.Tick{Symbol: "IBM", Trade: decimal.RequireFromString("101.5"), Size: 100})
	p.observe(wire.Tick{Symbol: "IBM", Bid: decimal.NewFromInt(1)})

	testCases := []struct {
		desc  string
		order wire.Order
		ok    bool
		price string
	}{
		{desc: "limit", order: wire.Order{Symbol: "IBM", Buy: true, Size: 10, Price: decimal.NewFromInt(100)}, ok: true, price: "100"},
		{desc: "stop", order: wire.Order{Symbol: "IBM", Size: 10, Stop: decimal.NewFromInt(99)}, ok: true, price: "99"},
		{desc: "market", order: wire.Order{Symbol: "IBM", Size: 10}, ok: true, price: "101.5"},
		{desc: "market without tape", order: wire.Order{Symbol: "LVS", Size: 10}},
		{desc: "invalid", order: wire.Order{Symbol: "IBM"}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			fill, ok := p.fill(tc.order)
			require.Equal(t, tc.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tc.order.Symbol, fill.Symbol)
			assert.Equal(t, tc.order.Buy, fill.Buy)
			assert.Equal(t, 10, fill.Size)
			assert.True(t, fill.Price.Equal(decimal.RequireFromString(tc.price)), fill.Price.String())
		})
	}
}

func TestReplay(t *testing.T) {
	ctx := context.Background()
	l := link.New(loneSender{}, link.Config{})
	p := newPaper()

	tape := strings.Join([]string{
		"# symbol,date,time,sec,trade,size,ex,bid,ask,bs,as,be,ae",
		wire.EncodeTick(wire.Tick{Symbol: "IBM", Date: 20240102, Time: 930, Trade: decimal.NewFromInt(100), Size: 10}),
		"",
		"not,a,tick",
		wire.EncodeTick(wire.Tick{Symbol: "IBM", Date: 20240102, Time: 931, Trade: decimal.NewFromInt(104), Size: 10}),
		wire.EncodeIndexTick(wire.IndexTick{Name: "$SPX", Value: decimal.NewFromInt(4700)}),
	}, "\n")

	require.NoError(t, replay(ctx, strings.NewReader(tape), l, p, 0))

	high := l.Dispatch(ctx, wire.Envelope{Type: wire.NDayHigh, Payload: "IBM"})
	low := l.Dispatch(ctx, wire.Envelope{Type: wire.NDayLow, Payload: "IBM"})
	assert.True(t, wire.Unpack(high).Equal(decimal.NewFromInt(104)))
	assert.True(t, wire.Unpack(low).Equal(decimal.NewFromInt(100)))

	fill, ok := p.fill(wire.Order{Symbol: "IBM", Size: 1})
	require.True(t, ok)
	assert.True(t, fill.Price.Equal(decimal.NewFromInt(104)))
}
