package wire

import (
	"github.com/shopspring/decimal"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// tick record field positions
const (
	tickSymbol = iota
	tickDate
	tickTime
	tickSec
	tickTrade
	tickTradeSize
	tickTradeExchange
	tickBid
	tickAsk
	tickBidSize
	tickAskSize
	tickBidExchange
	tickAskExchange

	tickFieldCount
)

// Tick is a single quote or trade observation. A tick with a non-zero
// Trade price is a trade and only the trade fields are meaningful;
// otherwise it is a quote and only the bid/ask fields are.
type Tick struct {
	Symbol string
	Date   int
	Time   int
	Sec    int

	Trade         decimal.Decimal
	Size          int
	TradeExchange string

	Bid         decimal.Decimal
	Ask         decimal.Decimal
	BidSize     int
	AskSize     int
	BidExchange string
	AskExchange string
}

func (t Tick) IsTrade() bool { return !t.Trade.IsZero() }

func (t Tick) IsQuote() bool { return !t.IsTrade() && (!t.Bid.IsZero() || !t.Ask.IsZero()) }

// EncodeTick renders t as a tick record.
func EncodeTick(t Tick) string {
	var b recordBuilder
	b.str(t.Symbol).int(t.Date).int(t.Time).int(t.Sec).
		dec(t.Trade).int(t.Size).str(t.TradeExchange).
		dec(t.Bid).dec(t.Ask).int(t.BidSize).int(t.AskSize).
		str(t.BidExchange).str(t.AskExchange)
	return b.String()
}

// DecodeTick parses a tick record.
func DecodeTick(msg string) (Tick, error) {
	f := splitRecord(msg)
	if len(f) < tickFieldCount {
		return Tick{}, errors.Wrapf(exception.ErrMalformedRecord, "tick has %d fields", len(f))
	}

	t := Tick{Symbol: f.str(tickSymbol)}
	var err error
	if t.Date, err = f.int(tickDate); err != nil {
		return Tick{}, err
	}
	if t.Time, err = f.int(tickTime); err != nil {
		return Tick{}, err
	}
	if t.Sec, err = f.int(tickSec); err != nil {
		return Tick{}, err
	}

	trade, err := f.dec(tickTrade)
	if err != nil {
		return Tick{}, err
	}
	if !trade.IsZero() {
		t.Trade = trade
		if t.Size, err = f.int(tickTradeSize); err != nil {
			return Tick{}, err
		}
		t.TradeExchange = f.str(tickTradeExchange)
		return t, nil
	}

	if t.Bid, err = f.dec(tickBid); err != nil {
		return Tick{}, err
	}
	if t.Ask, err = f.dec(tickAsk); err != nil {
		return Tick{}, err
	}
	if t.BidSize, err = f.int(tickBidSize); err != nil {
		return Tick{}, err
	}
	if t.AskSize, err = f.int(tickAskSize); err != nil {
		return Tick{}, err
	}
	t.BidExchange = f.str(tickBidExchange)
	t.AskExchange = f.str(tickAskExchange)
	return t, nil
}

// RecordSymbol returns the symbol (or index name) a tick-notify record is for.
func RecordSymbol(msg string) string {
	return firstField(msg)
}
