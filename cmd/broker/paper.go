package main

import (
	"sync"

	"github.com/shopspring/decimal"

	"tradelink/internal/wire"
)

// paper fills orders against the replayed tape. Limit and stop orders fill
// at their own price, market orders at the last trade.
type paper struct {
	mu   sync.Mutex
	last map[string]decimal.Decimal
}

func newPaper() *paper {
	return &paper{last: make(map[string]decimal.Decimal)}
}

func (p *paper) observe(t wire.Tick) {
	if !t.IsTrade() {
		return
	}
	p.mu.Lock()
	p.last[t.Symbol] = t.Trade
	p.mu.Unlock()
}

func (p *paper) fill(o wire.Order) (wire.Trade, bool) {
	if !o.IsValid() {
		return wire.Trade{}, false
	}

	price := o.Price
	switch {
	case o.IsLimit():
	case o.IsStop():
		price = o.Stop
	default:
		p.mu.Lock()
		last, ok := p.last[o.Symbol]
		p.mu.Unlock()
		if !ok {
			return wire.Trade{}, false
		}
		price = last
	}

	size := o.Size
	if size < 0 {
		size = -size
	}
	return wire.Trade{
		Date:    o.Date,
		Time:    o.Time,
		Sec:     o.Sec,
		Symbol:  o.Symbol,
		Buy:     o.Buy,
		Size:    size,
		Price:   price,
		Comment: o.Comment,
	}, true
}
