package state

import (
	"sync"

	"github.com/shopspring/decimal"
)

type dayRange struct {
	high decimal.Decimal
	low  decimal.Decimal
}

// RangeBook tracks the day high and low of every traded symbol. The first
// trade seeds both; afterwards the high only rises and the low only falls.
type RangeBook struct {
	mu     sync.RWMutex
	ranges map[string]dayRange
}

// NewRangeBook creates an empty book.
func NewRangeBook() *RangeBook {
	return &RangeBook{ranges: make(map[string]dayRange)}
}

// Observe folds a trade price into the symbol's range.
func (b *RangeBook) Observe(symbol string, price decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.ranges[symbol]
	if !ok {
		b.ranges[symbol] = dayRange{high: price, low: price}
		return
	}
	if price.GreaterThan(r.high) {
		r.high = price
	}
	if price.LessThan(r.low) {
		r.low = price
	}
	b.ranges[symbol] = r
}

// High returns the day high for symbol.
func (b *RangeBook) High(symbol string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.ranges[symbol]
	return r.high, ok
}

// Low returns the day low for symbol.
func (b *RangeBook) Low(symbol string) (decimal.Decimal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.ranges[symbol]
	return r.low, ok
}
