// Package cache keeps a client's view of per-symbol day ranges and
// positions, filled lazily from round-trip queries to the server.
package cache

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"tradelink/internal/state"
)

// Querier performs the round-trip queries the cache falls back to.
type Querier interface {
	DayHigh(ctx context.Context, symbol string) (decimal.Decimal, error)
	DayLow(ctx context.Context, symbol string) (decimal.Decimal, error)
	AvgPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	PosSize(ctx context.Context, symbol string) (int, error)
}

// priceEntry marks each side known only once a real value has been seen,
// so a missing low never needs a placeholder price.
type priceEntry struct {
	high    decimal.Decimal
	low     decimal.Decimal
	hasHigh bool
	hasLow  bool
}

func (e *priceEntry) observe(price decimal.Decimal) {
	if !e.hasHigh || price.GreaterThan(e.high) {
		e.high, e.hasHigh = price, true
	}
	if !e.hasLow || price.LessThan(e.low) {
		e.low, e.hasLow = price, true
	}
}

// Cache is safe for concurrent use. No lock is held across a query.
type Cache struct {
	q Querier

	mu        sync.Mutex
	prices    map[string]*priceEntry
	positions map[string]state.Position
}

// New creates an empty cache backed by q.
func New(q Querier) *Cache {
	return &Cache{
		q:         q,
		prices:    make(map[string]*priceEntry),
		positions: make(map[string]state.Position),
	}
}

// DayHigh returns the cached high, querying once on a miss. Only a non-zero
// answer is cached.
func (c *Cache) DayHigh(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c.mu.Lock()
	if e, ok := c.prices[symbol]; ok && e.hasHigh {
		c.mu.Unlock()
		return e.high, nil
	}
	c.mu.Unlock()

	high, err := c.q.DayHigh(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !high.IsZero() {
		c.mu.Lock()
		e := c.entry(symbol)
		e.high, e.hasHigh = high, true
		c.mu.Unlock()
	}
	return high, nil
}

// DayLow returns the cached low, querying once on a miss. Only a non-zero
// answer is cached.
func (c *Cache) DayLow(ctx context.Context, symbol string) (decimal.Decimal, error) {
	c.mu.Lock()
	if e, ok := c.prices[symbol]; ok && e.hasLow {
		c.mu.Unlock()
		return e.low, nil
	}
	c.mu.Unlock()

	low, err := c.q.DayLow(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !low.IsZero() {
		c.mu.Lock()
		e := c.entry(symbol)
		e.low, e.hasLow = low, true
		c.mu.Unlock()
	}
	return low, nil
}

// ObserveTrade folds a trade price into the cached range. A symbol seen for
// the first time is seeded from the server before the trade is applied.
func (c *Cache) ObserveTrade(ctx context.Context, symbol string, price decimal.Decimal) error {
	c.mu.Lock()
	e, ok := c.prices[symbol]
	if ok {
		e.observe(price)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	seed := priceEntry{}
	high, err := c.q.DayHigh(ctx, symbol)
	if err != nil {
		return err
	}
	low, err := c.q.DayLow(ctx, symbol)
	if err != nil {
		return err
	}
	if !high.IsZero() {
		seed.high, seed.hasHigh = high, true
	}
	if !low.IsZero() {
		seed.low, seed.hasLow = low, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e = c.entry(symbol)
	if !e.hasHigh && seed.hasHigh {
		e.high, e.hasHigh = seed.high, true
	}
	if !e.hasLow && seed.hasLow {
		e.low, e.hasLow = seed.low, true
	}
	e.observe(price)
	return nil
}

// Range returns the cached range without querying. hasHigh and hasLow are
// false for a side that has not been seen yet.
func (c *Cache) Range(symbol string) (high, low decimal.Decimal, hasHigh, hasLow bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.prices[symbol]
	if !ok {
		return decimal.Zero, decimal.Zero, false, false
	}
	return e.high, e.low, e.hasHigh, e.hasLow
}

// Position returns the cached position, building it from two queries on a
// miss.
func (c *Cache) Position(ctx context.Context, symbol string) (state.Position, error) {
	c.mu.Lock()
	if p, ok := c.positions[symbol]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	return c.RefreshPosition(ctx, symbol)
}

// RefreshPosition rebuilds the position for symbol from the server and
// replaces any cached entry.
func (c *Cache) RefreshPosition(ctx context.Context, symbol string) (state.Position, error) {
	avg, err := c.q.AvgPrice(ctx, symbol)
	if err != nil {
		return state.Position{}, err
	}
	size, err := c.q.PosSize(ctx, symbol)
	if err != nil {
		return state.Position{}, err
	}
	p := state.NewPosition(symbol, avg, size)

	c.mu.Lock()
	c.positions[symbol] = p
	c.mu.Unlock()
	return p, nil
}

// entry must be called with c.mu held.
func (c *Cache) entry(symbol string) *priceEntry {
	e, ok := c.prices[symbol]
	if !ok {
		e = &priceEntry{}
		c.prices[symbol] = e
	}
	return e
}
