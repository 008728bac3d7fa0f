package state

import (
	"sync"

	"github.com/shopspring/decimal"

	"tradelink/internal/wire"
)

// Position is a net size and its average cost for one symbol.
type Position struct {
	Symbol   string          `json:"symbol"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	Size     int             `json:"size"`
}

// NewPosition builds a position as reported by a remote peer.
func NewPosition(symbol string, avgPrice decimal.Decimal, size int) Position {
	return Position{Symbol: symbol, AvgPrice: avgPrice, Size: size}
}

func (p Position) IsFlat() bool  { return p.Size == 0 }
func (p Position) IsLong() bool  { return p.Size > 0 }
func (p Position) IsShort() bool { return p.Size < 0 }

// Adjust applies a fill. Adding to a position re-weights the average cost
// over the combined size; reducing it keeps the average; crossing through
// flat starts a new average at the fill price.
func (p Position) Adjust(fill wire.Trade) Position {
	delta := fill.SignedSize()
	next := p.Size + delta
	switch {
	case delta == 0:
		return p
	case next == 0:
		p.AvgPrice = decimal.Zero
	case p.Size == 0 || sameSign(p.Size, delta):
		cost := p.AvgPrice.Mul(decimal.NewFromInt(int64(p.Size))).
			Add(fill.Price.Mul(decimal.NewFromInt(int64(delta))))
		p.AvgPrice = cost.Div(decimal.NewFromInt(int64(next)))
	case !sameSign(p.Size, next):
		p.AvgPrice = fill.Price
	}
	p.Size = next
	return p
}

func sameSign(a, b int) bool {
	return (a > 0) == (b > 0)
}

// PositionBook holds one position per symbol that has ever been filled.
type PositionBook struct {
	mu        sync.RWMutex
	positions map[string]Position
}

// NewPositionBook creates an empty book.
func NewPositionBook() *PositionBook {
	return &PositionBook{positions: make(map[string]Position)}
}

// ApplyFill creates or adjusts the position for the fill's symbol and
// returns the result.
func (b *PositionBook) ApplyFill(fill wire.Trade) Position {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.positions[fill.Symbol]
	if !ok {
		current = Position{Symbol: fill.Symbol}
	}
	next := current.Adjust(fill)
	b.positions[fill.Symbol] = next
	return next
}

// Position returns the position for symbol.
func (b *PositionBook) Position(symbol string) (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.positions[symbol]
	return p, ok
}

// Count returns the number of tracked symbols.
func (b *PositionBook) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.positions)
}
