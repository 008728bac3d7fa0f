package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"tradelink/internal/wire"
)

const (
	sideBuy  = "BUY"
	sideSell = "SELL"
)

// FillRecord is one broker fill as stored in the journal.
type FillRecord struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	Symbol     string          `gorm:"size:32;index"`
	Side       string          `gorm:"size:4"`
	Size       int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(20,6)"`
	Date       int
	Time       int
	Sec        int
	Comment    string    `gorm:"size:255"`
	RecordedAt time.Time `gorm:"index"`
}

func (FillRecord) TableName() string { return "tradelink_fills" }

// OrderRecord is one order request as stored in the journal.
type OrderRecord struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	OrderID    uint64          `gorm:"index"`
	Symbol     string          `gorm:"size:32;index"`
	Side       string          `gorm:"size:4"`
	Size       int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(20,6)"`
	Stop       decimal.Decimal `gorm:"type:numeric(20,6)"`
	Account    string          `gorm:"size:64"`
	Exchange   string          `gorm:"size:32"`
	TIF        string          `gorm:"size:8"`
	Comment    string          `gorm:"size:255"`
	RecordedAt time.Time       `gorm:"index"`
}

func (OrderRecord) TableName() string { return "tradelink_orders" }

func side(buy bool) string {
	if buy {
		return sideBuy
	}
	return sideSell
}

// NewFillRecord maps a fill to its journal row.
func NewFillRecord(t wire.Trade, at time.Time) FillRecord {
	return FillRecord{
		Symbol:     t.Symbol,
		Side:       side(t.Buy),
		Size:       t.Size,
		Price:      t.Price,
		Date:       t.Date,
		Time:       t.Time,
		Sec:        t.Sec,
		Comment:    t.Comment,
		RecordedAt: at,
	}
}

// NewOrderRecord maps an order request to its journal row.
func NewOrderRecord(o wire.Order, at time.Time) OrderRecord {
	return OrderRecord{
		OrderID:    o.ID,
		Symbol:     o.Symbol,
		Side:       side(o.Buy),
		Size:       o.Size,
		Price:      o.Price,
		Stop:       o.Stop,
		Account:    o.Account,
		Exchange:   o.Exchange,
		TIF:        o.TIF,
		Comment:    o.Comment,
		RecordedAt: at,
	}
}
