package wire

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// order record field positions, matching the broker-side order struct
const (
	orderSymbol = iota
	orderSide
	orderSize
	orderPrice
	orderStop
	orderComment
	orderExchange
	orderAccount
	orderSecurity
	orderCurrency
	orderLocalSymbol
	orderID
	orderTIF
	orderDate
	orderTime
	orderSec

	orderFieldCount
)

// Order is an order request. Price zero with Stop zero is a market order.
type Order struct {
	ID          uint64
	Symbol      string
	Buy         bool
	Size        int
	Price       decimal.Decimal
	Stop        decimal.Decimal
	Comment     string
	Exchange    string
	Account     string
	Security    string
	Currency    string
	LocalSymbol string
	TIF         string
	Date        int
	Time        int
	Sec         int
}

func (o Order) IsValid() bool  { return o.Symbol != "" && o.Size != 0 }
func (o Order) IsLimit() bool  { return !o.Price.IsZero() }
func (o Order) IsStop() bool   { return !o.Stop.IsZero() }
func (o Order) IsMarket() bool { return o.Price.IsZero() && o.Stop.IsZero() }

// EncodeOrder renders o as an order record.
func EncodeOrder(o Order) string {
	var b recordBuilder
	b.str(o.Symbol).bool(o.Buy).int(o.Size).dec(o.Price).dec(o.Stop).
		str(o.Comment).str(o.Exchange).str(o.Account).str(o.Security).
		str(o.Currency).str(o.LocalSymbol).str(strconv.FormatUint(o.ID, 10)).
		str(o.TIF).int(o.Date).int(o.Time).int(o.Sec)
	return b.String()
}

// DecodeOrder parses an order record. Trailing fields after the price may be
// absent and decode to zero values.
func DecodeOrder(msg string) (Order, error) {
	f := splitRecord(msg)
	if len(f) <= orderPrice {
		return Order{}, errors.Wrapf(exception.ErrMalformedRecord, "order has %d fields", len(f))
	}

	o := Order{
		Symbol:      f.str(orderSymbol),
		Comment:     f.str(orderComment),
		Exchange:    f.str(orderExchange),
		Account:     f.str(orderAccount),
		Security:    f.str(orderSecurity),
		Currency:    f.str(orderCurrency),
		LocalSymbol: f.str(orderLocalSymbol),
		TIF:         f.str(orderTIF),
	}
	var err error
	if o.Buy, err = f.bool(orderSide); err != nil {
		return Order{}, err
	}
	if o.Size, err = f.int(orderSize); err != nil {
		return Order{}, err
	}
	if o.Price, err = f.dec(orderPrice); err != nil {
		return Order{}, err
	}
	if o.Stop, err = f.dec(orderStop); err != nil {
		return Order{}, err
	}
	if id := strings.TrimSpace(f.str(orderID)); id != "" {
		if o.ID, err = strconv.ParseUint(id, 10, 64); err != nil {
			return Order{}, errors.Wrapf(exception.ErrMalformedRecord, "order id %q", id)
		}
	}
	if o.Date, err = f.int(orderDate); err != nil {
		return Order{}, err
	}
	if o.Time, err = f.int(orderTime); err != nil {
		return Order{}, err
	}
	if o.Sec, err = f.int(orderSec); err != nil {
		return Order{}, err
	}
	return o, nil
}
