package wire

import (
	"strings"

	"github.com/shopspring/decimal"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// execution record field positions
const (
	execDate = iota
	execTime
	execSec
	execSymbol
	execSide
	execSize
	execPrice
	execComment

	execFieldCount
)

// Trade is an executed fill.
type Trade struct {
	Date    int
	Time    int
	Sec     int
	Symbol  string
	Buy     bool
	Size    int
	Price   decimal.Decimal
	Comment string
}

// SignedSize is Size, negated for sells.
func (t Trade) SignedSize() int {
	if t.Buy {
		return t.Size
	}
	return -t.Size
}

// EncodeTrade renders t as an execution record.
func EncodeTrade(t Trade) string {
	var b recordBuilder
	b.int(t.Date).int(t.Time).int(t.Sec).str(t.Symbol).
		bool(t.Buy).int(t.Size).dec(t.Price).str(t.Comment)
	return b.String()
}

// DecodeTrade parses an execution record. A comment containing the field
// separator is kept whole.
func DecodeTrade(msg string) (Trade, error) {
	f := splitRecord(msg)
	if len(f) < execComment {
		return Trade{}, errors.Wrapf(exception.ErrMalformedRecord, "execution has %d fields", len(f))
	}

	t := Trade{Symbol: f.str(execSymbol)}
	var err error
	if t.Date, err = f.int(execDate); err != nil {
		return Trade{}, err
	}
	if t.Time, err = f.int(execTime); err != nil {
		return Trade{}, err
	}
	if t.Sec, err = f.int(execSec); err != nil {
		return Trade{}, err
	}
	if t.Buy, err = f.bool(execSide); err != nil {
		return Trade{}, err
	}
	if t.Size, err = f.int(execSize); err != nil {
		return Trade{}, err
	}
	if t.Price, err = f.dec(execPrice); err != nil {
		return Trade{}, err
	}
	if len(f) > execComment {
		t.Comment = strings.Join(f[execComment:], fieldSep)
	}
	return t, nil
}
