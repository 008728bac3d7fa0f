package wire

import (
	"strings"

	"github.com/shopspring/decimal"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

// index record field positions
const (
	indexName = iota
	indexValue
	indexOpen
	indexHigh
	indexLow
	indexClose
	indexDate
	indexTime

	indexFieldCount
)

// IndexTick is an update for a market index such as $SPX.
type IndexTick struct {
	Name  string
	Value decimal.Decimal
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
	Date  int
	Time  int
}

// IsIndex reports whether name denotes an index rather than a stock symbol.
func IsIndex(name string) bool {
	return strings.HasPrefix(name, "$") || strings.HasPrefix(name, "/")
}

// EncodeIndexTick renders i as an index record.
func EncodeIndexTick(i IndexTick) string {
	var b recordBuilder
	b.str(i.Name).dec(i.Value).dec(i.Open).dec(i.High).dec(i.Low).dec(i.Close).
		int(i.Date).int(i.Time)
	return b.String()
}

// DecodeIndexTick parses an index record.
func DecodeIndexTick(msg string) (IndexTick, error) {
	f := splitRecord(msg)
	if len(f) < indexFieldCount {
		return IndexTick{}, errors.Wrapf(exception.ErrMalformedRecord, "index has %d fields", len(f))
	}

	i := IndexTick{Name: f.str(indexName)}
	var err error
	for pos, dst := range []*decimal.Decimal{
		indexValue: &i.Value,
		indexOpen:  &i.Open,
		indexHigh:  &i.High,
		indexLow:   &i.Low,
		indexClose: &i.Close,
	} {
		if dst == nil {
			continue
		}
		if *dst, err = f.dec(pos); err != nil {
			return IndexTick{}, err
		}
	}
	if i.Date, err = f.int(indexDate); err != nil {
		return IndexTick{}, err
	}
	if i.Time, err = f.int(indexTime); err != nil {
		return IndexTick{}, err
	}
	return i, nil
}
