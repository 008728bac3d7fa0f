package wire

import (
	"math"

	"github.com/shopspring/decimal"

	"tradelink/pkg/exception"
)

const (
	packShift    = 16
	packFracMask = 1<<packShift - 1
	packScale    = 1000
	packDigits   = 3
)

var (
	minPackable = decimal.NewFromInt(math.MinInt16)
	maxPackable = decimal.NewFromInt(math.MaxInt16)
)

// Pack encodes a price as (whole << 16) | milli, where milli is the
// fractional part in thousandths. The fraction is scaled before it is
// truncated, so 10.25 packs to 10<<16 | 250.
//
// Negative prices keep a non-negative fraction: -1.5 is stored as whole -2
// and milli 500. Digits past the third decimal are floored. Zero packs to
// zero, which callers also read as "no data". The range check applies to the
// integer part before flooring, so -32768.5 packs.
func Pack(v decimal.Decimal) (int64, error) {
	if trunc := v.Truncate(0); trunc.LessThan(minPackable) || trunc.GreaterThan(maxPackable) {
		return 0, exception.ErrPriceOutOfRange
	}
	milli := v.Shift(packDigits).Floor().IntPart()
	whole := floorDiv(milli, packScale)
	frac := milli - whole*packScale
	return whole<<packShift | frac, nil
}

// Unpack reverses Pack.
func Unpack(p int64) decimal.Decimal {
	if p == 0 {
		return decimal.Zero
	}
	whole := p >> packShift
	frac := p & packFracMask
	return decimal.NewFromInt(whole).Add(decimal.New(frac, -packDigits))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
