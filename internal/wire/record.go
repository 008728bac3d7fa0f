package wire

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tradelink/internal/errors"
	"tradelink/pkg/exception"
)

const fieldSep = ","

// fields is a positional view over one delimited record.
type fields []string

func splitRecord(msg string) fields {
	return strings.Split(msg, fieldSep)
}

func (f fields) str(i int) string {
	if i >= len(f) {
		return ""
	}
	return f[i]
}

func (f fields) int(i int) (int, error) {
	s := strings.TrimSpace(f.str(i))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(exception.ErrMalformedRecord, "field %d: %q", i, s)
	}
	return n, nil
}

func (f fields) dec(i int) (decimal.Decimal, error) {
	s := strings.TrimSpace(f.str(i))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(exception.ErrMalformedRecord, "field %d: %q", i, s)
	}
	return d, nil
}

func (f fields) bool(i int) (bool, error) {
	s := strings.TrimSpace(f.str(i))
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Wrapf(exception.ErrMalformedRecord, "field %d: %q", i, s)
	}
	return b, nil
}

// recordBuilder appends fields in wire order.
type recordBuilder struct {
	sb strings.Builder
	n  int
}

func (b *recordBuilder) str(s string) *recordBuilder {
	if b.n > 0 {
		b.sb.WriteString(fieldSep)
	}
	b.sb.WriteString(s)
	b.n++
	return b
}

func (b *recordBuilder) int(n int) *recordBuilder {
	return b.str(strconv.Itoa(n))
}

func (b *recordBuilder) dec(d decimal.Decimal) *recordBuilder {
	return b.str(d.String())
}

func (b *recordBuilder) bool(v bool) *recordBuilder {
	return b.str(strconv.FormatBool(v))
}

func (b *recordBuilder) String() string {
	return b.sb.String()
}

// firstField returns the leading field of a record without splitting all of it.
func firstField(msg string) string {
	head, _, _ := strings.Cut(msg, fieldSep)
	return head
}
