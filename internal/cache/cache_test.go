package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuerier struct {
	highs, lows, avgs map[string]decimal.Decimal
	sizes             map[string]int
	calls             map[string]int
	err               error
}

func newCountingQuerier() *countingQuerier {
	return &countingQuerier{
		highs: map[string]decimal.Decimal{},
		lows:  map[string]decimal.Decimal{},
		avgs:  map[string]decimal.Decimal{},
		sizes: map[string]int{},
		calls: map[string]int{},
	}
}

func (q *countingQuerier) DayHigh(_ context.Context, s string) (decimal.Decimal, error) {
	q.calls["high"]++
	return q.highs[s], q.err
}

func (q *countingQuerier) DayLow(_ context.Context, s string) (decimal.Decimal, error) {
	q.calls["low"]++
	return q.lows[s], q.err
}

func (q *countingQuerier) AvgPrice(_ context.Context, s string) (decimal.Decimal, error) {
	q.calls["avg"]++
	return q.avgs[s], q.err
}

func (q *countingQuerier) PosSize(_ context.Context, s string) (int, error) {
	q.calls["size"]++
	return q.sizes[s], q.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDayHighMissQueriesOnce(t *testing.T) {
	q := newCountingQuerier()
	q.highs["IBM"] = dec("101.5")
	c := New(q)

	high, err := c.DayHigh(t.Context(), "IBM")
	require.NoError(t, err)
	assert.True(t, high.Equal(dec("101.5")))
	assert.Equal(t, 1, q.calls["high"])

	high, err = c.DayHigh(t.Context(), "IBM")
	require.NoError(t, err)
	assert.True(t, high.Equal(dec("101.5")))
	assert.Equal(t, 1, q.calls["high"], "a cached symbol must not trigger another round trip")
}

func TestDayLowZeroIsNotCached(t *testing.T) {
	q := newCountingQuerier()
	c := New(q)

	low, err := c.DayLow(t.Context(), "IBM")
	require.NoError(t, err)
	assert.True(t, low.IsZero())
	_, _ = c.DayLow(t.Context(), "IBM")
	assert.Equal(t, 2, q.calls["low"])
}

func TestObserveTradeSeedsThenUpdates(t *testing.T) {
	q := newCountingQuerier()
	q.highs["IBM"] = dec("12")
	c := New(q)

	require.NoError(t, c.ObserveTrade(t.Context(), "IBM", dec("11")))
	assert.Equal(t, 1, q.calls["high"])
	assert.Equal(t, 1, q.calls["low"])

	high, low, hasHigh, hasLow := c.Range("IBM")
	assert.True(t, hasHigh)
	assert.True(t, hasLow, "a trade makes the low known even when the server had none")
	assert.True(t, high.Equal(dec("12")))
	assert.True(t, low.Equal(dec("11")))

	require.NoError(t, c.ObserveTrade(t.Context(), "IBM", dec("13")))
	require.NoError(t, c.ObserveTrade(t.Context(), "IBM", dec("10.5")))
	assert.Equal(t, 1, q.calls["high"], "seeded symbols update in place")

	high, low, _, _ = c.Range("IBM")
	assert.True(t, high.Equal(dec("13")))
	assert.True(t, low.Equal(dec("10.5")))

	high, err := c.DayHigh(t.Context(), "IBM")
	require.NoError(t, err)
	assert.True(t, high.Equal(dec("13")))
	assert.Equal(t, 1, q.calls["high"])
}

func TestPositionCachedAndRefreshed(t *testing.T) {
	q := newCountingQuerier()
	q.avgs["IBM"] = dec("10")
	q.sizes["IBM"] = 100
	c := New(q)

	p, err := c.Position(t.Context(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Size)
	assert.True(t, p.AvgPrice.Equal(dec("10")))

	_, err = c.Position(t.Context(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, 1, q.calls["avg"])
	assert.Equal(t, 1, q.calls["size"])

	q.avgs["IBM"] = dec("11")
	q.sizes["IBM"] = 150
	p, err = c.RefreshPosition(t.Context(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, 150, p.Size)

	p, err = c.Position(t.Context(), "IBM")
	require.NoError(t, err)
	assert.True(t, p.AvgPrice.Equal(dec("11")))
	assert.Equal(t, 2, q.calls["avg"])
}

func TestQueryErrorsPropagate(t *testing.T) {
	q := newCountingQuerier()
	q.err = errors.New("peer gone")
	c := New(q)

	_, err := c.DayHigh(t.Context(), "IBM")
	assert.Error(t, err)
	_, err = c.Position(t.Context(), "IBM")
	assert.Error(t, err)
	assert.Error(t, c.ObserveTrade(t.Context(), "IBM", dec("1")))

	_, _, hasHigh, _ := c.Range("IBM")
	assert.False(t, hasHigh)
}
