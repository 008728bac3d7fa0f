package state

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/internal/wire"
)

func fill(symbol string, buy bool, size int, price string) wire.Trade {
	return wire.Trade{Symbol: symbol, Buy: buy, Size: size, Price: decimal.RequireFromString(price)}
}

func TestPositionBookWeightedAverage(t *testing.T) {
	book := NewPositionBook()
	book.ApplyFill(fill("IBM", true, 100, "10.00"))
	pos := book.ApplyFill(fill("IBM", true, 50, "13.00"))

	assert.Equal(t, 150, pos.Size)
	assert.Truef(t, pos.AvgPrice.Equal(decimal.NewFromInt(11)), "avg price should be 11 but got %s", pos.AvgPrice)

	stored, ok := book.Position("IBM")
	require.True(t, ok)
	assert.Equal(t, pos, stored)
}

func TestPositionAdjust(t *testing.T) {
	testCases := []struct {
		desc      string
		fills     []wire.Trade
		wantSize  int
		wantPrice string
	}{
		{
			"single short",
			[]wire.Trade{fill("GE", false, 200, "8.5")},
			-200, "8.5",
		},
		{
			"reduce keeps average",
			[]wire.Trade{fill("GE", true, 100, "10"), fill("GE", false, 40, "12")},
			60, "10",
		},
		{
			"flat clears average",
			[]wire.Trade{fill("GE", true, 100, "10"), fill("GE", false, 100, "12")},
			0, "0",
		},
		{
			"flip restarts at fill price",
			[]wire.Trade{fill("GE", true, 100, "10"), fill("GE", false, 150, "12")},
			-50, "12",
		},
		{
			"add to short",
			[]wire.Trade{fill("GE", false, 100, "10"), fill("GE", false, 100, "11")},
			-200, "10.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			var p Position
			for _, f := range tc.fills {
				p = p.Adjust(f)
			}
			assert.Equal(t, tc.wantSize, p.Size)
			want := decimal.RequireFromString(tc.wantPrice)
			assert.Truef(t, p.AvgPrice.Equal(want), "avg price should be %s but got %s", want, p.AvgPrice)
		})
	}
}

func TestPositionBookUnknownSymbol(t *testing.T) {
	book := NewPositionBook()
	_, ok := book.Position("NOPE")
	assert.False(t, ok)
	assert.Zero(t, book.Count())
}

func TestRangeBookMonotonic(t *testing.T) {
	book := NewRangeBook()
	_, ok := book.High("IBM")
	assert.False(t, ok)

	for _, p := range []string{"10", "12", "9", "11", "9.5"} {
		book.Observe("IBM", decimal.RequireFromString(p))
	}

	high, ok := book.High("IBM")
	require.True(t, ok)
	low, _ := book.Low("IBM")
	assert.True(t, high.Equal(decimal.NewFromInt(12)))
	assert.True(t, low.Equal(decimal.NewFromInt(9)))
}

func TestSnapshotWriteRead(t *testing.T) {
	book := NewPositionBook()
	book.ApplyFill(fill("IBM", true, 100, "10"))
	book.ApplyFill(fill("GE", false, 20, "8.25"))

	snap := book.Snapshot()
	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "GE", snap.Positions[0].Symbol)

	path := filepath.Join(t.TempDir(), "out", "positions.json")
	require.NoError(t, WriteSnapshot(path, snap))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.NoError(t, CompareSnapshots(snap, loaded))

	book.ApplyFill(fill("IBM", true, 1, "10"))
	assert.Error(t, CompareSnapshots(snap, book.Snapshot()))
}
