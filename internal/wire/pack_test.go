package wire

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/pkg/exception"
)

func TestPackRoundTrip(t *testing.T) {
	testCases := []string{
		"0", "1", "10.25", "11", "13.001", "99.999", "0.001",
		"32767.999", "-1.5", "-0.001", "-32768", "-12.345", "640",
		"-32768.5", "-32768.001", "-32768.999",
	}

	for _, tc := range testCases {
		t.Run(tc, func(t *testing.T) {
			v := decimal.RequireFromString(tc)
			packed, err := Pack(v)
			require.NoError(t, err)
			got := Unpack(packed)
			assert.Truef(t, got.Equal(v), "round trip mismatch! should be %s but got %s", v, got)
		})
	}
}

func TestPackKeepsFraction(t *testing.T) {
	packed, err := Pack(decimal.RequireFromString("10.25"))
	require.NoError(t, err)
	assert.Equal(t, int64(10<<16|250), packed)
	assert.Equal(t, int64(250), packed&0xFFFF, "fraction must be scaled before truncation")
}

func TestPackZeroIsZero(t *testing.T) {
	packed, err := Pack(decimal.Zero)
	require.NoError(t, err)
	assert.Zero(t, packed)
	assert.True(t, Unpack(0).IsZero())
}

func TestPackFloorsExtraDigits(t *testing.T) {
	packed, err := Pack(decimal.RequireFromString("1.23456"))
	require.NoError(t, err)
	assert.True(t, Unpack(packed).Equal(decimal.RequireFromString("1.234")))
}

func TestPackOutOfRange(t *testing.T) {
	for _, tc := range []string{"32768", "-32769", "100000.5", "-32769.5", "92233720368547758.08"} {
		_, err := Pack(decimal.RequireFromString(tc))
		assert.ErrorIsf(t, err, exception.ErrPriceOutOfRange, "value %s", tc)
	}
}

func TestMessageTypeCodes(t *testing.T) {
	assert.Equal(t, MessageType(26), GetSize)
	assert.Equal(t, MessageType(111), RegisterIndex)
	assert.Equal(t, MessageType(999), ConnectorMissing)
	assert.Equal(t, "TICKNOTIFY", TickNotify.String())
	assert.Equal(t, "MessageType(55)", MessageType(55).String())
	assert.False(t, MessageType(55).Known())
}
