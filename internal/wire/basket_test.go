package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelink/pkg/exception"
)

func TestBasketExactMembership(t *testing.T) {
	set := ParseBasket("AAPL,MSFT").Tokens()
	assert.True(t, set.Contains("AAPL"))
	assert.True(t, set.Contains("MSFT"))
	assert.False(t, set.Contains("AA"))
	assert.False(t, set.Contains("APL"))
	assert.False(t, set.Contains("AAPL,MSFT"))
}

func TestNewBasketDropsBlanksAndRepeats(t *testing.T) {
	b := NewBasket(" IBM", "", "IBM", "GE ")
	assert.Equal(t, Basket{"IBM", "GE"}, b)
	assert.Equal(t, "IBM,GE", b.String())
	assert.Empty(t, ParseBasket(""))
}

func TestSubscriptionPayload(t *testing.T) {
	payload := EncodeSubscription("client-1", NewBasket("IBM", "GE"))
	assert.Equal(t, "client-1+IBM,GE", payload)

	id, list, err := DecodeSubscription(payload)
	require.NoError(t, err)
	assert.Equal(t, "client-1", id)
	assert.Equal(t, Basket{"IBM", "GE"}, list)

	id, list, err = DecodeSubscription("client-1+")
	require.NoError(t, err)
	assert.Equal(t, "client-1", id)
	assert.Empty(t, list)

	_, _, err = DecodeSubscription("client-1")
	assert.ErrorIs(t, err, exception.ErrMalformedPayload)
}
