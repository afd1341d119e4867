package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyAdd(t *testing.T) {
	a := Money{Amount: decimal.RequireFromString("10.50"), Currency: "USD"}
	b := Money{Amount: decimal.RequireFromString("5.25"), Currency: "USD"}

	sum := a.Add(b)
	assert.True(t, sum.Amount.Equal(decimal.RequireFromString("15.75")))
	assert.Equal(t, "USD", sum.Currency)
}

func TestMoneyAddInheritsCurrency(t *testing.T) {
	empty := Money{}
	priced := Money{Amount: decimal.RequireFromString("3.00"), Currency: "EUR"}

	sum := empty.Add(priced)
	assert.Equal(t, "EUR", sum.Currency)
	assert.True(t, sum.Amount.Equal(priced.Amount))
}

func TestMoneyIsZero(t *testing.T) {
	assert.True(t, Money{}.IsZero())
	assert.False(t, Money{Amount: decimal.RequireFromString("0.01")}.IsZero())
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	in := Money{Amount: decimal.RequireFromString("19.99"), Currency: "USD"}

	payload, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"19.99","currency":"USD"}`, string(payload))

	var out Money
	require.NoError(t, json.Unmarshal(payload, &out))
	assert.True(t, out.Amount.Equal(in.Amount))
	assert.Equal(t, in.Currency, out.Currency)
}
