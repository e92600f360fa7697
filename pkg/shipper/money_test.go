package shipper_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/ups/pkg/shipper"
)

func TestCurrencyScale(t *testing.T) {
	assert.Equal(t, int32(2), shipper.CurrencyScale("USD"))
	assert.Equal(t, int32(2), shipper.CurrencyScale("eur"))
	assert.Equal(t, int32(0), shipper.CurrencyScale("JPY"))
	assert.Equal(t, int32(3), shipper.CurrencyScale("KWD"))
	assert.Equal(t, int32(2), shipper.CurrencyScale("not-a-currency"))
}

func TestParseMoney(t *testing.T) {
	m, err := shipper.ParseMoney(" 12.505 ", "usd")

	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
	assert.True(t, decimal.RequireFromString("12.51").Equal(m.Amount))
	assert.Equal(t, "12.51 USD", m.String())
}

func TestParseMoney_Invalid(t *testing.T) {
	_, err := shipper.ParseMoney("twelve", "USD")
	assert.Error(t, err)

	_, err = shipper.ParseMoney("", "USD")
	assert.Error(t, err)
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, shipper.Money{Currency: "USD"}.IsZero())
	assert.False(t, shipper.RoundMoney(decimal.NewFromInt(1), "USD").IsZero())
}
