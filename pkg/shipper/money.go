package shipper

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const defaultCurrencyScale = 2

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) String() string {
	return m.Amount.StringFixed(CurrencyScale(m.Currency)) + " " + m.Currency
}

// CurrencyScale returns the number of minor-unit digits of an ISO 4217 code.
func CurrencyScale(code string) int32 {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return defaultCurrencyScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// RoundMoney rounds amount to the precision of the currency.
func RoundMoney(amount decimal.Decimal, code string) Money {
	code = strings.ToUpper(code)
	return Money{Amount: amount.Round(CurrencyScale(code)), Currency: code}
}

// ParseMoney parses a decimal string returned by a carrier.
func ParseMoney(value, code string) (Money, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return Money{}, fmt.Errorf("invalid monetary value %q: %w", value, err)
	}
	return RoundMoney(amount, code), nil
}
