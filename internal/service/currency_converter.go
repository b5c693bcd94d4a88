package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateProvider supplies reference-currency multipliers keyed by uppercase
// currency code.
type RateProvider interface {
	Rate(code string) (decimal.Decimal, bool)
	Reference() string
}

var assumedRate = decimal.NewFromInt(1)

// CurrencyConverter converts amounts into the reference currency.
type CurrencyConverter struct {
	rates RateProvider
}

// NewCurrencyConverter creates a CurrencyConverter over the given rates.
func NewCurrencyConverter(rates RateProvider) *CurrencyConverter {
	return &CurrencyConverter{rates: rates}
}

// Convert returns amount expressed in the reference currency. The currency
// code is case-insensitive. A code missing from the table is converted at a
// rate of 1 and reported through rateAssumed; it is not an error. This treats
// an unknown currency as if it were already the reference currency, which can
// misprice foreign amounts.
func (c *CurrencyConverter) Convert(amount decimal.Decimal, currency string) (converted decimal.Decimal, rateAssumed bool) {
	rate, ok := c.rates.Rate(strings.ToUpper(currency))
	if !ok {
		return amount.Mul(assumedRate), true
	}
	return amount.Mul(rate), false
}

// ReferenceCurrency returns the code all amounts are converted into.
func (c *CurrencyConverter) ReferenceCurrency() string {
	return c.rates.Reference()
}
