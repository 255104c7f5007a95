package domain

import "github.com/shopspring/decimal"

// Currency is one of the currencies accepted on submitted invoices.
// LYD is the base currency; every invoice amount is converted into it.
type Currency string

const (
	CurrencyLYD Currency = "LYD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyTND Currency = "TND"
)

// AllCurrencies lists every accepted currency.
var AllCurrencies = []Currency{CurrencyLYD, CurrencyUSD, CurrencyEUR, CurrencyTND}

// IsValid reports whether c is one of the accepted currencies.
func (c Currency) IsValid() bool {
	for _, cur := range AllCurrencies {
		if c == cur {
			return true
		}
	}
	return false
}

// DefaultExchangeRates holds the fallback conversion rates into the base
// currency. Rates are applied as given; keeping them current is not this
// service's concern.
var DefaultExchangeRates = map[Currency]decimal.Decimal{
	CurrencyLYD: decimal.NewFromFloat(1.0),
	CurrencyUSD: decimal.NewFromFloat(4.82),
	CurrencyEUR: decimal.NewFromFloat(5.21),
	CurrencyTND: decimal.NewFromFloat(1.54),
}

// DefaultRateFor returns the fallback exchange rate for c, or 1.0 when the
// currency is unknown.
func DefaultRateFor(c Currency) decimal.Decimal {
	if rate, ok := DefaultExchangeRates[c]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}
