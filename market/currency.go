package market

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
)

// MinorUnits returns the number of decimal places used when reporting amounts.
func (c Currency) MinorUnits() int32 {
	switch c {
	case JPY:
		return 0
	default:
		return 2
	}
}

// CurrencyAmount is an amount in a single currency.
type CurrencyAmount struct {
	Currency Currency
	Amount   float64
}

// NewCurrencyAmount builds a CurrencyAmount.
func NewCurrencyAmount(ccy Currency, amount float64) CurrencyAmount {
	return CurrencyAmount{Currency: ccy, Amount: amount}
}

// MultipliedBy scales the amount.
func (a CurrencyAmount) MultipliedBy(f float64) CurrencyAmount {
	return CurrencyAmount{Currency: a.Currency, Amount: a.Amount * f}
}

// Plus adds an amount in the same currency.
func (a CurrencyAmount) Plus(b CurrencyAmount) (CurrencyAmount, error) {
	if a.Currency != b.Currency {
		return CurrencyAmount{}, fmt.Errorf("CurrencyAmount.Plus: currency mismatch %s vs %s", a.Currency, b.Currency)
	}
	return CurrencyAmount{Currency: a.Currency, Amount: a.Amount + b.Amount}, nil
}

// Rounded returns the amount rounded to the currency's minor units.
func (a CurrencyAmount) Rounded() decimal.Decimal {
	return decimal.NewFromFloat(a.Amount).Round(a.Currency.MinorUnits())
}

func (a CurrencyAmount) String() string {
	return string(a.Currency) + " " + a.Rounded().StringFixed(a.Currency.MinorUnits())
}

// MultiCurrencyAmount holds at most one amount per currency. It is immutable.
type MultiCurrencyAmount struct {
	amounts map[Currency]float64
}

// NewMultiCurrencyAmount sums the given amounts by currency.
func NewMultiCurrencyAmount(amounts ...CurrencyAmount) MultiCurrencyAmount {
	m := MultiCurrencyAmount{amounts: make(map[Currency]float64, len(amounts))}
	for _, a := range amounts {
		m.amounts[a.Currency] += a.Amount
	}
	return m
}

// Plus returns a new MultiCurrencyAmount with a added.
func (m MultiCurrencyAmount) Plus(a CurrencyAmount) MultiCurrencyAmount {
	out := MultiCurrencyAmount{amounts: make(map[Currency]float64, len(m.amounts)+1)}
	for c, v := range m.amounts {
		out.amounts[c] = v
	}
	out.amounts[a.Currency] += a.Amount
	return out
}

// Amount returns the amount held in ccy (zero when absent).
func (m MultiCurrencyAmount) Amount(ccy Currency) CurrencyAmount {
	return CurrencyAmount{Currency: ccy, Amount: m.amounts[ccy]}
}

// Currencies returns the held currencies in sorted order.
func (m MultiCurrencyAmount) Currencies() []Currency {
	out := make([]Currency, 0, len(m.amounts))
	for c := range m.amounts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Single returns the only amount held, failing when there are zero or several.
func (m MultiCurrencyAmount) Single() (CurrencyAmount, error) {
	if len(m.amounts) != 1 {
		return CurrencyAmount{}, fmt.Errorf("MultiCurrencyAmount.Single: expected one currency, got %d", len(m.amounts))
	}
	for c, v := range m.amounts {
		return CurrencyAmount{Currency: c, Amount: v}, nil
	}
	return CurrencyAmount{}, nil
}
