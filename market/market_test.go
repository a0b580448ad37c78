package market_test

import (
	"testing"

	"github.com/meenmo/ratekit/market"
)

func TestSwapConventionsAreValid(t *testing.T) {
	t.Parallel()

	for _, name := range market.SwapConventionNames() {
		c, err := market.LookupSwapConvention(name)
		if err != nil {
			t.Fatalf("LookupSwapConvention(%s) error: %v", name, err)
		}
		if err := c.FixedLeg.Validate(); err != nil {
			t.Fatalf("%s fixed leg invalid: %v", name, err)
		}
		if err := c.FloatLeg.Validate(); err != nil {
			t.Fatalf("%s float leg invalid: %v", name, err)
		}
		if c.FixedLeg.Currency != c.FloatLeg.Currency {
			t.Fatalf("%s legs disagree on currency: %s vs %s", name, c.FixedLeg.Currency, c.FloatLeg.Currency)
		}
	}
	if _, err := market.LookupSwapConvention("XXX"); err == nil {
		t.Fatalf("expected error for unknown convention")
	}
}

func TestCurrencyAmount_Rounded(t *testing.T) {
	t.Parallel()

	if got := market.NewCurrencyAmount(market.USD, 1234.5678).String(); got != "USD 1234.57" {
		t.Fatalf("USD rounding mismatch: got %s", got)
	}
	if got := market.NewCurrencyAmount(market.JPY, 1234.5678).String(); got != "JPY 1235" {
		t.Fatalf("JPY rounding mismatch: got %s", got)
	}
}

func TestMultiCurrencyAmount(t *testing.T) {
	t.Parallel()

	m := market.NewMultiCurrencyAmount(
		market.NewCurrencyAmount(market.USD, 10),
		market.NewCurrencyAmount(market.USD, 5),
	)
	single, err := m.Single()
	if err != nil {
		t.Fatalf("Single error: %v", err)
	}
	if single.Amount != 15 {
		t.Fatalf("sum mismatch: got %.2f want 15", single.Amount)
	}

	m2 := m.Plus(market.NewCurrencyAmount(market.EUR, 1))
	if _, err := m2.Single(); err == nil {
		t.Fatalf("expected error for two currencies")
	}
	if got := m.Currencies(); len(got) != 1 {
		t.Fatalf("Plus mutated receiver: %v", got)
	}
}

func TestParseTenor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want market.Tenor
		str  string
	}{
		{"3M", market.Tenor{Months: 3}, "3M"},
		{"10y", market.Tenor{Months: 120}, "10Y"},
		{"2W", market.Tenor{Days: 14}, "2W"},
		{"1D", market.Tenor{Days: 1}, "1D"},
		{"18M", market.Tenor{Months: 18}, "18M"},
	}
	for _, tc := range cases {
		got, err := market.ParseTenor(tc.in)
		if err != nil {
			t.Fatalf("ParseTenor(%s) error: %v", tc.in, err)
		}
		if got != tc.want || got.String() != tc.str {
			t.Fatalf("ParseTenor(%s) mismatch: got %+v (%s)", tc.in, got, got.String())
		}
	}
	if _, err := market.ParseTenor("5Q"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
}
