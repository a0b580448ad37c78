package swap_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/swap"
)

var (
	valDate  = date(2024, 3, 15)
	nodes    = []float64{0.25, 1, 2, 5, 10}
	dscRates = []float64{0.050, 0.048, 0.045, 0.041, 0.040}
	fwdRates = []float64{0.053, 0.051, 0.048, 0.044, 0.043}
)

func zeroCurve(t *testing.T, name string, y []float64) *curve.Curve {
	t.Helper()
	c, err := curve.New(curve.Metadata{
		Name:         name,
		ValueType:    curve.ZeroRate,
		DayCount:     market.Act365F,
		Interpolator: interp.NaturalCubic,
		Left:         interp.ExtrapolateFlat,
		Right:        interp.ExtrapolateFlat,
	}, nodes, y)
	if err != nil {
		t.Fatalf("curve.New error: %v", err)
	}
	return c
}

func provider(t *testing.T, dsc, fwd []float64) *rates.Provider {
	t.Helper()
	p, err := rates.New(rates.Config{
		ValuationDate: valDate,
		Curves:        []*curve.Curve{zeroCurve(t, "USD-SOFR", dsc), zeroCurve(t, "USD-LIBOR-3M", fwd)},
		Discount:      map[market.Currency]string{market.USD: "USD-SOFR"},
		Forward:       map[market.Index]string{market.SOFR: "USD-SOFR", market.USDLIBOR3M: "USD-LIBOR-3M"},
	})
	if err != nil {
		t.Fatalf("rates.New error: %v", err)
	}
	return p
}

func expand(t *testing.T, conv string, dir swap.PayReceive, fixedRate float64) swap.ExpandedSwap {
	t.Helper()
	s, err := swap.FixedFloatTerms{
		Convention: mustConvention(t, conv),
		Direction:  dir,
		StartDate:  date(2024, 3, 19),
		EndDate:    date(2029, 3, 19),
		Notional:   1e6,
		FixedRate:  fixedRate,
	}.Expand()
	if err != nil {
		t.Fatalf("Expand error: %v", err)
	}
	return s
}

func TestProductPricer_ParRateZeroesValue(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	p := provider(t, dscRates, fwdRates)
	for _, conv := range []string{"USD-FIXED-1Y-SOFR-OIS", "USD-FIXED-6M-LIBOR-3M"} {
		for _, dir := range []swap.PayReceive{swap.Pay, swap.Receive} {
			par, err := pp.ParRate(expand(t, conv, dir, 0.04), p)
			if err != nil {
				t.Fatalf("%s ParRate error: %v", conv, err)
			}
			pv, err := pp.PresentValue(expand(t, conv, dir, par), p)
			if err != nil {
				t.Fatalf("%s PresentValue error: %v", conv, err)
			}
			if got := pv.Amount(market.USD).Amount; math.Abs(got) > 1e-6 {
				t.Fatalf("%s/%s PV at par mismatch: got %.10f want 0", conv, dir, got)
			}
		}
	}
}

func TestProductPricer_ParRateIndependentOfDirection(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	p := provider(t, dscRates, fwdRates)
	payer, err := pp.ParRate(expand(t, "USD-FIXED-6M-LIBOR-3M", swap.Pay, 0.04), p)
	if err != nil {
		t.Fatalf("ParRate error: %v", err)
	}
	receiver, err := pp.ParRate(expand(t, "USD-FIXED-6M-LIBOR-3M", swap.Receive, 0.01), p)
	if err != nil {
		t.Fatalf("ParRate error: %v", err)
	}
	if math.Abs(payer-receiver) > 1e-14 {
		t.Fatalf("ParRate mismatch: payer %.14f receiver %.14f", payer, receiver)
	}
	if payer < 0.03 || payer > 0.06 {
		t.Fatalf("ParRate out of range: %.6f", payer)
	}
}

func TestLegPricer_CouponEquivalentAndParSpread(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	lp := pp.LegPricer()
	p := provider(t, dscRates, fwdRates)
	s := expand(t, "USD-FIXED-1Y-SOFR-OIS", swap.Receive, 0.0375)

	fixed, err := s.FixedLeg()
	if err != nil {
		t.Fatalf("FixedLeg error: %v", err)
	}
	pvbp, err := lp.Pvbp(fixed, p)
	if err != nil {
		t.Fatalf("Pvbp error: %v", err)
	}
	if pvbp <= 0 {
		t.Fatalf("receive-fixed pvbp should be positive, got %.6f", pvbp)
	}
	ce, err := lp.CouponEquivalent(fixed, p, pvbp)
	if err != nil {
		t.Fatalf("CouponEquivalent error: %v", err)
	}
	if math.Abs(ce-0.0375) > 1e-14 {
		t.Fatalf("CouponEquivalent mismatch: got %.14f want 0.0375", ce)
	}

	par, err := pp.ParRate(s, p)
	if err != nil {
		t.Fatalf("ParRate error: %v", err)
	}
	spread, err := pp.ParSpread(s, p)
	if err != nil {
		t.Fatalf("ParSpread error: %v", err)
	}
	if math.Abs(spread-(par-0.0375)) > 1e-12 {
		t.Fatalf("ParSpread mismatch: got %.12f want %.12f", spread, par-0.0375)
	}
}

// bumpedDiff returns the central difference of f over node j of the named curve.
func bumpedDiff(t *testing.T, curveName string, j int, f func(*rates.Provider) float64) float64 {
	t.Helper()
	const bump = 1e-7
	up := func(base []float64, sign float64) []float64 {
		out := append([]float64(nil), base...)
		out[j] += sign * bump
		return out
	}
	var pu, pd *rates.Provider
	if curveName == "USD-SOFR" {
		pu, pd = provider(t, up(dscRates, 1), fwdRates), provider(t, up(dscRates, -1), fwdRates)
	} else {
		pu, pd = provider(t, dscRates, up(fwdRates, 1)), provider(t, dscRates, up(fwdRates, -1))
	}
	return (f(pu) - f(pd)) / (2 * bump)
}

func TestProductPricer_PresentValueSensitivityMatchesBump(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	p := provider(t, dscRates, fwdRates)
	s := expand(t, "USD-FIXED-6M-LIBOR-3M", swap.Pay, 0.045)

	pts, err := pp.PresentValueSensitivity(s, p)
	if err != nil {
		t.Fatalf("PresentValueSensitivity error: %v", err)
	}
	sens, err := p.ParameterSensitivity(pts)
	if err != nil {
		t.Fatalf("ParameterSensitivity error: %v", err)
	}
	pv := func(q *rates.Provider) float64 {
		v, err := pp.PresentValue(s, q)
		if err != nil {
			t.Fatalf("PresentValue error: %v", err)
		}
		return v.Amount(market.USD).Amount
	}
	for _, name := range []string{"USD-SOFR", "USD-LIBOR-3M"} {
		cs, ok := sens.Find(name, market.USD)
		if !ok {
			t.Fatalf("missing sensitivity for %s", name)
		}
		for j := range nodes {
			fd := bumpedDiff(t, name, j, pv)
			if math.Abs(cs.Sensitivity[j]-fd) > 1e-2 {
				t.Fatalf("%s node %d mismatch: got %.6f fd %.6f", name, j, cs.Sensitivity[j], fd)
			}
		}
	}
}

func TestProductPricer_ParRateSensitivityMatchesBump(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	p := provider(t, dscRates, fwdRates)
	s := expand(t, "USD-FIXED-6M-LIBOR-3M", swap.Receive, 0.045)

	pts, err := pp.ParRateSensitivity(s, p)
	if err != nil {
		t.Fatalf("ParRateSensitivity error: %v", err)
	}
	sens, err := p.ParameterSensitivity(pts)
	if err != nil {
		t.Fatalf("ParameterSensitivity error: %v", err)
	}
	par := func(q *rates.Provider) float64 {
		v, err := pp.ParRate(s, q)
		if err != nil {
			t.Fatalf("ParRate error: %v", err)
		}
		return v
	}
	for _, name := range []string{"USD-SOFR", "USD-LIBOR-3M"} {
		cs, ok := sens.Find(name, market.USD)
		if !ok {
			t.Fatalf("missing sensitivity for %s", name)
		}
		for j := range nodes {
			fd := bumpedDiff(t, name, j, par)
			if math.Abs(cs.Sensitivity[j]-fd) > 1e-6 {
				t.Fatalf("%s node %d mismatch: got %.10f fd %.10f", name, j, cs.Sensitivity[j], fd)
			}
		}
	}
}

func TestLegPricer_PastPaymentsExcluded(t *testing.T) {
	t.Parallel()

	lp := swap.NewLegPricer()
	p := provider(t, dscRates, fwdRates)
	leg, err := swap.ExpandLeg(swap.LegTerms{
		Convention: mustConvention(t, "USD-FIXED-6M-LIBOR-3M").FixedLeg,
		PayReceive: swap.Receive,
		StartDate:  date(2023, 3, 15),
		EndDate:    date(2026, 3, 16),
		Notional:   1e6,
		FixedRate:  0.05,
	})
	if err != nil {
		t.Fatalf("ExpandLeg error: %v", err)
	}
	want := 0.0
	for _, per := range leg.Periods {
		if per.PaymentDate.Before(valDate) {
			continue
		}
		df, _ := p.DiscountFactor(market.USD, per.PaymentDate)
		want += per.Notional * per.YearFraction * 0.05 * df
	}
	got, err := lp.PresentValue(leg, p)
	if err != nil {
		t.Fatalf("PresentValue error: %v", err)
	}
	if math.Abs(got.Amount-want) > 1e-8 {
		t.Fatalf("PresentValue mismatch: got %.10f want %.10f", got.Amount, want)
	}

	// A payment on the valuation date is still owed and discounts at 1.
	today := swap.ExpandedLeg{
		Type:     market.LegFixed,
		Currency: market.USD,
		Periods: []swap.RatePeriod{{
			StartDate: date(2023, 9, 15), EndDate: valDate, PaymentDate: valDate,
			YearFraction: 0.5, Currency: market.USD, Notional: 1e6,
			Rate: swap.FixedRateComputation(0.04),
		}},
	}
	got, err = lp.PresentValue(today, p)
	if err != nil {
		t.Fatalf("PresentValue error: %v", err)
	}
	if math.Abs(got.Amount-20000) > 1e-9 {
		t.Fatalf("same-day payment mismatch: got %.10f want 20000", got.Amount)
	}
}

func TestExpandLeg_NotionalExchange(t *testing.T) {
	t.Parallel()

	conv := mustConvention(t, "EUR-FIXED-1Y-ESTR-OIS").FixedLeg
	conv.NotionalExchange = true
	leg, err := swap.ExpandLeg(swap.LegTerms{
		Convention: conv,
		PayReceive: swap.Pay,
		StartDate:  date(2024, 3, 19),
		EndDate:    date(2026, 3, 19),
		Notional:   5e6,
		FixedRate:  0.03,
	})
	if err != nil {
		t.Fatalf("ExpandLeg error: %v", err)
	}
	if len(leg.Events) != 2 {
		t.Fatalf("event count mismatch: got %d want 2", len(leg.Events))
	}
	if leg.Events[0].Amount != 5e6 || leg.Events[1].Amount != -5e6 {
		t.Fatalf("event amounts mismatch: got %.2f, %.2f", leg.Events[0].Amount, leg.Events[1].Amount)
	}
	for _, per := range leg.Periods {
		if per.Notional != -5e6 {
			t.Fatalf("paid leg notional should be negative, got %.2f", per.Notional)
		}
	}
}

func TestProductPricer_RejectsInvalidProducts(t *testing.T) {
	t.Parallel()

	pp := swap.DefaultProductPricer()
	p := provider(t, dscRates, fwdRates)
	s := expand(t, "USD-FIXED-1Y-SOFR-OIS", swap.Pay, 0.04)

	twoFixed := swap.ExpandedSwap{Legs: []swap.ExpandedLeg{s.Legs[0], s.Legs[0]}}
	if _, err := pp.ParRate(twoFixed, p); !errors.Is(err, swap.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct for two fixed legs, got %v", err)
	}
	noFixed := swap.ExpandedSwap{Legs: []swap.ExpandedLeg{s.Legs[1]}}
	if _, err := pp.ParRate(noFixed, p); !errors.Is(err, swap.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct for no fixed leg, got %v", err)
	}
	xccy := s
	xccy.Legs = append([]swap.ExpandedLeg(nil), s.Legs...)
	xccy.Legs[1].Currency = market.EUR
	if !xccy.IsCrossCurrency() {
		t.Fatalf("expected cross-currency swap")
	}
	if _, err := pp.ParRate(xccy, p); !errors.Is(err, swap.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct for cross-currency swap, got %v", err)
	}
}
