package sensitivity_test

import (
	"math"
	"testing"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/sensitivity"
)

func TestBuilder_MonoidLaws(t *testing.T) {
	t.Parallel()

	a := sensitivity.ZeroRatePoint(market.USD, 1.0, 10)
	b := sensitivity.ZeroRatePoint(market.USD, 2.0, -3).
		CombinedWith(sensitivity.ForwardRatePoint(market.USDLIBOR3M, market.USD, 0.25, 0.5, 0.2528, 7))
	c := sensitivity.ZeroRatePoint(market.USD, 1.0, 2.5)

	if !a.CombinedWith(b).EqualWithTolerance(b.CombinedWith(a), 0) {
		t.Fatalf("combine is not commutative")
	}
	left := a.CombinedWith(b).CombinedWith(c)
	right := a.CombinedWith(b.CombinedWith(c))
	if !left.EqualWithTolerance(right, 1e-15) {
		t.Fatalf("combine is not associative")
	}
	if !a.CombinedWith(sensitivity.None()).EqualWithTolerance(a, 0) {
		t.Fatalf("None is not an identity")
	}
	key := sensitivity.Key{Kind: sensitivity.ZeroRate, Currency: market.USD, Start: 1.0}
	if got := left.Amount(key); got != 12.5 {
		t.Fatalf("amount at shared key mismatch: got %.4f want 12.5", got)
	}
	if left.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", left.Len())
	}
}

func TestBuilder_ScaleDistributes(t *testing.T) {
	t.Parallel()

	a := sensitivity.ZeroRatePoint(market.EUR, 1.0, 4)
	b := sensitivity.ZeroRatePoint(market.EUR, 3.0, -2)
	lhs := a.CombinedWith(b).MultipliedBy(-1.5)
	rhs := a.MultipliedBy(-1.5).CombinedWith(b.MultipliedBy(-1.5))
	if !lhs.EqualWithTolerance(rhs, 1e-15) {
		t.Fatalf("scale does not distribute over combine")
	}
	if a.Amount(sensitivity.Key{Kind: sensitivity.ZeroRate, Currency: market.EUR, Start: 1.0}) != 4 {
		t.Fatalf("MultipliedBy mutated receiver")
	}
}

func TestBuilder_BuildIsSorted(t *testing.T) {
	t.Parallel()

	b := sensitivity.Sum(
		sensitivity.ZeroRatePoint(market.USD, 5.0, 1),
		sensitivity.ZeroRatePoint(market.USD, 0.5, 1),
		sensitivity.ForwardRatePoint(market.SOFR, market.USD, 0.1, 0.2, 0.1, 1),
	)
	pts := b.Build()
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[0].Key.Start != 0.5 || pts[1].Key.Start != 5.0 || pts[2].Key.Kind != sensitivity.ForwardRate {
		t.Fatalf("unexpected order: %+v", pts)
	}
}

func TestCurveSensitivities_TotalAndCombine(t *testing.T) {
	t.Parallel()

	var s sensitivity.CurveSensitivities
	s.Accumulate("USD-DSC", market.USD, []float64{1, 2}, []float64{0.25, 0.75}, 4)
	s.Accumulate("USD-DSC", market.USD, []float64{1, 2}, []float64{1, 0}, 1)
	if got := s.Total(); math.Abs(got-5) > 1e-15 {
		t.Fatalf("Total mismatch: got %.12f want 5", got)
	}

	other := sensitivity.CurveSensitivities{{Curve: "USD-3M", Currency: market.USD, Nodes: []float64{1}, Sensitivity: []float64{2}}}
	merged, err := s.CombinedWith(other)
	if err != nil {
		t.Fatalf("CombinedWith error: %v", err)
	}
	if len(merged) != 2 || merged[0].Curve != "USD-3M" {
		t.Fatalf("unexpected merge result: %+v", merged)
	}
	if got := merged.MultipliedBy(1e-4).Total(); math.Abs(got-7e-4) > 1e-15 {
		t.Fatalf("scaled total mismatch: got %.12e", got)
	}
	dsc, ok := merged.Find("USD-DSC", market.USD)
	if !ok || math.Abs(dsc.Sensitivity[0]-2) > 1e-15 || math.Abs(dsc.Sensitivity[1]-3) > 1e-15 {
		t.Fatalf("Find mismatch: %+v", dsc)
	}
}
