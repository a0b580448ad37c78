package curve_test

import (
	"math"
	"testing"

	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/market"
)

func meta(vt curve.ValueType, s interp.Interpolator) curve.Metadata {
	return curve.Metadata{
		Name:         "TEST",
		ValueType:    vt,
		DayCount:     market.Act365F,
		Interpolator: s,
		Left:         interp.ExtrapolateFlat,
		Right:        interp.ExtrapolateFlat,
	}
}

func TestZeroRateCurve_DiscountFactor(t *testing.T) {
	t.Parallel()

	c, err := curve.New(meta(curve.ZeroRate, interp.Linear), []float64{1, 5}, []float64{0.02, 0.04})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got, want := c.DiscountFactor(3), math.Exp(-0.03*3); math.Abs(got-want) > 1e-15 {
		t.Fatalf("DiscountFactor mismatch: got %.15f want %.15f", got, want)
	}
	if got := c.ZeroRate(10); got != 0.04 {
		t.Fatalf("flat extrapolated zero rate mismatch: got %.6f", got)
	}
}

func TestDiscountFactorCurve_ZeroRateSensitivities(t *testing.T) {
	t.Parallel()

	x := []float64{0.5, 1, 2, 5}
	y := []float64{0.99, 0.975, 0.95, 0.86}
	c, err := curve.New(meta(curve.DiscountFactor, interp.LogNaturalCubicMonotone), x, y)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	const bump = 1e-7
	for _, tt := range []float64{0.2, 0.7, 1.5, 3.2} {
		sens := c.ZeroRateNodeSensitivities(tt)
		for j := range y {
			up := append([]float64(nil), y...)
			dn := append([]float64(nil), y...)
			up[j] += bump
			dn[j] -= bump
			cu, _ := c.WithParameters(up)
			cd, _ := c.WithParameters(dn)
			fd := (cu.ZeroRate(tt) - cd.ZeroRate(tt)) / (2 * bump)
			if math.Abs(sens[j]-fd) > 1e-6 {
				t.Fatalf("t=%.1f node %d mismatch: got %.10f fd %.10f", tt, j, sens[j], fd)
			}
		}
	}
	if c.DiscountFactor(0) != 1 {
		t.Fatalf("DiscountFactor(0) should be 1")
	}
}

func TestDiscountFactorCurve_AnchoredBeforeFirstNode(t *testing.T) {
	t.Parallel()

	c, err := curve.New(meta(curve.DiscountFactor, interp.LogLinear), []float64{0.25, 1}, []float64{0.99, 0.96})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	r0 := -math.Log(0.99) / 0.25
	for _, tt := range []float64{0.01, 0.1, 0.2} {
		if got, want := c.DiscountFactor(tt), math.Exp(-r0*tt); math.Abs(got-want) > 1e-15 {
			t.Fatalf("t=%.2f DiscountFactor mismatch: got %.15f want %.15f", tt, got, want)
		}
		if got := c.ZeroRate(tt); math.Abs(got-r0) > 1e-12 {
			t.Fatalf("t=%.2f ZeroRate mismatch: got %.12f want %.12f", tt, got, r0)
		}
	}
	if got := c.DiscountFactor(0.25); math.Abs(got-0.99) > 1e-15 {
		t.Fatalf("first node DiscountFactor mismatch: got %.15f want 0.99", got)
	}
}

func TestNew_RejectsLabelMismatch(t *testing.T) {
	t.Parallel()

	m := meta(curve.ZeroRate, interp.Linear)
	m.NodeLabels = []string{"1Y"}
	if _, err := curve.New(m, []float64{1, 2}, []float64{0.01, 0.02}); err == nil {
		t.Fatalf("expected label count error")
	}
}
