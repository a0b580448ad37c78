package swaption_test

import (
	"math"
	"testing"

	"github.com/meenmo/ratekit/swaption"
)

func TestGreeks_MatchFiniteDifferences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		model swaption.Model
		vol   float64
	}{
		{swaption.Black, 0.25},
		{swaption.Normal, 0.008},
	}
	const (
		expiry  = 1.5
		strike  = 0.045
		forward = 0.04
		h       = 1e-6
	)
	for _, tc := range cases {
		for _, pc := range []swaption.PutCall{swaption.Call, swaption.Put} {
			g := tc.model.Evaluate(pc, expiry, strike, forward, tc.vol)
			price := func(T, K, F, v float64) float64 { return tc.model.Evaluate(pc, T, K, F, v).Price }

			delta := (price(expiry, strike, forward+h, tc.vol) - price(expiry, strike, forward-h, tc.vol)) / (2 * h)
			if math.Abs(g.Delta-delta) > 1e-6 {
				t.Fatalf("%s/%s delta mismatch: got %.10f fd %.10f", tc.model, pc, g.Delta, delta)
			}
			gamma := (tc.model.Evaluate(pc, expiry, strike, forward+h, tc.vol).Delta -
				tc.model.Evaluate(pc, expiry, strike, forward-h, tc.vol).Delta) / (2 * h)
			if math.Abs(g.Gamma-gamma) > 1e-4*math.Abs(gamma) {
				t.Fatalf("%s/%s gamma mismatch: got %.8f fd %.8f", tc.model, pc, g.Gamma, gamma)
			}
			vega := (price(expiry, strike, forward, tc.vol+h) - price(expiry, strike, forward, tc.vol-h)) / (2 * h)
			if math.Abs(g.Vega-vega) > 1e-6 {
				t.Fatalf("%s/%s vega mismatch: got %.10f fd %.10f", tc.model, pc, g.Vega, vega)
			}
			theta := -(price(expiry+h, strike, forward, tc.vol) - price(expiry-h, strike, forward, tc.vol)) / (2 * h)
			if math.Abs(g.Theta-theta) > 1e-8 {
				t.Fatalf("%s/%s theta mismatch: got %.12f fd %.12f", tc.model, pc, g.Theta, theta)
			}
		}
	}
}

func TestGreeks_PutCallParity(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		model swaption.Model
		vol   float64
	}{{swaption.Black, 0.3}, {swaption.Normal, 0.01}} {
		for _, strike := range []float64{0.02, 0.04, 0.06} {
			c := tc.model.Evaluate(swaption.Call, 2, strike, 0.04, tc.vol)
			p := tc.model.Evaluate(swaption.Put, 2, strike, 0.04, tc.vol)
			if got, want := c.Price-p.Price, 0.04-strike; math.Abs(got-want) > 1e-15 {
				t.Fatalf("%s parity mismatch at K=%.2f: got %.15f want %.15f", tc.model, strike, got, want)
			}
			if math.Abs(c.Delta-p.Delta-1) > 1e-15 {
				t.Fatalf("%s delta parity mismatch at K=%.2f", tc.model, strike)
			}
		}
	}
}

func TestGreeks_ZeroVolatilityIsIntrinsic(t *testing.T) {
	t.Parallel()

	for _, m := range []swaption.Model{swaption.Black, swaption.Normal} {
		g := m.Evaluate(swaption.Call, 1, 0.03, 0.04, 0)
		if math.Abs(g.Price-0.01) > 1e-15 || g.Delta != 1 || g.Gamma != 0 || g.Vega != 0 {
			t.Fatalf("%s zero-vol call mismatch: %+v", m, g)
		}
		g = m.Evaluate(swaption.Put, 0, 0.03, 0.04, 0.2)
		if g.Price != 0 || g.Delta != 0 {
			t.Fatalf("%s expiring OTM put mismatch: %+v", m, g)
		}
	}
}
