package swaption

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Greeks are an undiscounted option price and its derivatives. Theta is minus
// the derivative with respect to time to expiry.
type Greeks struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
}

func intrinsic(pc PutCall, strike, forward float64) Greeks {
	switch {
	case pc == Call && forward > strike:
		return Greeks{Price: forward - strike, Delta: 1}
	case pc == Put && forward < strike:
		return Greeks{Price: strike - forward, Delta: -1}
	default:
		return Greeks{}
	}
}

// BlackGreeks prices an option on a lognormal forward.
func BlackGreeks(pc PutCall, expiry, strike, forward, vol float64) Greeks {
	sqrtT := math.Sqrt(math.Max(expiry, 0))
	sd := vol * sqrtT
	if sd == 0 || strike <= 0 || forward <= 0 {
		return intrinsic(pc, strike, forward)
	}
	d1 := (math.Log(forward/strike) + 0.5*sd*sd) / sd
	d2 := d1 - sd
	n := distuv.UnitNormal.Prob(d1)
	g := Greeks{
		Gamma: n / (forward * sd),
		Vega:  forward * n * sqrtT,
		Theta: -forward * n * vol / (2 * sqrtT),
	}
	if pc == Call {
		g.Price = forward*distuv.UnitNormal.CDF(d1) - strike*distuv.UnitNormal.CDF(d2)
		g.Delta = distuv.UnitNormal.CDF(d1)
	} else {
		g.Price = strike*distuv.UnitNormal.CDF(-d2) - forward*distuv.UnitNormal.CDF(-d1)
		g.Delta = distuv.UnitNormal.CDF(d1) - 1
	}
	return g
}

// NormalGreeks prices an option on a normally distributed forward (Bachelier).
func NormalGreeks(pc PutCall, expiry, strike, forward, vol float64) Greeks {
	sqrtT := math.Sqrt(math.Max(expiry, 0))
	sd := vol * sqrtT
	if sd == 0 {
		return intrinsic(pc, strike, forward)
	}
	d := (forward - strike) / sd
	n := distuv.UnitNormal.Prob(d)
	g := Greeks{
		Gamma: n / sd,
		Vega:  sqrtT * n,
		Theta: -vol * n / (2 * sqrtT),
	}
	if pc == Call {
		g.Price = (forward-strike)*distuv.UnitNormal.CDF(d) + sd*n
		g.Delta = distuv.UnitNormal.CDF(d)
	} else {
		g.Price = (strike-forward)*distuv.UnitNormal.CDF(-d) + sd*n
		g.Delta = -distuv.UnitNormal.CDF(-d)
	}
	return g
}

// Evaluate dispatches on the volatility model.
func (m Model) Evaluate(pc PutCall, expiry, strike, forward, vol float64) Greeks {
	if m == Normal {
		return NormalGreeks(pc, expiry, strike, forward, vol)
	}
	return BlackGreeks(pc, expiry, strike, forward, vol)
}
