package swaption

import (
	"fmt"
	"math"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/sensitivity"
	"github.com/meenmo/ratekit/swap"
	"github.com/meenmo/ratekit/utils"
)

// PhysicalPricer prices physically settled swaptions from the underlying
// swap's forward rate and annuity.
type PhysicalPricer struct {
	swaps *swap.ProductPricer
}

// NewPhysicalPricer returns a pricer valuing underlyings with swaps.
func NewPhysicalPricer(swaps *swap.ProductPricer) *PhysicalPricer {
	return &PhysicalPricer{swaps: swaps}
}

// SwapPricer returns the underlying swap pricer.
func (p *PhysicalPricer) SwapPricer() *swap.ProductPricer { return p.swaps }

// state holds the inputs shared by the valuation methods.
type state struct {
	fixed   swap.ExpandedLeg
	expiry  float64
	sign    float64
	pvbp    float64
	strike  float64
	forward float64
	tenor   float64
	vol     float64
	putCall PutCall
	model   Model
}

func (s state) expired() bool { return s.expiry < 0 }

// validate checks the market data and product before any numeric work.
func (p *PhysicalPricer) validate(sw Swaption, prov *rates.Provider, vols Volatilities) (swap.ExpandedLeg, error) {
	if !utils.SameDate(vols.ValuationDateTime(), prov.ValuationDate()) {
		return swap.ExpandedLeg{}, fmt.Errorf("volatilities on %s, rates on %s: %w",
			utils.FormatDate(vols.ValuationDateTime()), utils.FormatDate(prov.ValuationDate()), ErrInconsistentMarketData)
	}
	if sw.Underlying.IsCrossCurrency() {
		return swap.ExpandedLeg{}, fmt.Errorf("underlying swap must be single currency: %w", swap.ErrInvalidProduct)
	}
	if sw.Settlement != Physical {
		return swap.ExpandedLeg{}, fmt.Errorf("settlement %q, want %s: %w", sw.Settlement, Physical, swap.ErrInvalidProduct)
	}
	return sw.Underlying.FixedLeg()
}

// prepare validates and, unless expired, resolves forward, annuity, strike and volatility.
func (p *PhysicalPricer) prepare(sw Swaption, prov *rates.Provider, vols Volatilities) (state, error) {
	fixed, err := p.validate(sw, prov, vols)
	if err != nil {
		return state{}, err
	}
	s := state{
		fixed:   fixed,
		expiry:  vols.RelativeTime(sw.Expiry),
		sign:    sw.LongShort.Sign(),
		tenor:   vols.Tenor(fixed.StartDate, fixed.EndDate),
		putCall: putCall(fixed),
		model:   vols.Model(),
	}
	if s.expired() {
		return s, nil
	}
	legs := p.swaps.LegPricer()
	if s.forward, err = p.swaps.ParRate(sw.Underlying, prov); err != nil {
		return state{}, err
	}
	if s.pvbp, err = legs.Pvbp(fixed, prov); err != nil {
		return state{}, err
	}
	if s.strike, err = legs.CouponEquivalent(fixed, prov, s.pvbp); err != nil {
		return state{}, err
	}
	s.vol = vols.Volatility(s.expiry, s.tenor, s.strike, s.forward)
	return s, nil
}

func (s state) greeks() Greeks {
	return s.model.Evaluate(s.putCall, s.expiry, s.strike, s.forward, s.vol)
}

func (s state) scaled(v float64) market.CurrencyAmount {
	return market.NewCurrencyAmount(s.fixed.Currency, math.Abs(s.pvbp)*v*s.sign)
}

// PresentValue is |pvbp| × price, signed by the position. An expired option is worth zero.
func (p *PhysicalPricer) PresentValue(sw Swaption, prov *rates.Provider, vols Volatilities) (market.CurrencyAmount, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return market.CurrencyAmount{}, fmt.Errorf("PhysicalPricer.PresentValue: %w", err)
	}
	if s.expired() {
		return market.NewCurrencyAmount(s.fixed.Currency, 0), nil
	}
	return s.scaled(s.greeks().Price), nil
}

// CurrencyExposure is the present value as a multi-currency amount.
func (p *PhysicalPricer) CurrencyExposure(sw Swaption, prov *rates.Provider, vols Volatilities) (market.MultiCurrencyAmount, error) {
	pv, err := p.PresentValue(sw, prov, vols)
	if err != nil {
		return market.MultiCurrencyAmount{}, err
	}
	return market.NewMultiCurrencyAmount(pv), nil
}

// ImpliedVolatility is the surface volatility used to price the swaption.
func (p *PhysicalPricer) ImpliedVolatility(sw Swaption, prov *rates.Provider, vols Volatilities) (float64, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return 0, fmt.Errorf("PhysicalPricer.ImpliedVolatility: %w", err)
	}
	if s.expired() {
		return 0, fmt.Errorf("PhysicalPricer.ImpliedVolatility: option expired %.6f years ago: %w", -s.expiry, ErrDomainRange)
	}
	return s.vol, nil
}

// PresentValueDelta is the derivative of PresentValue with respect to the forward rate.
func (p *PhysicalPricer) PresentValueDelta(sw Swaption, prov *rates.Provider, vols Volatilities) (market.CurrencyAmount, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return market.CurrencyAmount{}, fmt.Errorf("PhysicalPricer.PresentValueDelta: %w", err)
	}
	if s.expired() {
		return market.NewCurrencyAmount(s.fixed.Currency, 0), nil
	}
	return s.scaled(s.greeks().Delta), nil
}

// PresentValueGamma is the second derivative of PresentValue with respect to the forward rate.
func (p *PhysicalPricer) PresentValueGamma(sw Swaption, prov *rates.Provider, vols Volatilities) (market.CurrencyAmount, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return market.CurrencyAmount{}, fmt.Errorf("PhysicalPricer.PresentValueGamma: %w", err)
	}
	if s.expired() {
		return market.NewCurrencyAmount(s.fixed.Currency, 0), nil
	}
	return s.scaled(s.greeks().Gamma), nil
}

// PresentValueTheta is minus the derivative of PresentValue with respect to time to expiry.
func (p *PhysicalPricer) PresentValueTheta(sw Swaption, prov *rates.Provider, vols Volatilities) (market.CurrencyAmount, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return market.CurrencyAmount{}, fmt.Errorf("PhysicalPricer.PresentValueTheta: %w", err)
	}
	if s.expired() {
		return market.NewCurrencyAmount(s.fixed.Currency, 0), nil
	}
	return s.scaled(s.greeks().Theta), nil
}

// PresentValueVega is the derivative of PresentValue with respect to the volatility.
func (p *PhysicalPricer) PresentValueVega(sw Swaption, prov *rates.Provider, vols Volatilities) (market.CurrencyAmount, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return market.CurrencyAmount{}, fmt.Errorf("PhysicalPricer.PresentValueVega: %w", err)
	}
	if s.expired() {
		return market.NewCurrencyAmount(s.fixed.Currency, 0), nil
	}
	return s.scaled(s.greeks().Vega), nil
}

// PresentValueSensitivityStickyStrike is the curve sensitivity of PresentValue
// holding the volatility fixed:
//
//	d(PV) = price·sign·signum(pvbp)·d(pvbp) + delta·|pvbp|·sign·d(forward)
func (p *PhysicalPricer) PresentValueSensitivityStickyStrike(sw Swaption, prov *rates.Provider, vols Volatilities) (sensitivity.Builder, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("PhysicalPricer.PresentValueSensitivityStickyStrike: %w", err)
	}
	if s.expired() {
		return sensitivity.None(), nil
	}
	g := s.greeks()
	pvbpDr, err := p.swaps.LegPricer().PvbpSensitivity(s.fixed, prov)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("PhysicalPricer.PresentValueSensitivityStickyStrike: %w", err)
	}
	forwardDr, err := p.swaps.ParRateSensitivity(sw.Underlying, prov)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("PhysicalPricer.PresentValueSensitivityStickyStrike: %w", err)
	}
	return pvbpDr.MultipliedBy(g.Price * s.sign * signum(s.pvbp)).
		CombinedWith(forwardDr.MultipliedBy(g.Delta * math.Abs(s.pvbp) * s.sign)), nil
}

// PresentValueSensitivityVolatility is the vega as a point on the surface. An
// expired option returns a record with zero amount and zero forward.
func (p *PhysicalPricer) PresentValueSensitivityVolatility(sw Swaption, prov *rates.Provider, vols Volatilities) (VolatilitySensitivity, error) {
	s, err := p.prepare(sw, prov, vols)
	if err != nil {
		return VolatilitySensitivity{}, fmt.Errorf("PhysicalPricer.PresentValueSensitivityVolatility: %w", err)
	}
	out := VolatilitySensitivity{
		Model:    s.model,
		Expiry:   sw.Expiry,
		Tenor:    s.tenor,
		Currency: s.fixed.Currency,
	}
	if s.expired() {
		// The strike is still reported while fixed payments remain.
		legs := p.swaps.LegPricer()
		pvbp, err := legs.Pvbp(s.fixed, prov)
		if err != nil {
			return VolatilitySensitivity{}, fmt.Errorf("PhysicalPricer.PresentValueSensitivityVolatility: %w", err)
		}
		if pvbp != 0 {
			if out.Strike, err = legs.CouponEquivalent(s.fixed, prov, pvbp); err != nil {
				return VolatilitySensitivity{}, fmt.Errorf("PhysicalPricer.PresentValueSensitivityVolatility: %w", err)
			}
		}
		return out, nil
	}
	out.Strike = s.strike
	out.Forward = s.forward
	out.Amount = s.scaled(s.greeks().Vega).Amount
	return out, nil
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
