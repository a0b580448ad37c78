package swap

import (
	"fmt"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/sensitivity"
)

// LegPricer values expanded legs by discounting each period and event on the
// leg currency's discount curve. Payments before the valuation date are ignored.
type LegPricer struct{}

// NewLegPricer returns the discounting leg pricer.
func NewLegPricer() LegPricer { return LegPricer{} }

// Rate returns the period rate including any floating spread.
func (LegPricer) Rate(p RatePeriod, prov *rates.Provider) (float64, error) {
	switch p.Rate.Kind {
	case FixedRate:
		return p.Rate.Fixed, nil
	case IborRate:
		r, err := prov.IborRate(p.Rate.Ibor)
		return r + p.Spread, err
	case OvernightRate:
		r, err := prov.OvernightRate(p.Rate.Overnight)
		return r + p.Spread, err
	default:
		return 0, fmt.Errorf("LegPricer.Rate: unknown rate kind %d: %w", p.Rate.Kind, ErrInvalidProduct)
	}
}

// RateSensitivity returns the sensitivity of the period rate to forward rates.
func (LegPricer) RateSensitivity(p RatePeriod, prov *rates.Provider) (sensitivity.Builder, error) {
	switch p.Rate.Kind {
	case FixedRate:
		return sensitivity.None(), nil
	case IborRate:
		return prov.IborRateSensitivity(p.Rate.Ibor, p.Currency)
	case OvernightRate:
		return prov.OvernightRateSensitivity(p.Rate.Overnight, p.Currency)
	default:
		return sensitivity.None(), fmt.Errorf("LegPricer.RateSensitivity: unknown rate kind %d: %w", p.Rate.Kind, ErrInvalidProduct)
	}
}

func (lp LegPricer) periodPresentValue(p RatePeriod, prov *rates.Provider) (float64, error) {
	if p.PaymentDate.Before(prov.ValuationDate()) {
		return 0, nil
	}
	rate, err := lp.Rate(p, prov)
	if err != nil {
		return 0, err
	}
	df, err := prov.DiscountFactor(p.Currency, p.PaymentDate)
	if err != nil {
		return 0, err
	}
	return p.Notional * p.YearFraction * rate * df, nil
}

func (lp LegPricer) periodSensitivity(p RatePeriod, prov *rates.Provider) (sensitivity.Builder, error) {
	if p.PaymentDate.Before(prov.ValuationDate()) {
		return sensitivity.None(), nil
	}
	rate, err := lp.Rate(p, prov)
	if err != nil {
		return sensitivity.None(), err
	}
	df, err := prov.DiscountFactor(p.Currency, p.PaymentDate)
	if err != nil {
		return sensitivity.None(), err
	}
	dfDr, err := prov.DiscountFactorSensitivity(p.Currency, p.PaymentDate)
	if err != nil {
		return sensitivity.None(), err
	}
	rateDr, err := lp.RateSensitivity(p, prov)
	if err != nil {
		return sensitivity.None(), err
	}
	accrued := p.Notional * p.YearFraction
	return rateDr.MultipliedBy(accrued * df).CombinedWith(dfDr.MultipliedBy(accrued * rate)), nil
}

// PresentValuePeriods is the discounted value of the rate periods.
func (lp LegPricer) PresentValuePeriods(leg ExpandedLeg, prov *rates.Provider) (float64, error) {
	total := 0.0
	for _, p := range leg.Periods {
		pv, err := lp.periodPresentValue(p, prov)
		if err != nil {
			return 0, fmt.Errorf("LegPricer.PresentValue: period ending %s: %w", p.EndDate.Format("2006-01-02"), err)
		}
		total += pv
	}
	return total, nil
}

// PresentValueEvents is the discounted value of the notional exchanges.
func (LegPricer) PresentValueEvents(leg ExpandedLeg, prov *rates.Provider) (float64, error) {
	total := 0.0
	for _, e := range leg.Events {
		if e.PaymentDate.Before(prov.ValuationDate()) {
			continue
		}
		df, err := prov.DiscountFactor(e.Currency, e.PaymentDate)
		if err != nil {
			return 0, fmt.Errorf("LegPricer.PresentValueEvents: %w", err)
		}
		total += e.Amount * df
	}
	return total, nil
}

// PresentValue is the leg value in the leg currency.
func (lp LegPricer) PresentValue(leg ExpandedLeg, prov *rates.Provider) (market.CurrencyAmount, error) {
	periods, err := lp.PresentValuePeriods(leg, prov)
	if err != nil {
		return market.CurrencyAmount{}, err
	}
	events, err := lp.PresentValueEvents(leg, prov)
	if err != nil {
		return market.CurrencyAmount{}, err
	}
	return market.NewCurrencyAmount(leg.Currency, periods+events), nil
}

// PresentValueSensitivityPeriods is the point sensitivity of PresentValuePeriods.
func (lp LegPricer) PresentValueSensitivityPeriods(leg ExpandedLeg, prov *rates.Provider) (sensitivity.Builder, error) {
	out := sensitivity.None()
	for _, p := range leg.Periods {
		s, err := lp.periodSensitivity(p, prov)
		if err != nil {
			return sensitivity.None(), fmt.Errorf("LegPricer.PresentValueSensitivity: period ending %s: %w", p.EndDate.Format("2006-01-02"), err)
		}
		out = out.CombinedWith(s)
	}
	return out, nil
}

// PresentValueSensitivityEvents is the point sensitivity of PresentValueEvents.
func (LegPricer) PresentValueSensitivityEvents(leg ExpandedLeg, prov *rates.Provider) (sensitivity.Builder, error) {
	out := sensitivity.None()
	for _, e := range leg.Events {
		if e.PaymentDate.Before(prov.ValuationDate()) {
			continue
		}
		s, err := prov.DiscountFactorSensitivity(e.Currency, e.PaymentDate)
		if err != nil {
			return sensitivity.None(), fmt.Errorf("LegPricer.PresentValueSensitivityEvents: %w", err)
		}
		out = out.CombinedWith(s.MultipliedBy(e.Amount))
	}
	return out, nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (lp LegPricer) PresentValueSensitivity(leg ExpandedLeg, prov *rates.Provider) (sensitivity.Builder, error) {
	periods, err := lp.PresentValueSensitivityPeriods(leg, prov)
	if err != nil {
		return sensitivity.None(), err
	}
	events, err := lp.PresentValueSensitivityEvents(leg, prov)
	if err != nil {
		return sensitivity.None(), err
	}
	return periods.CombinedWith(events), nil
}

// Pvbp is the value of a unit rate paid on every remaining period:
// Σ notional × year fraction × DF(payment). It carries the notional sign.
func (LegPricer) Pvbp(leg ExpandedLeg, prov *rates.Provider) (float64, error) {
	total := 0.0
	for _, p := range leg.Periods {
		if p.PaymentDate.Before(prov.ValuationDate()) {
			continue
		}
		df, err := prov.DiscountFactor(p.Currency, p.PaymentDate)
		if err != nil {
			return 0, fmt.Errorf("LegPricer.Pvbp: %w", err)
		}
		total += p.Notional * p.YearFraction * df
	}
	return total, nil
}

// PvbpSensitivity is the point sensitivity of Pvbp.
func (LegPricer) PvbpSensitivity(leg ExpandedLeg, prov *rates.Provider) (sensitivity.Builder, error) {
	out := sensitivity.None()
	for _, p := range leg.Periods {
		if p.PaymentDate.Before(prov.ValuationDate()) {
			continue
		}
		s, err := prov.DiscountFactorSensitivity(p.Currency, p.PaymentDate)
		if err != nil {
			return sensitivity.None(), fmt.Errorf("LegPricer.PvbpSensitivity: %w", err)
		}
		out = out.CombinedWith(s.MultipliedBy(p.Notional * p.YearFraction))
	}
	return out, nil
}

// CouponEquivalent is the single rate that, paid on every remaining period,
// reproduces the value of the periods. pvbp must be the leg's Pvbp.
func (lp LegPricer) CouponEquivalent(leg ExpandedLeg, prov *rates.Provider, pvbp float64) (float64, error) {
	if pvbp == 0 {
		return 0, fmt.Errorf("LegPricer.CouponEquivalent: zero pvbp: %w", ErrInvalidProduct)
	}
	pv, err := lp.PresentValuePeriods(leg, prov)
	if err != nil {
		return 0, err
	}
	return pv / pvbp, nil
}
