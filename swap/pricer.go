package swap

import (
	"fmt"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/sensitivity"
)

// ProductPricer values expanded swaps leg by leg.
type ProductPricer struct {
	legs LegPricer
}

// NewProductPricer returns a swap pricer built on lp.
func NewProductPricer(lp LegPricer) *ProductPricer {
	return &ProductPricer{legs: lp}
}

// DefaultProductPricer uses the discounting leg pricer.
func DefaultProductPricer() *ProductPricer {
	return NewProductPricer(NewLegPricer())
}

// LegPricer exposes the underlying leg pricer.
func (pp *ProductPricer) LegPricer() LegPricer { return pp.legs }

// PresentValue sums the leg values by currency.
func (pp *ProductPricer) PresentValue(s ExpandedSwap, prov *rates.Provider) (market.MultiCurrencyAmount, error) {
	out := market.NewMultiCurrencyAmount()
	for i, leg := range s.Legs {
		pv, err := pp.legs.PresentValue(leg, prov)
		if err != nil {
			return market.MultiCurrencyAmount{}, fmt.Errorf("ProductPricer.PresentValue: leg %d: %w", i, err)
		}
		out = out.Plus(pv)
	}
	return out, nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (pp *ProductPricer) PresentValueSensitivity(s ExpandedSwap, prov *rates.Provider) (sensitivity.Builder, error) {
	out := sensitivity.None()
	for i, leg := range s.Legs {
		b, err := pp.legs.PresentValueSensitivity(leg, prov)
		if err != nil {
			return sensitivity.None(), fmt.Errorf("ProductPricer.PresentValueSensitivity: leg %d: %w", i, err)
		}
		out = out.CombinedWith(b)
	}
	return out, nil
}

// parRateInputs returns the fixed leg, its pvbp and the value X that the fixed
// periods must offset: the other legs plus the fixed leg's notional events.
func (pp *ProductPricer) parRateInputs(s ExpandedSwap, prov *rates.Provider) (ExpandedLeg, float64, float64, error) {
	if s.IsCrossCurrency() {
		return ExpandedLeg{}, 0, 0, fmt.Errorf("cross-currency swap: %w", ErrInvalidProduct)
	}
	fixed, err := s.FixedLeg()
	if err != nil {
		return ExpandedLeg{}, 0, 0, err
	}
	pvbp, err := pp.legs.Pvbp(fixed, prov)
	if err != nil {
		return ExpandedLeg{}, 0, 0, err
	}
	if pvbp == 0 {
		return ExpandedLeg{}, 0, 0, fmt.Errorf("fixed leg has zero pvbp: %w", ErrInvalidProduct)
	}
	x, err := pp.legs.PresentValueEvents(fixed, prov)
	if err != nil {
		return ExpandedLeg{}, 0, 0, err
	}
	for _, leg := range s.Legs {
		if leg.Type == market.LegFixed {
			continue
		}
		pv, err := pp.legs.PresentValue(leg, prov)
		if err != nil {
			return ExpandedLeg{}, 0, 0, err
		}
		x += pv.Amount
	}
	return fixed, pvbp, x, nil
}

// ParRate is the fixed rate that sets the swap value to zero.
func (pp *ProductPricer) ParRate(s ExpandedSwap, prov *rates.Provider) (float64, error) {
	_, pvbp, x, err := pp.parRateInputs(s, prov)
	if err != nil {
		return 0, fmt.Errorf("ProductPricer.ParRate: %w", err)
	}
	return -x / pvbp, nil
}

// ParRateSensitivity is the point sensitivity of ParRate.
func (pp *ProductPricer) ParRateSensitivity(s ExpandedSwap, prov *rates.Provider) (sensitivity.Builder, error) {
	fixed, pvbp, x, err := pp.parRateInputs(s, prov)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("ProductPricer.ParRateSensitivity: %w", err)
	}
	pvbpDr, err := pp.legs.PvbpSensitivity(fixed, prov)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("ProductPricer.ParRateSensitivity: %w", err)
	}
	otherDr, err := pp.legs.PresentValueSensitivityEvents(fixed, prov)
	if err != nil {
		return sensitivity.None(), fmt.Errorf("ProductPricer.ParRateSensitivity: %w", err)
	}
	for _, leg := range s.Legs {
		if leg.Type == market.LegFixed {
			continue
		}
		b, err := pp.legs.PresentValueSensitivity(leg, prov)
		if err != nil {
			return sensitivity.None(), fmt.Errorf("ProductPricer.ParRateSensitivity: %w", err)
		}
		otherDr = otherDr.CombinedWith(b)
	}
	return pvbpDr.MultipliedBy(x / (pvbp * pvbp)).CombinedWith(otherDr.MultipliedBy(-1 / pvbp)), nil
}

// ParSpread is the amount to add to the first leg's rate so the swap is worth zero.
func (pp *ProductPricer) ParSpread(s ExpandedSwap, prov *rates.Provider) (float64, error) {
	if len(s.Legs) == 0 {
		return 0, fmt.Errorf("ProductPricer.ParSpread: no legs: %w", ErrInvalidProduct)
	}
	if s.IsCrossCurrency() {
		return 0, fmt.Errorf("ProductPricer.ParSpread: cross-currency swap: %w", ErrInvalidProduct)
	}
	pv, err := pp.PresentValue(s, prov)
	if err != nil {
		return 0, fmt.Errorf("ProductPricer.ParSpread: %w", err)
	}
	pvbp, err := pp.legs.Pvbp(s.Legs[0], prov)
	if err != nil {
		return 0, fmt.Errorf("ProductPricer.ParSpread: %w", err)
	}
	if pvbp == 0 {
		return 0, fmt.Errorf("ProductPricer.ParSpread: first leg has zero pvbp: %w", ErrInvalidProduct)
	}
	return -pv.Amount(s.Legs[0].Currency).Amount / pvbp, nil
}
