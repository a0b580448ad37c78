package calibration

import (
	"fmt"
	"time"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/marketdata"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/sensitivity"
	"github.com/meenmo/ratekit/swap"
)

// Instrument is a quoted trade at unit notional whose present value is zero
// when the curves reproduce its quote. The set of implementations is closed.
type Instrument interface {
	// Label names the node the instrument pins.
	Label() string
	// NodeDate is the date the owned curve node is placed at.
	NodeDate() time.Time
	PresentValue(prov *rates.Provider) (float64, error)
	PresentValueSensitivity(prov *rates.Provider) (sensitivity.Builder, error)
	instrument()
}

// TermDeposit lends one unit from Start and receives 1 + Rate × YearFraction at End.
type TermDeposit struct {
	Name         string
	Currency     market.Currency
	Start        time.Time
	End          time.Time
	YearFraction float64
	Rate         float64
}

func (TermDeposit) instrument() {}

// Label returns the node label.
func (d TermDeposit) Label() string { return d.Name }

// NodeDate is the maturity.
func (d TermDeposit) NodeDate() time.Time { return d.End }

// PresentValue is −DF(start) + (1 + rτ)·DF(end).
func (d TermDeposit) PresentValue(prov *rates.Provider) (float64, error) {
	dfStart, err := prov.DiscountFactor(d.Currency, d.Start)
	if err != nil {
		return 0, err
	}
	dfEnd, err := prov.DiscountFactor(d.Currency, d.End)
	if err != nil {
		return 0, err
	}
	return -dfStart + (1+d.Rate*d.YearFraction)*dfEnd, nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (d TermDeposit) PresentValueSensitivity(prov *rates.Provider) (sensitivity.Builder, error) {
	start, err := prov.DiscountFactorSensitivity(d.Currency, d.Start)
	if err != nil {
		return sensitivity.None(), err
	}
	end, err := prov.DiscountFactorSensitivity(d.Currency, d.End)
	if err != nil {
		return sensitivity.None(), err
	}
	return start.MultipliedBy(-1).CombinedWith(end.MultipliedBy(1 + d.Rate*d.YearFraction)), nil
}

// IborFixingDeposit pins the index forward for the period starting at spot.
// Its value is the forward minus the quote, weighted by the accrual.
type IborFixingDeposit struct {
	Name        string
	Observation rates.IborObservation
	Rate        float64
}

func (IborFixingDeposit) instrument() {}

// Label returns the node label.
func (d IborFixingDeposit) Label() string { return d.Name }

// NodeDate is the end of the index period.
func (d IborFixingDeposit) NodeDate() time.Time { return d.Observation.MaturityDate }

func (d IborFixingDeposit) forward(prov *rates.Provider) (float64, error) {
	c, err := prov.ForwardCurve(d.Observation.Index)
	if err != nil {
		return 0, err
	}
	ts, te := prov.RelativeTime(d.Observation.EffectiveDate), prov.RelativeTime(d.Observation.MaturityDate)
	return (c.DiscountFactor(ts)/c.DiscountFactor(te) - 1) / d.Observation.YearFraction, nil
}

// PresentValue is τ·(F − quote). The curve forward is used even when a fixing
// for the valuation date is published.
func (d IborFixingDeposit) PresentValue(prov *rates.Provider) (float64, error) {
	f, err := d.forward(prov)
	if err != nil {
		return 0, err
	}
	return d.Observation.YearFraction * (f - d.Rate), nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (d IborFixingDeposit) PresentValueSensitivity(prov *rates.Provider) (sensitivity.Builder, error) {
	conv, err := d.Observation.Index.Convention()
	if err != nil {
		return sensitivity.None(), err
	}
	obs := d.Observation
	return sensitivity.ForwardRatePoint(obs.Index, conv.Currency,
		prov.RelativeTime(obs.EffectiveDate), prov.RelativeTime(obs.MaturityDate), obs.YearFraction, obs.YearFraction), nil
}

// Fra is a forward rate agreement settled at the period start with ISDA discounting:
// τ·(F − K)/(1 + τ·F), discounted from the start date.
type Fra struct {
	Name        string
	Currency    market.Currency
	Observation rates.IborObservation
	Rate        float64
}

func (Fra) instrument() {}

// Label returns the node label.
func (f Fra) Label() string { return f.Name }

// NodeDate is the end of the FRA period.
func (f Fra) NodeDate() time.Time { return f.Observation.MaturityDate }

// PresentValue is the discounted settlement amount.
func (f Fra) PresentValue(prov *rates.Provider) (float64, error) {
	fwd, err := prov.IborRate(f.Observation)
	if err != nil {
		return 0, err
	}
	df, err := prov.DiscountFactor(f.Currency, f.Observation.EffectiveDate)
	if err != nil {
		return 0, err
	}
	tau := f.Observation.YearFraction
	return df * tau * (fwd - f.Rate) / (1 + tau*fwd), nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (f Fra) PresentValueSensitivity(prov *rates.Provider) (sensitivity.Builder, error) {
	fwd, err := prov.IborRate(f.Observation)
	if err != nil {
		return sensitivity.None(), err
	}
	df, err := prov.DiscountFactor(f.Currency, f.Observation.EffectiveDate)
	if err != nil {
		return sensitivity.None(), err
	}
	fwdDr, err := prov.IborRateSensitivity(f.Observation, f.Currency)
	if err != nil {
		return sensitivity.None(), err
	}
	dfDr, err := prov.DiscountFactorSensitivity(f.Currency, f.Observation.EffectiveDate)
	if err != nil {
		return sensitivity.None(), err
	}
	tau := f.Observation.YearFraction
	denom := 1 + tau*fwd
	settle := tau * (fwd - f.Rate) / denom
	dSettle := tau * (1 + tau*f.Rate) / (denom * denom)
	return fwdDr.MultipliedBy(df * dSettle).CombinedWith(dfDr.MultipliedBy(settle)), nil
}

// SwapInstrument is a fixed-vs-floating swap receiving the quoted fixed rate.
// It serves both FIXED_IBOR_SWAP and FIXED_OVERNIGHT_SWAP nodes.
type SwapInstrument struct {
	Name   string
	Swap   swap.ExpandedSwap
	pricer *swap.ProductPricer
}

func (SwapInstrument) instrument() {}

// Label returns the node label.
func (s SwapInstrument) Label() string { return s.Name }

// NodeDate is the latest leg end date.
func (s SwapInstrument) NodeDate() time.Time { return s.Swap.EndDate() }

func (s SwapInstrument) swapPricer() *swap.ProductPricer {
	if s.pricer == nil {
		return swap.DefaultProductPricer()
	}
	return s.pricer
}

// PresentValue is the swap value in its single currency.
func (s SwapInstrument) PresentValue(prov *rates.Provider) (float64, error) {
	pv, err := s.swapPricer().PresentValue(s.Swap, prov)
	if err != nil {
		return 0, err
	}
	amount, err := pv.Single()
	if err != nil {
		return 0, err
	}
	return amount.Amount, nil
}

// PresentValueSensitivity is the point sensitivity of PresentValue.
func (s SwapInstrument) PresentValueSensitivity(prov *rates.Provider) (sensitivity.Builder, error) {
	return s.swapPricer().PresentValueSensitivity(s.Swap, prov)
}

// BuildInstrument resolves a node against the valuation date and quotes.
func BuildInstrument(n Node, valuationDate time.Time, quotes marketdata.Quotes, pricer *swap.ProductPricer) (Instrument, float64, error) {
	q, err := quotes.Quote(n.QuoteID)
	if err != nil {
		return nil, 0, fmt.Errorf("BuildInstrument: %w", err)
	}
	switch n.Kind {
	case TermDepositNode:
		cal := n.Calendar
		if cal == "" {
			cal = calendar.WeekendsOnly
		}
		dc := n.DayCount
		if dc == "" {
			dc = market.Act360
		}
		start := calendar.AddBusinessDays(cal, valuationDate, n.SpotLag)
		end := calendar.Adjust(cal, n.Tenor.AddTo(start))
		return TermDeposit{
			Name: n.label(), Currency: n.Currency, Start: start, End: end,
			YearFraction: dc.YearFraction(start, end), Rate: q,
		}, q, nil

	case IborFixingDepositNode, FraNode:
		conv, err := n.Index.Convention()
		if err != nil {
			return nil, 0, fmt.Errorf("BuildInstrument: %s: %w", n.label(), err)
		}
		if conv.Overnight {
			return nil, 0, fmt.Errorf("BuildInstrument: %s: %s is not a term index", n.label(), n.Index)
		}
		spot := calendar.AddBusinessDays(conv.Calendar, valuationDate, conv.FixingLagDays)
		effective := spot
		if n.Kind == FraNode {
			if n.Start.IsZero() {
				return nil, 0, fmt.Errorf("BuildInstrument: %s: FRA needs a start tenor", n.label())
			}
			effective = calendar.Adjust(conv.Calendar, n.Start.AddTo(spot))
		}
		maturity := calendar.Adjust(conv.Calendar, market.Tenor{Months: conv.TenorMonths}.AddTo(effective))
		obs := rates.IborObservation{
			Index:         n.Index,
			FixingDate:    calendar.AddBusinessDays(conv.Calendar, effective, -conv.FixingLagDays),
			EffectiveDate: effective,
			MaturityDate:  maturity,
			YearFraction:  conv.DayCount.YearFraction(effective, maturity),
		}
		if n.Kind == FraNode {
			return Fra{Name: n.label(), Currency: conv.Currency, Observation: obs, Rate: q}, q, nil
		}
		return IborFixingDeposit{Name: n.label(), Observation: obs, Rate: q}, q, nil

	case FixedIborSwapNode, FixedOvernightSwapNode:
		conv, err := market.LookupSwapConvention(n.Convention)
		if err != nil {
			return nil, 0, fmt.Errorf("BuildInstrument: %s: %w", n.label(), err)
		}
		want := market.LegIbor
		if n.Kind == FixedOvernightSwapNode {
			want = market.LegOvernight
		}
		if conv.FloatLeg.LegType != want {
			return nil, 0, fmt.Errorf("BuildInstrument: %s: convention %s has a %s floating leg", n.label(), conv.Name, conv.FloatLeg.LegType)
		}
		s, err := swap.FixedFloatTerms{
			Convention: conv,
			Direction:  swap.Receive,
			TradeDate:  valuationDate,
			Forward:    n.Start,
			Tenor:      n.Tenor,
			Notional:   1,
			FixedRate:  q,
		}.Expand()
		if err != nil {
			return nil, 0, fmt.Errorf("BuildInstrument: %s: %w", n.label(), err)
		}
		return SwapInstrument{Name: n.label(), Swap: s, pricer: pricer}, q, nil

	default:
		return nil, 0, fmt.Errorf("BuildInstrument: %s: unknown node kind %q", n.label(), n.Kind)
	}
}
