package rates

import (
	"fmt"
	"time"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/marketdata"
	"github.com/meenmo/ratekit/sensitivity"
)

// IborObservation is one fixing of a term index over an accrual period.
type IborObservation struct {
	Index         market.Index
	FixingDate    time.Time
	EffectiveDate time.Time
	MaturityDate  time.Time
	// YearFraction is the accrual of [EffectiveDate, MaturityDate] in the index day count.
	YearFraction float64
}

// OvernightObservation is a daily compounded overnight rate over an accrual period.
type OvernightObservation struct {
	Index        market.Index
	StartDate    time.Time
	EndDate      time.Time
	YearFraction float64
}

func (p *Provider) simpleForward(index market.Index, start, end time.Time, accrual float64) (float64, error) {
	c, err := p.ForwardCurve(index)
	if err != nil {
		return 0, err
	}
	if accrual == 0 {
		return 0, fmt.Errorf("simpleForward: %s: zero accrual for %s", index, start.Format("2006-01-02"))
	}
	ts, te := p.RelativeTime(start), p.RelativeTime(end)
	return (c.DiscountFactor(ts)/c.DiscountFactor(te) - 1) / accrual, nil
}

// IborRate returns the fixing for past observations and the curve forward otherwise.
// An observation fixing on the valuation date uses a published fixing when present.
func (p *Provider) IborRate(obs IborObservation) (float64, error) {
	if v, fixed, err := p.historicFixing(obs.Index, obs.FixingDate); err != nil || fixed {
		return v, err
	}
	return p.simpleForward(obs.Index, obs.EffectiveDate, obs.MaturityDate, obs.YearFraction)
}

// IborRateSensitivity returns dRate/dForward as a forward-rate point, or nothing
// for fixed observations. ccy is the currency of the amount being differentiated.
func (p *Provider) IborRateSensitivity(obs IborObservation, ccy market.Currency) (sensitivity.Builder, error) {
	if _, fixed, err := p.historicFixing(obs.Index, obs.FixingDate); err != nil || fixed {
		return sensitivity.None(), err
	}
	return sensitivity.ForwardRatePoint(obs.Index, ccy,
		p.RelativeTime(obs.EffectiveDate), p.RelativeTime(obs.MaturityDate), obs.YearFraction, 1), nil
}

func (p *Provider) historicFixing(index market.Index, fixingDate time.Time) (float64, bool, error) {
	if fixingDate.After(p.valuationDate) {
		return 0, false, nil
	}
	v, ok := p.fixings[index].RateOn(fixingDate)
	if ok {
		return v, true, nil
	}
	if fixingDate.Before(p.valuationDate) {
		return 0, false, fmt.Errorf("IborRate: %s on %s: %w", index, fixingDate.Format("2006-01-02"), marketdata.ErrMissingFixing)
	}
	return 0, false, nil
}

// accruedFactor compounds published fixings from start up to the valuation date.
// It returns the growth factor and the date from which forwards apply.
func (p *Provider) accruedFactor(obs OvernightObservation) (float64, time.Time, error) {
	if !obs.StartDate.Before(p.valuationDate) {
		return 1, obs.StartDate, nil
	}
	conv, err := obs.Index.Convention()
	if err != nil {
		return 0, time.Time{}, err
	}
	series := p.fixings[obs.Index]
	factor := 1.0
	d := obs.StartDate
	for d.Before(p.valuationDate) && d.Before(obs.EndDate) {
		next := calendar.AddBusinessDays(conv.Calendar, d, 1)
		if next.After(obs.EndDate) {
			next = obs.EndDate
		}
		r, ok := series.RateOn(d)
		if !ok {
			return 0, time.Time{}, fmt.Errorf("OvernightRate: %s on %s: %w", obs.Index, d.Format("2006-01-02"), marketdata.ErrMissingFixing)
		}
		factor *= 1 + r*conv.DayCount.YearFraction(d, next)
		d = next
	}
	return factor, d, nil
}

// OvernightRate returns the compounded overnight rate for the period. Published
// fixings are compounded up to the valuation date and the rest is projected from
// the forward curve.
func (p *Provider) OvernightRate(obs OvernightObservation) (float64, error) {
	if obs.YearFraction == 0 {
		return 0, fmt.Errorf("OvernightRate: %s: zero accrual", obs.Index)
	}
	factor, from, err := p.accruedFactor(obs)
	if err != nil {
		return 0, err
	}
	if !from.Before(obs.EndDate) {
		return (factor - 1) / obs.YearFraction, nil
	}
	c, err := p.ForwardCurve(obs.Index)
	if err != nil {
		return 0, err
	}
	growth := c.DiscountFactor(p.RelativeTime(from)) / c.DiscountFactor(p.RelativeTime(obs.EndDate))
	return (factor*growth - 1) / obs.YearFraction, nil
}

// OvernightRateSensitivity returns dRate/dForward of the projected part as a forward-rate point.
func (p *Provider) OvernightRateSensitivity(obs OvernightObservation, ccy market.Currency) (sensitivity.Builder, error) {
	factor, from, err := p.accruedFactor(obs)
	if err != nil {
		return sensitivity.None(), err
	}
	if !from.Before(obs.EndDate) {
		return sensitivity.None(), nil
	}
	conv, err := obs.Index.Convention()
	if err != nil {
		return sensitivity.None(), err
	}
	accrual := obs.YearFraction
	if from.After(obs.StartDate) {
		accrual = conv.DayCount.YearFraction(from, obs.EndDate)
	}
	// rate = (factor·(1 + accrual·F) - 1) / YearFraction
	return sensitivity.ForwardRatePoint(obs.Index, ccy,
		p.RelativeTime(from), p.RelativeTime(obs.EndDate), accrual, factor*accrual/obs.YearFraction), nil
}
