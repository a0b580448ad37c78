package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
)

// LegTerms are the economic terms of one leg.
type LegTerms struct {
	Convention market.LegConvention
	PayReceive PayReceive
	StartDate  time.Time
	EndDate    time.Time
	// Notional is unsigned; the sign follows PayReceive.
	Notional float64
	// FixedRate is used by fixed legs.
	FixedRate float64
	// Spread is added to the index rate of floating legs.
	Spread float64
}

// ExpandLeg generates the schedule of a leg and resolves each period's rate computation.
func ExpandLeg(terms LegTerms) (ExpandedLeg, error) {
	conv := terms.Convention
	if err := conv.Validate(); err != nil {
		return ExpandedLeg{}, fmt.Errorf("ExpandLeg: %w", err)
	}
	schedule, err := GenerateSchedule(terms.StartDate, terms.EndDate, conv)
	if err != nil {
		return ExpandedLeg{}, fmt.Errorf("ExpandLeg: %w", err)
	}
	notional := terms.Notional * terms.PayReceive.Sign()

	leg := ExpandedLeg{
		Type:       conv.LegType,
		PayReceive: terms.PayReceive,
		Currency:   conv.Currency,
		StartDate:  schedule[0].StartDate,
		EndDate:    schedule[len(schedule)-1].EndDate,
		Periods:    make([]RatePeriod, 0, len(schedule)),
	}
	for _, sp := range schedule {
		rc, err := rateComputation(conv, sp)
		if err != nil {
			return ExpandedLeg{}, fmt.Errorf("ExpandLeg: %w", err)
		}
		if conv.LegType == market.LegFixed {
			rc.Fixed = terms.FixedRate
		}
		leg.Periods = append(leg.Periods, RatePeriod{
			StartDate:    sp.StartDate,
			EndDate:      sp.EndDate,
			PaymentDate:  sp.PayDate,
			YearFraction: conv.DayCount.YearFraction(sp.StartDate, sp.EndDate),
			Currency:     conv.Currency,
			Notional:     notional,
			Rate:         rc,
			Spread:       terms.Spread,
		})
	}
	if conv.NotionalExchange {
		last := schedule[len(schedule)-1]
		leg.Events = []NotionalExchange{
			{PaymentDate: leg.StartDate, Currency: conv.Currency, Amount: -notional},
			{PaymentDate: last.PayDate, Currency: conv.Currency, Amount: notional},
		}
	}
	return leg, nil
}

func rateComputation(conv market.LegConvention, sp SchedulePeriod) (RateComputation, error) {
	switch conv.LegType {
	case market.LegFixed:
		return FixedRateComputation(0), nil
	case market.LegIbor:
		ic, err := conv.Index.Convention()
		if err != nil {
			return RateComputation{}, err
		}
		maturity := calendar.Adjust(ic.Calendar, market.Tenor{Months: ic.TenorMonths}.AddTo(sp.StartDate))
		return IborRateComputation(rates.IborObservation{
			Index:         conv.Index,
			FixingDate:    sp.FixingDate,
			EffectiveDate: sp.StartDate,
			MaturityDate:  maturity,
			YearFraction:  ic.DayCount.YearFraction(sp.StartDate, maturity),
		}), nil
	case market.LegOvernight:
		ic, err := conv.Index.Convention()
		if err != nil {
			return RateComputation{}, err
		}
		return OvernightRateComputation(rates.OvernightObservation{
			Index:        conv.Index,
			StartDate:    sp.StartDate,
			EndDate:      sp.EndDate,
			YearFraction: ic.DayCount.YearFraction(sp.StartDate, sp.EndDate),
		}), nil
	default:
		return RateComputation{}, fmt.Errorf("unknown leg type %q", conv.LegType)
	}
}

// FixedFloatTerms describe a standard fixed-vs-floating swap.
//
// Dates come from StartDate/EndDate when both are set; otherwise from
// TradeDate, the convention's spot lag, Forward and Tenor.
type FixedFloatTerms struct {
	Convention market.SwapConvention
	// Direction applies to the fixed leg; the floating leg takes the opposite.
	Direction PayReceive
	TradeDate time.Time
	Forward   market.Tenor
	Tenor     market.Tenor
	StartDate time.Time
	EndDate   time.Time
	Notional  float64
	FixedRate float64
	// Spread is added to the floating leg.
	Spread float64
}

// Dates resolves the effective and maturity dates.
func (t FixedFloatTerms) Dates() (effective, maturity time.Time, err error) {
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() {
		return t.StartDate, t.EndDate, nil
	}
	if t.TradeDate.IsZero() || t.Tenor.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("FixedFloatTerms.Dates: need start/end dates or trade date and tenor")
	}
	_, effective, maturity = SpotEffectiveMaturity(t.TradeDate, t.Convention.FixedLeg.Calendar,
		t.Convention.SpotLagDays, t.Forward, t.Tenor)
	return effective, maturity, nil
}

// Expand builds the fixed leg followed by the floating leg.
func (t FixedFloatTerms) Expand() (ExpandedSwap, error) {
	if t.Direction != Pay && t.Direction != Receive {
		return ExpandedSwap{}, fmt.Errorf("FixedFloatTerms.Expand: direction %q: %w", t.Direction, ErrInvalidProduct)
	}
	effective, maturity, err := t.Dates()
	if err != nil {
		return ExpandedSwap{}, err
	}
	fixed, err := ExpandLeg(LegTerms{
		Convention: t.Convention.FixedLeg,
		PayReceive: t.Direction,
		StartDate:  effective,
		EndDate:    maturity,
		Notional:   t.Notional,
		FixedRate:  t.FixedRate,
	})
	if err != nil {
		return ExpandedSwap{}, fmt.Errorf("FixedFloatTerms.Expand: fixed leg: %w", err)
	}
	float, err := ExpandLeg(LegTerms{
		Convention: t.Convention.FloatLeg,
		PayReceive: t.Direction.Opposite(),
		StartDate:  effective,
		EndDate:    maturity,
		Notional:   t.Notional,
		Spread:     t.Spread,
	})
	if err != nil {
		return ExpandedSwap{}, fmt.Errorf("FixedFloatTerms.Expand: floating leg: %w", err)
	}
	return ExpandedSwap{Legs: []ExpandedLeg{fixed, float}}, nil
}
