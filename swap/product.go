package swap

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
)

// ErrInvalidProduct is returned when a product does not fit the pricer it is given to.
var ErrInvalidProduct = errors.New("invalid product")

// PayReceive is the direction of a leg from the holder's point of view.
type PayReceive string

const (
	Pay     PayReceive = "PAY"
	Receive PayReceive = "RECEIVE"
)

// ParsePayReceive accepts PAY/REC/RECEIVE in any case.
func ParsePayReceive(s string) (PayReceive, error) {
	switch s {
	case "PAY", "pay", "Pay":
		return Pay, nil
	case "REC", "rec", "Rec", "RECEIVE", "receive", "Receive":
		return Receive, nil
	default:
		return "", fmt.Errorf("ParsePayReceive: unknown direction %q", s)
	}
}

// Sign is +1 for receive and -1 for pay.
func (p PayReceive) Sign() float64 {
	if p == Pay {
		return -1
	}
	return 1
}

// Opposite returns the other direction.
func (p PayReceive) Opposite() PayReceive {
	if p == Pay {
		return Receive
	}
	return Pay
}

// RateKind tags the variant held by a RateComputation.
type RateKind uint8

const (
	FixedRate RateKind = iota + 1
	IborRate
	OvernightRate
)

// RateComputation says how a period's rate is obtained. Only the field matching
// Kind is meaningful.
type RateComputation struct {
	Kind      RateKind
	Fixed     float64
	Ibor      rates.IborObservation
	Overnight rates.OvernightObservation
}

// FixedRateComputation is a known rate.
func FixedRateComputation(rate float64) RateComputation {
	return RateComputation{Kind: FixedRate, Fixed: rate}
}

// IborRateComputation observes a term index.
func IborRateComputation(obs rates.IborObservation) RateComputation {
	return RateComputation{Kind: IborRate, Ibor: obs}
}

// OvernightRateComputation compounds an overnight index.
func OvernightRateComputation(obs rates.OvernightObservation) RateComputation {
	return RateComputation{Kind: OvernightRate, Overnight: obs}
}

// RatePeriod is one accrual period paying Notional × YearFraction × (rate + Spread).
type RatePeriod struct {
	StartDate    time.Time
	EndDate      time.Time
	PaymentDate  time.Time
	YearFraction float64
	Currency     market.Currency
	// Notional is signed: negative when the amount is paid.
	Notional float64
	Rate     RateComputation
	// Spread is added to floating rates and ignored for fixed rates.
	Spread float64
}

// NotionalExchange is a single known payment, signed like RatePeriod.Notional.
type NotionalExchange struct {
	PaymentDate time.Time
	Currency    market.Currency
	Amount      float64
}

// ExpandedLeg is a leg resolved into periods and events.
type ExpandedLeg struct {
	Type       market.LegType
	PayReceive PayReceive
	Currency   market.Currency
	StartDate  time.Time
	EndDate    time.Time
	Periods    []RatePeriod
	Events     []NotionalExchange
}

// ExpandedSwap is a swap resolved into legs.
type ExpandedSwap struct {
	Legs []ExpandedLeg
}

// Currencies returns the leg currencies in sorted order.
func (s ExpandedSwap) Currencies() []market.Currency {
	seen := make(map[market.Currency]struct{}, 2)
	out := make([]market.Currency, 0, 2)
	for _, l := range s.Legs {
		if _, ok := seen[l.Currency]; !ok {
			seen[l.Currency] = struct{}{}
			out = append(out, l.Currency)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsCrossCurrency reports whether legs are in more than one currency.
func (s ExpandedSwap) IsCrossCurrency() bool {
	return len(s.Currencies()) > 1
}

// LegsOfType returns the legs of the given type in order.
func (s ExpandedSwap) LegsOfType(t market.LegType) []ExpandedLeg {
	var out []ExpandedLeg
	for _, l := range s.Legs {
		if l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

// FixedLeg returns the single fixed leg.
func (s ExpandedSwap) FixedLeg() (ExpandedLeg, error) {
	fixed := s.LegsOfType(market.LegFixed)
	switch len(fixed) {
	case 1:
		return fixed[0], nil
	case 0:
		return ExpandedLeg{}, fmt.Errorf("FixedLeg: swap has no fixed leg: %w", ErrInvalidProduct)
	default:
		return ExpandedLeg{}, fmt.Errorf("FixedLeg: swap has %d fixed legs: %w", len(fixed), ErrInvalidProduct)
	}
}

// StartDate is the earliest leg start.
func (s ExpandedSwap) StartDate() time.Time {
	var out time.Time
	for i, l := range s.Legs {
		if i == 0 || l.StartDate.Before(out) {
			out = l.StartDate
		}
	}
	return out
}

// EndDate is the latest leg end.
func (s ExpandedSwap) EndDate() time.Time {
	var out time.Time
	for _, l := range s.Legs {
		if l.EndDate.After(out) {
			out = l.EndDate
		}
	}
	return out
}

// LastPaymentDate is the latest payment across periods and events.
func (s ExpandedSwap) LastPaymentDate() time.Time {
	var out time.Time
	for _, l := range s.Legs {
		for _, p := range l.Periods {
			if p.PaymentDate.After(out) {
				out = p.PaymentDate
			}
		}
		for _, e := range l.Events {
			if e.PaymentDate.After(out) {
				out = e.PaymentDate
			}
		}
	}
	return out
}
