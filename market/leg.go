package market

import (
	"fmt"

	"github.com/meenmo/ratekit/calendar"
)

// LegType distinguishes fixed, term-index and overnight-compounded legs.
type LegType string

const (
	LegFixed     LegType = "FIXED"
	LegIbor      LegType = "IBOR"
	LegOvernight LegType = "OVERNIGHT"
)

// Frequency enumerates payment frequencies in months. FreqTerm pays once at maturity.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
	FreqTerm      Frequency = 0
)

// RollConvention for month-end handling.
type RollConvention string

const (
	RollNone    RollConvention = "NONE"
	BackwardEOM RollConvention = "BACKWARD_EOM"
)

// ScheduleDirection selects where regular periods are anchored.
type ScheduleDirection string

const (
	// ScheduleForward rolls from the start date; any stub is at the back.
	ScheduleForward ScheduleDirection = "FORWARD"
	// ScheduleBackward rolls from maturity; any stub is at the front.
	ScheduleBackward ScheduleDirection = "BACKWARD"
)

// LegConvention captures standard swap leg settings.
type LegConvention struct {
	LegType           LegType
	Currency          Currency
	Index             Index
	DayCount          DayCount
	PayFrequency      Frequency
	FixingLagDays     int
	PayDelayDays      int
	Calendar          calendar.CalendarID
	RollConvention    RollConvention
	ScheduleDirection ScheduleDirection
	// NotionalExchange adds initial and final notional payments.
	NotionalExchange bool
}

// Validate checks the fields needed to generate a schedule.
func (c LegConvention) Validate() error {
	switch c.LegType {
	case LegFixed:
	case LegIbor, LegOvernight:
		conv, err := c.Index.Convention()
		if err != nil {
			return fmt.Errorf("LegConvention.Validate: %w", err)
		}
		if conv.Overnight != (c.LegType == LegOvernight) {
			return fmt.Errorf("LegConvention.Validate: index %s does not match leg type %s", c.Index, c.LegType)
		}
		if conv.Currency != c.Currency {
			return fmt.Errorf("LegConvention.Validate: index %s is in %s, leg in %s", c.Index, conv.Currency, c.Currency)
		}
	default:
		return fmt.Errorf("LegConvention.Validate: unknown leg type %q", c.LegType)
	}
	if c.Currency == "" {
		return fmt.Errorf("LegConvention.Validate: missing currency")
	}
	if c.PayFrequency < 0 {
		return fmt.Errorf("LegConvention.Validate: negative pay frequency %d", c.PayFrequency)
	}
	if _, err := ParseDayCount(string(c.DayCount)); err != nil {
		return fmt.Errorf("LegConvention.Validate: %w", err)
	}
	return nil
}
