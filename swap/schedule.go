package swap

import (
	"fmt"
	"time"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/utils"
)

// SchedulePeriod is one adjusted accrual period of a leg.
type SchedulePeriod struct {
	StartDate   time.Time
	EndDate     time.Time
	PayDate     time.Time
	FixingDate  time.Time
	AccrualDays int
}

// stubToleranceDays is the largest front stub folded into the next period.
const stubToleranceDays = 7

// SpotEffectiveMaturity computes spot (trade + spotLag business days), the
// effective date (spot + forward, adjusted following) and the maturity
// (effective + tenor, adjusted following).
func SpotEffectiveMaturity(tradeDate time.Time, cal calendar.CalendarID, spotLag int, forward, tenor market.Tenor) (spot, effective, maturity time.Time) {
	spot = calendar.AddBusinessDays(cal, tradeDate, spotLag)
	effective = spot
	if !forward.IsZero() {
		effective = calendar.AdjustFollowing(cal, forward.AddTo(spot))
	}
	maturity = calendar.AdjustFollowing(cal, tenor.AddTo(effective))
	return spot, effective, maturity
}

// GenerateSchedule builds the adjusted periods of a leg between effective and maturity.
//
// ScheduleBackward rolls from maturity and leaves any stub at the front; a front
// stub of a week or less is merged into the first regular period. Otherwise
// periods roll forward from effective with any stub at the back. FreqTerm
// yields a single period.
func GenerateSchedule(effective, maturity time.Time, leg market.LegConvention) ([]SchedulePeriod, error) {
	if !maturity.After(effective) {
		return nil, fmt.Errorf("GenerateSchedule: maturity %s not after effective %s",
			utils.FormatDate(maturity), utils.FormatDate(effective))
	}
	if leg.PayFrequency < 0 {
		return nil, fmt.Errorf("GenerateSchedule: unsupported pay frequency %d", leg.PayFrequency)
	}

	var dates []time.Time
	switch {
	case leg.PayFrequency == market.FreqTerm:
		dates = []time.Time{effective, maturity}
	case leg.ScheduleDirection == market.ScheduleBackward:
		dates = backwardDates(effective, maturity, leg)
	default:
		dates = forwardDates(effective, maturity, leg)
	}
	return adjustPeriods(dates, leg), nil
}

func roll(t time.Time, months int, rc market.RollConvention) time.Time {
	if rc == market.BackwardEOM {
		return utils.AddMonth(t, months)
	}
	return t.AddDate(0, months, 0)
}

// forwardDates rolls from effective; the unadjusted base date is kept to avoid drift.
func forwardDates(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.PayFrequency)
	dates := []time.Time{effective}
	for k := 1; ; k++ {
		next := roll(effective, k*months, leg.RollConvention)
		if !next.Before(maturity) {
			break
		}
		dates = append(dates, next)
	}
	return append(dates, maturity)
}

func backwardDates(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.PayFrequency)
	rev := []time.Time{maturity}
	for k := 1; ; k++ {
		prev := roll(maturity, -k*months, leg.RollConvention)
		if !prev.After(effective) {
			break
		}
		rev = append(rev, prev)
	}
	if len(rev) > 1 {
		first := rev[len(rev)-1]
		if d := int(utils.Days(effective, first)); d > 0 && d <= stubToleranceDays {
			rev = rev[:len(rev)-1]
		}
	}
	rev = append(rev, effective)
	dates := make([]time.Time, len(rev))
	for i, d := range rev {
		dates[len(rev)-1-i] = d
	}
	return dates
}

func adjustPeriods(dates []time.Time, leg market.LegConvention) []SchedulePeriod {
	periods := make([]SchedulePeriod, 0, len(dates)-1)
	for i := 0; i+1 < len(dates); i++ {
		start := calendar.Adjust(leg.Calendar, dates[i])
		end := calendar.Adjust(leg.Calendar, dates[i+1])
		if i > 0 {
			// Chain periods so adjusted boundaries coincide.
			start = periods[i-1].EndDate
		}
		periods = append(periods, SchedulePeriod{
			StartDate:   start,
			EndDate:     end,
			PayDate:     calendar.AddBusinessDays(leg.Calendar, end, leg.PayDelayDays),
			FixingDate:  calendar.AddBusinessDays(leg.Calendar, start, -leg.FixingLagDays),
			AccrualDays: int(utils.Days(start, end)),
		})
	}
	return periods
}
