package calendar

import (
	"fmt"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	TARGET CalendarID = "TARGET"
	JPN    CalendarID = "JPN"
	USD    CalendarID = "USD"
	GBP    CalendarID = "GBP"
	// WeekendsOnly treats every weekday as a business day.
	WeekendsOnly CalendarID = "WEEKENDS"
)

// Parse resolves a configured calendar name.
func Parse(name string) (CalendarID, error) {
	switch c := CalendarID(name); c {
	case TARGET, JPN, USD, GBP, WeekendsOnly:
		return c, nil
	default:
		return "", fmt.Errorf("calendar.Parse: unknown calendar %q", name)
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case TARGET:
		return isTargetHoliday(t)
	case JPN:
		return isJapanHoliday(t)
	case USD:
		return isUSHoliday(t)
	case GBP:
		return isUKHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday rules.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// roll moves t by step days until it lands on a business day.
func roll(cal CalendarID, t time.Time, step int) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, step)
	}
	return t
}

// Adjust applies Modified Following: roll forward unless that crosses into
// the next month, in which case roll back.
func Adjust(cal CalendarID, t time.Time) time.Time {
	if next := roll(cal, t, 1); next.Month() == t.Month() {
		return next
	}
	return roll(cal, t, -1)
}

// AdjustFollowing rolls forward to the next business day.
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	return roll(cal, t, 1)
}

// AddBusinessDays moves n business days; negative n moves backwards. Zero
// returns t unchanged even on a holiday.
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	for ; n > 0; n-- {
		t = roll(cal, t.AddDate(0, 0, step), step)
	}
	return t
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsMonthEnd reports whether t is the last calendar day of its month.
func IsMonthEnd(t time.Time) bool {
	return t.Day() == daysInMonth(t.Year(), t.Month())
}
