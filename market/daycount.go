package market

import (
	"fmt"
	"time"

	"github.com/meenmo/ratekit/utils"
)

// DayCount enum.
type DayCount string

const (
	Act360     DayCount = "ACT/360"
	Act365F    DayCount = "ACT/365F"
	ActActISDA DayCount = "ACT/ACT ISDA"
	Dc30360    DayCount = "30/360"
	Dc30E360   DayCount = "30E/360"
)

// ParseDayCount resolves a configured day count name.
func ParseDayCount(name string) (DayCount, error) {
	switch d := DayCount(name); d {
	case Act360, Act365F, ActActISDA, Dc30360, Dc30E360:
		return d, nil
	default:
		return "", fmt.Errorf("ParseDayCount: unknown day count %q", name)
	}
}

// YearFraction returns the accrual fraction between two dates.
func (d DayCount) YearFraction(start, end time.Time) float64 {
	return utils.YearFraction(start, end, string(d))
}
