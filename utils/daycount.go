package utils

import (
	"time"
)

// YearFraction computes year fraction between two dates using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F, ACT/ACT ISDA, 30E/360, 30/360. Unknown
// conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	switch convention {
	case "ACT/360":
		return Days(start, end) / 360.0
	case "ACT/ACT", "ACT/ACT ISDA":
		return actActISDA(start, end)
	case "30E/360":
		// Eurobond basis: both day-of-month values capped at 30.
		d1 := min(start.Day(), 30)
		d2 := min(end.Day(), 30)
		return thirty360(start, end, d1, d2)
	case "30/360":
		// Bond basis: D2 capped only when D1 was.
		d1 := min(start.Day(), 30)
		d2 := end.Day()
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		return thirty360(start, end, d1, d2)
	default:
		return Days(start, end) / 365.0
	}
}

func thirty360(start, end time.Time, d1, d2 int) float64 {
	y1, m1 := start.Year(), int(start.Month())
	y2, m2 := end.Year(), int(end.Month())
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
}

func actActISDA(start, end time.Time) float64 {
	if end.Before(start) {
		return -actActISDA(end, start)
	}
	if start.Year() == end.Year() {
		return Days(start, end) / daysInYear(start.Year())
	}
	nextYear := time.Date(start.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC)
	thisYear := time.Date(end.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return Days(start, nextYear)/daysInYear(start.Year()) +
		float64(end.Year()-start.Year()-1) +
		Days(thisYear, end)/daysInYear(end.Year())
}

func daysInYear(y int) float64 {
	if (y%4 == 0 && y%100 != 0) || y%400 == 0 {
		return 366
	}
	return 365
}
