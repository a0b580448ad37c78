package calendar

import "time"

// easterSunday returns Gregorian Easter Sunday (anonymous Gregorian algorithm).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// nthWeekday returns the n-th given weekday of the month; n < 0 counts from the end.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	if n > 0 {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		offset := (int(wd) - int(first.Weekday()) + 7) % 7
		return first.AddDate(0, 0, offset+7*(n-1))
	}
	last := time.Date(year, month, daysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset-7*(-n-1))
}

// observed moves a weekend holiday to the adjacent Friday or Monday.
func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	}
	return t
}

func isTargetHoliday(t time.Time) bool {
	m, d := t.Month(), t.Day()
	if (m == time.January && d == 1) || (m == time.May && d == 1) ||
		(m == time.December && (d == 25 || d == 26)) {
		return true
	}
	easter := easterSunday(t.Year())
	return sameDay(t, easter.AddDate(0, 0, -2)) || sameDay(t, easter.AddDate(0, 0, 1))
}

func isUKHoliday(t time.Time) bool {
	y := t.Year()
	easter := easterSunday(y)
	switch {
	case sameDay(t, observed(time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC))):
		return true
	case sameDay(t, easter.AddDate(0, 0, -2)), sameDay(t, easter.AddDate(0, 0, 1)):
		return true
	case sameDay(t, nthWeekday(y, time.May, time.Monday, 1)),
		sameDay(t, nthWeekday(y, time.May, time.Monday, -1)),
		sameDay(t, nthWeekday(y, time.August, time.Monday, -1)):
		return true
	}
	christmas := time.Date(y, time.December, 25, 0, 0, 0, 0, time.UTC)
	boxing := christmas.AddDate(0, 0, 1)
	switch christmas.Weekday() {
	case time.Saturday:
		christmas, boxing = christmas.AddDate(0, 0, 2), boxing.AddDate(0, 0, 2)
	case time.Sunday:
		christmas = christmas.AddDate(0, 0, 2)
	case time.Friday:
		boxing = boxing.AddDate(0, 0, 2)
	}
	return sameDay(t, christmas) || sameDay(t, boxing)
}

func isUSHoliday(t time.Time) bool {
	y := t.Year()
	fixed := []time.Time{
		time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.June, 19, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.July, 4, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.November, 11, 0, 0, 0, 0, time.UTC),
		time.Date(y, time.December, 25, 0, 0, 0, 0, time.UTC),
	}
	for _, h := range fixed {
		if h.Month() == time.June && y < 2022 {
			continue
		}
		if sameDay(t, observed(h)) {
			return true
		}
	}
	floating := []time.Time{
		nthWeekday(y, time.January, time.Monday, 3),
		nthWeekday(y, time.February, time.Monday, 3),
		nthWeekday(y, time.May, time.Monday, -1),
		nthWeekday(y, time.September, time.Monday, 1),
		nthWeekday(y, time.October, time.Monday, 2),
		nthWeekday(y, time.November, time.Thursday, 4),
	}
	for _, h := range floating {
		if sameDay(t, h) {
			return true
		}
	}
	return false
}

// isJapanHoliday covers the fixed-date national holidays and the year-end closure.
func isJapanHoliday(t time.Time) bool {
	m, d := t.Month(), t.Day()
	switch {
	case m == time.January && d <= 3, m == time.December && d == 31:
		return true
	case m == time.February && (d == 11 || d == 23),
		m == time.April && d == 29,
		m == time.May && d >= 3 && d <= 5,
		m == time.November && (d == 3 || d == 23):
		return true
	}
	y := t.Year()
	return sameDay(t, nthWeekday(y, time.January, time.Monday, 2)) ||
		sameDay(t, nthWeekday(y, time.July, time.Monday, 3)) ||
		sameDay(t, nthWeekday(y, time.September, time.Monday, 3)) ||
		sameDay(t, nthWeekday(y, time.October, time.Monday, 2))
}
