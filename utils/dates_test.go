package utils_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/ratekit/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonth_EndOfMonth(t *testing.T) {
	t.Parallel()

	got := utils.AddMonth(date(2024, 1, 31), 1)
	if want := date(2024, 2, 29); !got.Equal(want) {
		t.Fatalf("AddMonth mismatch: got %s want %s", utils.FormatDate(got), utils.FormatDate(want))
	}
	got = utils.AddMonth(date(2024, 3, 31), -1)
	if want := date(2024, 2, 29); !got.Equal(want) {
		t.Fatalf("AddMonth backward mismatch: got %s want %s", utils.FormatDate(got), utils.FormatDate(want))
	}
}

func TestMonthsBetween(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end time.Time
		want       int
	}{
		{date(2024, 1, 15), date(2029, 1, 15), 60},
		{date(2024, 1, 15), date(2029, 1, 17), 60},
		{date(2024, 1, 15), date(2028, 12, 31), 60},
		{date(2024, 1, 15), date(2024, 4, 1), 3},
	}
	for _, tc := range cases {
		if got := utils.MonthsBetween(tc.start, tc.end); got != tc.want {
			t.Fatalf("MonthsBetween(%s, %s) mismatch: got %d want %d", utils.FormatDate(tc.start), utils.FormatDate(tc.end), got, tc.want)
		}
	}
}

func TestYearFraction(t *testing.T) {
	t.Parallel()

	start := date(2024, 1, 31)
	end := date(2024, 7, 31)
	cases := []struct {
		convention string
		want       float64
	}{
		{"ACT/360", 182.0 / 360.0},
		{"ACT/365F", 182.0 / 365.0},
		{"30E/360", 0.5},
		{"30/360", 0.5},
		{"ACT/ACT ISDA", 182.0 / 366.0},
	}
	for _, tc := range cases {
		if got := utils.YearFraction(start, end, tc.convention); math.Abs(got-tc.want) > 1e-14 {
			t.Fatalf("YearFraction(%s) mismatch: got %.12f want %.12f", tc.convention, got, tc.want)
		}
	}
}
