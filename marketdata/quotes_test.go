package marketdata_test

import (
	"errors"
	"testing"
	"time"

	"github.com/meenmo/ratekit/marketdata"
)

func TestQuotes_Missing(t *testing.T) {
	t.Parallel()

	q := marketdata.Quotes{"USD-OIS-1Y": 0.05}
	if v, err := q.Quote("USD-OIS-1Y"); err != nil || v != 0.05 {
		t.Fatalf("Quote mismatch: got %v, %v", v, err)
	}
	if _, err := q.Quote("USD-OIS-2Y"); !errors.Is(err, marketdata.ErrMissingQuote) {
		t.Fatalf("expected ErrMissingQuote, got %v", err)
	}
}

func TestTimeSeries_RateOn(t *testing.T) {
	t.Parallel()

	ts, err := marketdata.NewTimeSeries(map[string]float64{"2024-03-15": 0.0531})
	if err != nil {
		t.Fatalf("NewTimeSeries error: %v", err)
	}
	if v, ok := ts.RateOn(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)); !ok || v != 0.0531 {
		t.Fatalf("RateOn mismatch: got %v, %v", v, ok)
	}
	if _, ok := ts.RateOn(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)); ok {
		t.Fatalf("expected no fixing")
	}
	if _, err := marketdata.NewTimeSeries(map[string]float64{"15/03/2024": 1}); err == nil {
		t.Fatalf("expected parse error")
	}
}
