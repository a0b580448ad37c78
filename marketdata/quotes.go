// Package marketdata holds the already-parsed market inputs handed to calibration.
package marketdata

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/ratekit/utils"
)

var (
	// ErrMissingQuote is returned when a quote id has no value.
	ErrMissingQuote = errors.New("missing quote")
	// ErrMissingFixing is returned when a fixing date has no value.
	ErrMissingFixing = errors.New("missing fixing")
)

// Quotes maps instrument identifiers to quoted values (rates as decimals).
type Quotes map[string]float64

// Quote returns the quote for id.
func (q Quotes) Quote(id string) (float64, error) {
	v, ok := q[id]
	if !ok {
		return 0, fmt.Errorf("Quotes.Quote: %q: %w", id, ErrMissingQuote)
	}
	return v, nil
}

// IDs returns the quote identifiers in sorted order.
func (q Quotes) IDs() []string {
	out := make([]string, 0, len(q))
	for id := range q {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// TimeSeries is a date-keyed history of index fixings.
type TimeSeries struct {
	values map[string]float64
}

// NewTimeSeries builds a series from YYYY-MM-DD keyed fixings.
func NewTimeSeries(fixings map[string]float64) (TimeSeries, error) {
	values := make(map[string]float64, len(fixings))
	for k, v := range fixings {
		d, err := utils.ParseDate(k)
		if err != nil {
			return TimeSeries{}, fmt.Errorf("NewTimeSeries: %w", err)
		}
		values[utils.FormatDate(d)] = v
	}
	return TimeSeries{values: values}, nil
}

// RateOn returns the fixing published for date.
func (s TimeSeries) RateOn(date time.Time) (float64, bool) {
	v, ok := s.values[utils.FormatDate(date)]
	return v, ok
}

// Len returns the number of fixings.
func (s TimeSeries) Len() int { return len(s.values) }
