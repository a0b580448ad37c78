package market

import (
	"fmt"
	"sort"

	"github.com/meenmo/ratekit/calendar"
)

// Index identifies a floating-rate benchmark.
type Index string

const (
	SOFR       Index = "USD-SOFR"
	ESTR       Index = "EUR-ESTR"
	SONIA      Index = "GBP-SONIA"
	TONAR      Index = "JPY-TONAR"
	USDLIBOR3M Index = "USD-LIBOR-3M"
	EURIBOR3M  Index = "EUR-EURIBOR-3M"
	EURIBOR6M  Index = "EUR-EURIBOR-6M"
	TIBOR6M    Index = "JPY-TIBOR-6M"
)

// IndexConvention describes how an index fixes and accrues.
type IndexConvention struct {
	Currency  Currency
	Overnight bool
	// TenorMonths is the deposit tenor of a term index; zero for overnight indices.
	TenorMonths   int
	DayCount      DayCount
	Calendar      calendar.CalendarID
	FixingLagDays int
}

var indexConventions = map[Index]IndexConvention{
	SOFR:       {Currency: USD, Overnight: true, DayCount: Act360, Calendar: calendar.USD},
	ESTR:       {Currency: EUR, Overnight: true, DayCount: Act360, Calendar: calendar.TARGET},
	SONIA:      {Currency: GBP, Overnight: true, DayCount: Act365F, Calendar: calendar.GBP},
	TONAR:      {Currency: JPY, Overnight: true, DayCount: Act365F, Calendar: calendar.JPN},
	USDLIBOR3M: {Currency: USD, TenorMonths: 3, DayCount: Act360, Calendar: calendar.GBP, FixingLagDays: 2},
	EURIBOR3M:  {Currency: EUR, TenorMonths: 3, DayCount: Act360, Calendar: calendar.TARGET, FixingLagDays: 2},
	EURIBOR6M:  {Currency: EUR, TenorMonths: 6, DayCount: Act360, Calendar: calendar.TARGET, FixingLagDays: 2},
	TIBOR6M:    {Currency: JPY, TenorMonths: 6, DayCount: Act365F, Calendar: calendar.JPN, FixingLagDays: 2},
}

// Convention returns the index's conventions.
func (i Index) Convention() (IndexConvention, error) {
	c, ok := indexConventions[i]
	if !ok {
		return IndexConvention{}, fmt.Errorf("Index.Convention: unknown index %q", i)
	}
	return c, nil
}

// IsOvernight reports whether the index is an overnight rate.
func (i Index) IsOvernight() bool {
	return indexConventions[i].Overnight
}

// ParseIndex resolves a configured index name.
func ParseIndex(name string) (Index, error) {
	i := Index(name)
	if _, ok := indexConventions[i]; !ok {
		return "", fmt.Errorf("ParseIndex: unknown index %q", name)
	}
	return i, nil
}

// Indices lists the known indices in sorted order.
func Indices() []Index {
	out := make([]Index, 0, len(indexConventions))
	for i := range indexConventions {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}
