package market

import (
	"fmt"
	"sort"

	"github.com/meenmo/ratekit/calendar"
)

// SwapConvention pairs the fixed and floating leg conventions of a market
// standard fixed-vs-floating swap.
type SwapConvention struct {
	Name        string
	FixedLeg    LegConvention
	FloatLeg    LegConvention
	SpotLagDays int
}

// Currency returns the swap currency.
func (c SwapConvention) Currency() Currency {
	return c.FixedLeg.Currency
}

func fixedLeg(ccy Currency, dc DayCount, freq Frequency, payDelay int, cal calendar.CalendarID) LegConvention {
	return LegConvention{
		LegType:           LegFixed,
		Currency:          ccy,
		DayCount:          dc,
		PayFrequency:      freq,
		PayDelayDays:      payDelay,
		Calendar:          cal,
		RollConvention:    BackwardEOM,
		ScheduleDirection: ScheduleBackward,
	}
}

func overnightLeg(index Index, freq Frequency, payDelay int) LegConvention {
	conv := indexConventions[index]
	return LegConvention{
		LegType:           LegOvernight,
		Currency:          conv.Currency,
		Index:             index,
		DayCount:          conv.DayCount,
		PayFrequency:      freq,
		PayDelayDays:      payDelay,
		Calendar:          conv.Calendar,
		RollConvention:    BackwardEOM,
		ScheduleDirection: ScheduleBackward,
	}
}

func iborLeg(index Index, cal calendar.CalendarID) LegConvention {
	conv := indexConventions[index]
	return LegConvention{
		LegType:           LegIbor,
		Currency:          conv.Currency,
		Index:             index,
		DayCount:          conv.DayCount,
		PayFrequency:      Frequency(conv.TenorMonths),
		FixingLagDays:     conv.FixingLagDays,
		Calendar:          cal,
		RollConvention:    BackwardEOM,
		ScheduleDirection: ScheduleBackward,
	}
}

func fixedOvernight(name string, index Index, dc DayCount, payDelay, spotLag int) SwapConvention {
	conv := indexConventions[index]
	return SwapConvention{
		Name:        name,
		FixedLeg:    fixedLeg(conv.Currency, dc, FreqAnnual, payDelay, conv.Calendar),
		FloatLeg:    overnightLeg(index, FreqAnnual, payDelay),
		SpotLagDays: spotLag,
	}
}

func fixedIbor(name string, index Index, dc DayCount, freq Frequency, cal calendar.CalendarID) SwapConvention {
	conv := indexConventions[index]
	return SwapConvention{
		Name:        name,
		FixedLeg:    fixedLeg(conv.Currency, dc, freq, 0, cal),
		FloatLeg:    iborLeg(index, cal),
		SpotLagDays: 2,
	}
}

// swapConventions is the standard convention table, keyed by market name.
var swapConventions = func() map[string]SwapConvention {
	list := []SwapConvention{
		fixedOvernight("USD-FIXED-1Y-SOFR-OIS", SOFR, Act360, 2, 2),
		fixedOvernight("EUR-FIXED-1Y-ESTR-OIS", ESTR, Act360, 1, 2),
		fixedOvernight("GBP-FIXED-1Y-SONIA-OIS", SONIA, Act365F, 0, 0),
		fixedOvernight("JPY-FIXED-1Y-TONAR-OIS", TONAR, Act365F, 2, 2),
		fixedIbor("USD-FIXED-6M-LIBOR-3M", USDLIBOR3M, Dc30360, FreqSemi, calendar.USD),
		fixedIbor("EUR-FIXED-1Y-EURIBOR-3M", EURIBOR3M, Dc30360, FreqAnnual, calendar.TARGET),
		fixedIbor("EUR-FIXED-1Y-EURIBOR-6M", EURIBOR6M, Dc30360, FreqAnnual, calendar.TARGET),
		fixedIbor("JPY-FIXED-6M-TIBOR-6M", TIBOR6M, Act365F, FreqSemi, calendar.JPN),
	}
	out := make(map[string]SwapConvention, len(list))
	for _, c := range list {
		out[c.Name] = c
	}
	return out
}()

// LookupSwapConvention returns the named standard swap convention.
func LookupSwapConvention(name string) (SwapConvention, error) {
	c, ok := swapConventions[name]
	if !ok {
		return SwapConvention{}, fmt.Errorf("LookupSwapConvention: unknown convention %q", name)
	}
	return c, nil
}

// SwapConventionNames lists the standard convention names in sorted order.
func SwapConventionNames() []string {
	out := make([]string, 0, len(swapConventions))
	for name := range swapConventions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
