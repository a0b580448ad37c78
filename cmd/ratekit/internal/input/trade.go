package input

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/meenmo/ratekit/calibration"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/swap"
	"github.com/meenmo/ratekit/swaption"
	"github.com/meenmo/ratekit/utils"
)

// PricingProvider calibrates the pricing group.
func (d *Document) PricingProvider(log *slog.Logger) (*rates.Provider, error) {
	valuationDate, err := d.Valuation()
	if err != nil {
		return nil, err
	}
	quotes, err := d.MarketQuotes()
	if err != nil {
		return nil, err
	}
	fixings, err := d.MarketFixings()
	if err != nil {
		return nil, err
	}
	group, err := d.PricingGroupDefinition()
	if err != nil {
		return nil, err
	}
	cal, err := calibration.New(d.SolverConfig(), calibration.WithLogger(log))
	if err != nil {
		return nil, err
	}
	prov, err := cal.Calibrate(group, valuationDate, quotes, fixings)
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}
	return prov, nil
}

// SwapTerms resolves the swap section against the valuation date.
func (d *Document) SwapTerms() (swap.FixedFloatTerms, error) {
	s := d.Swap
	if s == nil {
		return swap.FixedFloatTerms{}, fmt.Errorf("swap is required")
	}
	valuationDate, err := d.Valuation()
	if err != nil {
		return swap.FixedFloatTerms{}, err
	}
	conv, err := market.LookupSwapConvention(strings.ToUpper(strings.TrimSpace(s.Convention)))
	if err != nil {
		return swap.FixedFloatTerms{}, err
	}
	dir, err := swap.ParsePayReceive(strings.TrimSpace(s.Direction))
	if err != nil {
		return swap.FixedFloatTerms{}, fmt.Errorf("invalid direction %q (use PAY or REC)", s.Direction)
	}
	if s.Notional == 0 {
		return swap.FixedFloatTerms{}, fmt.Errorf("notional is required")
	}
	terms := swap.FixedFloatTerms{
		Convention: conv,
		Direction:  dir,
		TradeDate:  valuationDate,
		Notional:   s.Notional,
		FixedRate:  s.FixedRate,
		Spread:     s.Spread,
	}
	if s.Forward != "" {
		if terms.Forward, err = market.ParseTenor(s.Forward); err != nil {
			return terms, fmt.Errorf("invalid forward: %w", err)
		}
	}
	if s.Tenor != "" {
		if terms.Tenor, err = market.ParseTenor(s.Tenor); err != nil {
			return terms, fmt.Errorf("invalid tenor: %w", err)
		}
	}
	if s.StartDate != "" || s.EndDate != "" {
		if terms.StartDate, err = utils.ParseDate(s.StartDate); err != nil {
			return terms, fmt.Errorf("invalid start_date: %w", err)
		}
		if terms.EndDate, err = utils.ParseDate(s.EndDate); err != nil {
			return terms, fmt.Errorf("invalid end_date: %w", err)
		}
	}
	return terms, nil
}

// parseDateTime accepts RFC 3339 timestamps or plain dates at midnight UTC.
func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return utils.ParseDate(s)
}

// SwaptionTrade builds the swaption on the swap section and its surface.
func (d *Document) SwaptionTrade() (swaption.Swaption, *swaption.GridSurface, error) {
	o := d.Swaption
	if o == nil {
		return swaption.Swaption{}, nil, fmt.Errorf("swaption is required")
	}
	terms, err := d.SwapTerms()
	if err != nil {
		return swaption.Swaption{}, nil, err
	}
	underlying, err := terms.Expand()
	if err != nil {
		return swaption.Swaption{}, nil, err
	}
	position := swaption.Long
	if o.Position != "" {
		if position, err = swaption.ParseLongShort(strings.ToUpper(o.Position)); err != nil {
			return swaption.Swaption{}, nil, err
		}
	}
	expiry, err := parseDateTime(o.Expiry)
	if err != nil {
		return swaption.Swaption{}, nil, fmt.Errorf("invalid expiry: %w", err)
	}

	valuationTime, err := d.Valuation()
	if err != nil {
		return swaption.Swaption{}, nil, err
	}
	if o.Surface.ValuationTime != "" {
		if valuationTime, err = parseDateTime(o.Surface.ValuationTime); err != nil {
			return swaption.Swaption{}, nil, fmt.Errorf("invalid surface valuation_time: %w", err)
		}
	}
	model, err := swaption.ParseModel(strings.ToUpper(o.Surface.Model))
	if err != nil {
		return swaption.Swaption{}, nil, err
	}
	surface, err := swaption.NewGridSurface(swaption.GridConfig{
		Name:          o.Surface.Name,
		Model:         model,
		ValuationTime: valuationTime,
		Expiries:      o.Surface.Expiries,
		Tenors:        o.Surface.Tenors,
		Vols:          o.Surface.Vols,
	})
	if err != nil {
		return swaption.Swaption{}, nil, err
	}
	return swaption.Swaption{
		LongShort:  position,
		Settlement: swaption.Physical,
		Expiry:     expiry,
		Underlying: underlying,
	}, surface, nil
}
