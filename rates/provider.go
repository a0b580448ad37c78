// Package rates exposes calibrated curves as an immutable rates provider.
package rates

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/marketdata"
	"github.com/meenmo/ratekit/sensitivity"
	"github.com/meenmo/ratekit/utils"
)

// ErrCurveNotFound is returned when no curve is assigned to a currency or index.
var ErrCurveNotFound = errors.New("curve not found")

// TimeBasis is the day count used to turn dates into curve times.
const TimeBasis = market.Act365F

// Provider is a frozen set of curves for one valuation date.
type Provider struct {
	valuationDate time.Time
	curves        map[string]*curve.Curve
	discount      map[market.Currency]string
	forward       map[market.Index]string
	fixings       map[market.Index]marketdata.TimeSeries
}

// Config assigns curve roles. Curve names must refer to Curves.
type Config struct {
	ValuationDate time.Time
	Curves        []*curve.Curve
	Discount      map[market.Currency]string
	Forward       map[market.Index]string
	Fixings       map[market.Index]marketdata.TimeSeries
}

// New builds a provider, copying the configuration.
func New(cfg Config) (*Provider, error) {
	p := &Provider{
		valuationDate: utils.DateOnly(cfg.ValuationDate),
		curves:        make(map[string]*curve.Curve, len(cfg.Curves)),
		discount:      make(map[market.Currency]string, len(cfg.Discount)),
		forward:       make(map[market.Index]string, len(cfg.Forward)),
		fixings:       make(map[market.Index]marketdata.TimeSeries, len(cfg.Fixings)),
	}
	for _, c := range cfg.Curves {
		if _, dup := p.curves[c.Name()]; dup {
			return nil, fmt.Errorf("rates.New: duplicate curve %s", c.Name())
		}
		p.curves[c.Name()] = c
	}
	for ccy, name := range cfg.Discount {
		if _, ok := p.curves[name]; !ok {
			return nil, fmt.Errorf("rates.New: discount curve %s for %s: %w", name, ccy, ErrCurveNotFound)
		}
		p.discount[ccy] = name
	}
	for idx, name := range cfg.Forward {
		if _, ok := p.curves[name]; !ok {
			return nil, fmt.Errorf("rates.New: forward curve %s for %s: %w", name, idx, ErrCurveNotFound)
		}
		p.forward[idx] = name
	}
	for idx, ts := range cfg.Fixings {
		p.fixings[idx] = ts
	}
	return p, nil
}

// WithCurves returns a provider with the named curves replaced.
func (p *Provider) WithCurves(curves ...*curve.Curve) (*Provider, error) {
	out := &Provider{
		valuationDate: p.valuationDate,
		curves:        make(map[string]*curve.Curve, len(p.curves)),
		discount:      p.discount,
		forward:       p.forward,
		fixings:       p.fixings,
	}
	for name, c := range p.curves {
		out.curves[name] = c
	}
	for _, c := range curves {
		if _, ok := out.curves[c.Name()]; !ok {
			return nil, fmt.Errorf("Provider.WithCurves: %s: %w", c.Name(), ErrCurveNotFound)
		}
		out.curves[c.Name()] = c
	}
	return out, nil
}

// ValuationDate returns the valuation date.
func (p *Provider) ValuationDate() time.Time { return p.valuationDate }

// RelativeTime converts a date to a curve time.
func (p *Provider) RelativeTime(date time.Time) float64 {
	return TimeBasis.YearFraction(p.valuationDate, date)
}

// Curve returns a curve by name.
func (p *Provider) Curve(name string) (*curve.Curve, bool) {
	c, ok := p.curves[name]
	return c, ok
}

// Curves returns all curves sorted by name.
func (p *Provider) Curves() []*curve.Curve {
	out := make([]*curve.Curve, 0, len(p.curves))
	for _, c := range p.curves {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// DiscountCurve returns the curve discounting ccy cashflows.
func (p *Provider) DiscountCurve(ccy market.Currency) (*curve.Curve, error) {
	name, ok := p.discount[ccy]
	if !ok {
		return nil, fmt.Errorf("DiscountCurve: %s: %w", ccy, ErrCurveNotFound)
	}
	return p.curves[name], nil
}

// ForwardCurve returns the curve projecting index.
func (p *Provider) ForwardCurve(index market.Index) (*curve.Curve, error) {
	name, ok := p.forward[index]
	if !ok {
		return nil, fmt.Errorf("ForwardCurve: %s: %w", index, ErrCurveNotFound)
	}
	return p.curves[name], nil
}

// DiscountFactor returns the ccy discount factor to date.
func (p *Provider) DiscountFactor(ccy market.Currency, date time.Time) (float64, error) {
	c, err := p.DiscountCurve(ccy)
	if err != nil {
		return 0, err
	}
	return c.DiscountFactor(p.RelativeTime(date)), nil
}

// DiscountFactorSensitivity returns dDF(date)/dr(date) as a zero-rate point.
func (p *Provider) DiscountFactorSensitivity(ccy market.Currency, date time.Time) (sensitivity.Builder, error) {
	c, err := p.DiscountCurve(ccy)
	if err != nil {
		return sensitivity.None(), err
	}
	t := p.RelativeTime(date)
	return sensitivity.ZeroRatePoint(ccy, t, -t*c.DiscountFactor(t)), nil
}

// ZeroRates reports the zero rates of a curve at the given times.
func (p *Provider) ZeroRates(name string, times []float64) ([]float64, error) {
	c, ok := p.curves[name]
	if !ok {
		return nil, fmt.Errorf("ZeroRates: %s: %w", name, ErrCurveNotFound)
	}
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = c.ZeroRate(t)
	}
	return out, nil
}
