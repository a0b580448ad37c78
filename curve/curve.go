// Package curve binds named curve definitions to interpolated knots.
package curve

import (
	"fmt"
	"math"

	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/market"
)

// ValueType says what a curve's y-values represent.
type ValueType string

const (
	// ZeroRate curves hold continuously compounded zero rates.
	ZeroRate ValueType = "ZeroRate"
	// DiscountFactor curves hold discount factors.
	DiscountFactor ValueType = "DiscountFactor"
)

// minTime guards zero-rate conversions at the valuation date.
const minTime = 1e-10

// Metadata describes a curve independently of its values.
type Metadata struct {
	Name         string
	ValueType    ValueType
	DayCount     market.DayCount
	Interpolator interp.Interpolator
	Left         interp.Extrapolator
	Right        interp.Extrapolator
	// NodeLabels optionally names each node, for example by instrument tenor.
	NodeLabels []string
}

// Curve is an immutable named curve of time in years from the valuation date.
type Curve struct {
	meta  Metadata
	bound *interp.Bound
	// first knot, cached for the short end of discount-factor curves
	x0, y0 float64
}

// New binds y-values at the knots x.
func New(meta Metadata, x, y []float64) (*Curve, error) {
	switch meta.ValueType {
	case ZeroRate, DiscountFactor:
	default:
		return nil, fmt.Errorf("curve.New: %s: unknown value type %q", meta.Name, meta.ValueType)
	}
	if meta.NodeLabels != nil && len(meta.NodeLabels) != len(x) {
		return nil, fmt.Errorf("curve.New: %s: %d labels for %d nodes", meta.Name, len(meta.NodeLabels), len(x))
	}
	b, err := meta.Interpolator.Bind(x, y, meta.Left, meta.Right)
	if err != nil {
		return nil, fmt.Errorf("curve.New: %s: %w", meta.Name, err)
	}
	return &Curve{meta: meta, bound: b, x0: x[0], y0: y[0]}, nil
}

// WithParameters returns a curve with the same metadata and knots but new y-values.
func (c *Curve) WithParameters(y []float64) (*Curve, error) {
	return New(c.meta, c.bound.X(), y)
}

// Name returns the curve name.
func (c *Curve) Name() string { return c.meta.Name }

// Metadata returns the curve metadata.
func (c *Curve) Metadata() Metadata { return c.meta }

// X returns the knot times.
func (c *Curve) X() []float64 { return c.bound.X() }

// Y returns the knot values.
func (c *Curve) Y() []float64 { return c.bound.Y() }

// ParameterCount returns the number of nodes.
func (c *Curve) ParameterCount() int { return c.bound.Len() }

// YValue evaluates the curve.
func (c *Curve) YValue(t float64) float64 { return c.bound.Value(t) }

// FirstDerivative evaluates dy/dt.
func (c *Curve) FirstDerivative(t float64) float64 { return c.bound.FirstDerivative(t) }

// NodeSensitivities returns dy(t)/dy_j.
func (c *Curve) NodeSensitivities(t float64) []float64 { return c.bound.NodeSensitivities(t) }

// DiscountFactor returns the discount factor at t.
//
// A discount-factor curve is anchored at DF(0) = 1: before its first knot it
// holds the first knot's zero rate, so DF(t) = y0^(t/x0).
func (c *Curve) DiscountFactor(t float64) float64 {
	if c.meta.ValueType == DiscountFactor {
		if t <= 0 {
			return 1
		}
		if x0, y0, ok := c.shortEnd(t); ok {
			return math.Exp(math.Log(y0) * t / x0)
		}
		return c.bound.Value(t)
	}
	return math.Exp(-c.bound.Value(t) * t)
}

// shortEnd reports whether t falls between the valuation date and the first
// knot of a discount-factor curve, and returns that knot.
func (c *Curve) shortEnd(t float64) (x0, y0 float64, ok bool) {
	if t <= 0 || c.x0 <= 0 || t >= c.x0 {
		return 0, 0, false
	}
	return c.x0, c.y0, true
}

// ZeroRate returns the continuously compounded zero rate at t.
func (c *Curve) ZeroRate(t float64) float64 {
	if c.meta.ValueType == ZeroRate {
		return c.bound.Value(t)
	}
	t = math.Max(t, minTime)
	return -math.Log(c.DiscountFactor(t)) / t
}

// ZeroRateNodeSensitivities returns dr(t)/dy_j for every node j.
func (c *Curve) ZeroRateNodeSensitivities(t float64) []float64 {
	if c.meta.ValueType == ZeroRate {
		return c.bound.NodeSensitivities(t)
	}
	if t <= 0 {
		return make([]float64, c.bound.Len())
	}
	if x0, y0, ok := c.shortEnd(t); ok {
		sens := make([]float64, c.bound.Len())
		sens[0] = -1 / (x0 * y0)
		return sens
	}
	sens := c.bound.NodeSensitivities(t)
	scale := -1 / (t * c.DiscountFactor(t))
	for j := range sens {
		sens[j] *= scale
	}
	return sens
}
