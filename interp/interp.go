// Package interp turns knot sets into evaluable curves with node sensitivities.
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidData is returned when knots cannot be bound by the chosen scheme.
var ErrInvalidData = errors.New("invalid interpolation data")

// Interpolator names an interpolation scheme.
type Interpolator string

const (
	Linear                  Interpolator = "Linear"
	LogLinear               Interpolator = "LogLinear"
	NaturalCubic            Interpolator = "NaturalCubicSpline"
	LogNaturalCubicMonotone Interpolator = "LogNaturalCubicMonotone"
)

// Extrapolator names the rule used outside the knot range.
type Extrapolator string

const (
	ExtrapolateFlat   Extrapolator = "Flat"
	ExtrapolateLinear Extrapolator = "Linear"
)

// ParseInterpolator resolves a configured scheme name.
func ParseInterpolator(name string) (Interpolator, error) {
	switch Interpolator(name) {
	case Linear, LogLinear, NaturalCubic, LogNaturalCubicMonotone:
		return Interpolator(name), nil
	default:
		return "", fmt.Errorf("ParseInterpolator: unknown interpolator %q", name)
	}
}

// ParseExtrapolator resolves a configured extrapolator name.
func ParseExtrapolator(name string) (Extrapolator, error) {
	switch Extrapolator(name) {
	case ExtrapolateFlat, ExtrapolateLinear:
		return Extrapolator(name), nil
	default:
		return "", fmt.Errorf("ParseExtrapolator: unknown extrapolator %q", name)
	}
}

// isLog reports whether the scheme interpolates ln(y).
func (s Interpolator) isLog() bool {
	return s == LogLinear || s == LogNaturalCubicMonotone
}

// Bound is an interpolator bound to concrete knots. It is immutable.
type Bound struct {
	scheme      Interpolator
	left, right Extrapolator
	x, y        []float64
	pieces      *pieces
	log         bool

	leftDeriv, rightDeriv         float64
	leftDerivSens, rightDerivSens []float64
}

// Bind fits the scheme through (x, y) with the given extrapolators.
//
// x must be strictly increasing with at least two knots. Log schemes require y > 0.
func (s Interpolator) Bind(x, y []float64, left, right Extrapolator) (*Bound, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("Bind: %d x values but %d y values: %w", len(x), len(y), ErrInvalidData)
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("Bind: need at least 2 knots, got %d: %w", len(x), ErrInvalidData)
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("Bind: x not strictly increasing at index %d (%g <= %g): %w", i, x[i], x[i-1], ErrInvalidData)
		}
	}
	if _, err := ParseExtrapolator(string(left)); err != nil {
		return nil, err
	}
	if _, err := ParseExtrapolator(string(right)); err != nil {
		return nil, err
	}

	b := &Bound{
		scheme: s,
		left:   left,
		right:  right,
		x:      append([]float64(nil), x...),
		y:      append([]float64(nil), y...),
		log:    s.isLog(),
	}

	f := b.y
	if b.log {
		f = make([]float64, len(y))
		for i, v := range y {
			if !(v > 0) {
				return nil, fmt.Errorf("Bind: %s requires positive y, got %g at index %d: %w", s, v, i, ErrInvalidData)
			}
			f[i] = math.Log(v)
		}
	}

	switch s {
	case Linear, LogLinear:
		b.pieces = fitLinear(b.x, f)
	case NaturalCubic:
		p, err := fitNaturalCubic(b.x, f)
		if err != nil {
			return nil, err
		}
		b.pieces = p
	case LogNaturalCubicMonotone:
		p, err := fitMonotoneCubic(b.x, f)
		if err != nil {
			return nil, err
		}
		b.pieces = p
	default:
		return nil, fmt.Errorf("Bind: unknown interpolator %q", s)
	}

	n := len(x)
	b.leftDeriv = b.interiorDerivative(b.x[0])
	b.rightDeriv = b.interiorDerivative(b.x[n-1])
	_, b.leftDerivSens = b.interiorSensitivities(b.x[0])
	_, b.rightDerivSens = b.interiorSensitivities(b.x[n-1])
	return b, nil
}

// Scheme returns the interpolation scheme.
func (b *Bound) Scheme() Interpolator { return b.scheme }

// X returns a copy of the knot abscissae.
func (b *Bound) X() []float64 { return append([]float64(nil), b.x...) }

// Y returns a copy of the knot values.
func (b *Bound) Y() []float64 { return append([]float64(nil), b.y...) }

// Len returns the number of knots.
func (b *Bound) Len() int { return len(b.x) }

// Value evaluates the curve at x.
func (b *Bound) Value(x float64) float64 {
	n := len(b.x)
	switch {
	case x < b.x[0]:
		if b.left == ExtrapolateLinear {
			return b.y[0] + b.leftDeriv*(x-b.x[0])
		}
		return b.y[0]
	case x > b.x[n-1]:
		if b.right == ExtrapolateLinear {
			return b.y[n-1] + b.rightDeriv*(x-b.x[n-1])
		}
		return b.y[n-1]
	}
	if k, ok := b.knot(x); ok {
		return b.y[k]
	}
	i := b.pieces.interval(x)
	v, _ := b.pieces.eval(i, x-b.x[i])
	if b.log {
		return math.Exp(v)
	}
	return v
}

// FirstDerivative evaluates dValue/dx at x.
//
// At exactly the first or last knot the interior formula applies.
func (b *Bound) FirstDerivative(x float64) float64 {
	n := len(b.x)
	switch {
	case x < b.x[0]:
		if b.left == ExtrapolateLinear {
			return b.leftDeriv
		}
		return 0
	case x > b.x[n-1]:
		if b.right == ExtrapolateLinear {
			return b.rightDeriv
		}
		return 0
	}
	return b.interiorDerivative(x)
}

// NodeSensitivities returns dValue(x)/dy_j for every knot j.
func (b *Bound) NodeSensitivities(x float64) []float64 {
	n := len(b.x)
	switch {
	case x < b.x[0]:
		out := make([]float64, n)
		out[0] = 1
		if b.left == ExtrapolateLinear {
			dx := x - b.x[0]
			for j, g := range b.leftDerivSens {
				out[j] += g * dx
			}
		}
		return out
	case x > b.x[n-1]:
		out := make([]float64, n)
		out[n-1] = 1
		if b.right == ExtrapolateLinear {
			dx := x - b.x[n-1]
			for j, g := range b.rightDerivSens {
				out[j] += g * dx
			}
		}
		return out
	}
	if k, ok := b.knot(x); ok {
		out := make([]float64, n)
		out[k] = 1
		return out
	}
	sens, _ := b.interiorSensitivities(x)
	return sens
}

func (b *Bound) knot(x float64) (int, bool) {
	k := sort.SearchFloat64s(b.x, x)
	if k < len(b.x) && b.x[k] == x {
		return k, true
	}
	return 0, false
}

func (b *Bound) interiorDerivative(x float64) float64 {
	i := b.pieces.interval(x)
	v, d := b.pieces.eval(i, x-b.x[i])
	if b.log {
		return math.Exp(v) * d
	}
	return d
}

// interiorSensitivities returns the node sensitivities of the value and of the
// first derivative for x inside the knot range.
func (b *Bound) interiorSensitivities(x float64) (value, deriv []float64) {
	i := b.pieces.interval(x)
	t := x - b.x[i]
	gv, gd := b.pieces.evalSensitivity(i, t)
	if !b.log {
		return gv, gd
	}
	v, d := b.pieces.eval(i, t)
	e := math.Exp(v)
	for j := range gv {
		dv := e * gv[j]
		gd[j] = (dv*d + e*gd[j]) / b.y[j]
		gv[j] = dv / b.y[j]
	}
	return gv, gd
}
