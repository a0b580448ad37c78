// Package sensitivity accumulates point sensitivities and maps them onto curve parameters.
package sensitivity

import (
	"fmt"
	"math"
	"sort"

	"github.com/meenmo/ratekit/market"
)

// Kind tags the market quantity a point sensitivity refers to.
type Kind uint8

const (
	// ZeroRate is dValue/dr(t) for the continuously compounded zero rate of a discount curve.
	ZeroRate Kind = iota + 1
	// ForwardRate is dValue/dF for a simple forward rate of an index over [Start, End].
	ForwardRate
)

func (k Kind) String() string {
	switch k {
	case ZeroRate:
		return "ZeroRate"
	case ForwardRate:
		return "ForwardRate"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Key identifies one point sensitivity. Times are year fractions from the
// valuation date on the provider's time basis.
type Key struct {
	Kind Kind
	// Currency is the curve currency for ZeroRate and the amount currency for both kinds.
	Currency market.Currency
	// Index is set for ForwardRate.
	Index market.Index
	Start float64
	End   float64
	// Accrual is the forward rate's year fraction in the index day count.
	Accrual float64
}

// Point is one entry of a built sensitivity.
type Point struct {
	Key    Key
	Amount float64
}

// Points is an ordered sensitivity collection.
type Points []Point

// Builder is a sparse linear combination of point sensitivities. Builders are
// immutable; scaling and combining return new values, None is the identity.
type Builder struct {
	terms map[Key]float64
}

// None returns the empty builder.
func None() Builder { return Builder{} }

// Of returns a builder holding a single point.
func Of(key Key, amount float64) Builder {
	return Builder{terms: map[Key]float64{key: amount}}
}

// ZeroRatePoint is the sensitivity to the ccy discount curve zero rate at t.
func ZeroRatePoint(ccy market.Currency, t, amount float64) Builder {
	return Of(Key{Kind: ZeroRate, Currency: ccy, Start: t}, amount)
}

// ForwardRatePoint is the sensitivity to the index forward over [start, end].
func ForwardRatePoint(index market.Index, ccy market.Currency, start, end, accrual, amount float64) Builder {
	return Of(Key{Kind: ForwardRate, Currency: ccy, Index: index, Start: start, End: end, Accrual: accrual}, amount)
}

// MultipliedBy scales every amount by f.
func (b Builder) MultipliedBy(f float64) Builder {
	if len(b.terms) == 0 {
		return b
	}
	out := make(map[Key]float64, len(b.terms))
	for k, v := range b.terms {
		out[k] = v * f
	}
	return Builder{terms: out}
}

// CombinedWith sums amounts at matching keys.
func (b Builder) CombinedWith(o Builder) Builder {
	if len(o.terms) == 0 {
		return b
	}
	if len(b.terms) == 0 {
		return o
	}
	out := make(map[Key]float64, len(b.terms)+len(o.terms))
	for k, v := range b.terms {
		out[k] = v
	}
	for k, v := range o.terms {
		out[k] += v
	}
	return Builder{terms: out}
}

// Sum combines builders in order.
func Sum(builders ...Builder) Builder {
	out := None()
	for _, b := range builders {
		out = out.CombinedWith(b)
	}
	return out
}

// Len returns the number of distinct keys.
func (b Builder) Len() int { return len(b.terms) }

// Amount returns the amount held at key.
func (b Builder) Amount(key Key) float64 { return b.terms[key] }

// Build returns the points sorted by key.
func (b Builder) Build() Points {
	out := make(Points, 0, len(b.terms))
	for k, v := range b.terms {
		out = append(out, Point{Key: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key, out[j].Key) })
	return out
}

// EqualWithTolerance reports whether both builders hold the same amounts within tol.
func (b Builder) EqualWithTolerance(o Builder, tol float64) bool {
	for k, v := range b.terms {
		if math.Abs(v-o.terms[k]) > tol {
			return false
		}
	}
	for k, v := range o.terms {
		if _, ok := b.terms[k]; !ok && math.Abs(v) > tol {
			return false
		}
	}
	return true
}

func lessKey(a, b Key) bool {
	switch {
	case a.Kind != b.Kind:
		return a.Kind < b.Kind
	case a.Currency != b.Currency:
		return a.Currency < b.Currency
	case a.Index != b.Index:
		return a.Index < b.Index
	case a.Start != b.Start:
		return a.Start < b.Start
	case a.End != b.End:
		return a.End < b.End
	default:
		return a.Accrual < b.Accrual
	}
}
