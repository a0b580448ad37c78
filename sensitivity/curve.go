package sensitivity

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/ratekit/market"
)

// CurveSensitivity is the sensitivity of a value to each node of one curve.
type CurveSensitivity struct {
	Curve    string
	Currency market.Currency
	// Nodes are the curve's knot abscissae, aligned with Sensitivity.
	Nodes       []float64
	Sensitivity []float64
}

// Total returns the sum over nodes, the parallel-shift sensitivity.
func (c CurveSensitivity) Total() float64 {
	return floats.Sum(c.Sensitivity)
}

// CurveSensitivities is a set of per-curve node sensitivities, sorted by curve
// then currency. Values are immutable.
type CurveSensitivities []CurveSensitivity

// Find returns the entry for a curve and currency.
func (s CurveSensitivities) Find(curve string, ccy market.Currency) (CurveSensitivity, bool) {
	for _, c := range s {
		if c.Curve == curve && c.Currency == ccy {
			return c, true
		}
	}
	return CurveSensitivity{}, false
}

// Total returns the sum across all curves and nodes.
func (s CurveSensitivities) Total() float64 {
	total := 0.0
	for _, c := range s {
		total += c.Total()
	}
	return total
}

// MultipliedBy scales every entry.
func (s CurveSensitivities) MultipliedBy(f float64) CurveSensitivities {
	out := make(CurveSensitivities, len(s))
	for i, c := range s {
		v := append([]float64(nil), c.Sensitivity...)
		floats.Scale(f, v)
		out[i] = CurveSensitivity{Curve: c.Curve, Currency: c.Currency, Nodes: c.Nodes, Sensitivity: v}
	}
	return out
}

// CombinedWith adds node vectors of matching curve and currency.
func (s CurveSensitivities) CombinedWith(o CurveSensitivities) (CurveSensitivities, error) {
	out := make(CurveSensitivities, 0, len(s)+len(o))
	for _, c := range s {
		out = append(out, CurveSensitivity{Curve: c.Curve, Currency: c.Currency, Nodes: c.Nodes, Sensitivity: append([]float64(nil), c.Sensitivity...)})
	}
	for _, c := range o {
		merged := false
		for i := range out {
			if out[i].Curve != c.Curve || out[i].Currency != c.Currency {
				continue
			}
			if len(out[i].Sensitivity) != len(c.Sensitivity) {
				return nil, fmt.Errorf("CurveSensitivities.CombinedWith: curve %s has %d and %d nodes", c.Curve, len(out[i].Sensitivity), len(c.Sensitivity))
			}
			floats.Add(out[i].Sensitivity, c.Sensitivity)
			merged = true
			break
		}
		if !merged {
			out = append(out, CurveSensitivity{Curve: c.Curve, Currency: c.Currency, Nodes: c.Nodes, Sensitivity: append([]float64(nil), c.Sensitivity...)})
		}
	}
	out.sort()
	return out, nil
}

func (s CurveSensitivities) sort() {
	sort.Slice(s, func(i, j int) bool {
		if s[i].Curve != s[j].Curve {
			return s[i].Curve < s[j].Curve
		}
		return s[i].Currency < s[j].Currency
	})
}

// Accumulate adds amount·weights into the entry for curve and currency,
// creating it when absent. It is intended for building a fresh value.
func (s *CurveSensitivities) Accumulate(curve string, ccy market.Currency, nodes, weights []float64, amount float64) {
	for i := range *s {
		c := &(*s)[i]
		if c.Curve == curve && c.Currency == ccy {
			floats.AddScaled(c.Sensitivity, amount, weights)
			return
		}
	}
	v := make([]float64, len(weights))
	floats.AddScaled(v, amount, weights)
	*s = append(*s, CurveSensitivity{Curve: curve, Currency: ccy, Nodes: nodes, Sensitivity: v})
	s.sort()
}
