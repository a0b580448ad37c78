package rates

import (
	"fmt"

	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/sensitivity"
)

// ParameterSensitivity maps point sensitivities onto curve nodes.
//
// Zero-rate points use the discount curve's node sensitivities directly. Forward
// points are first expanded into zero-rate sensitivities at the start and end of
// the forward period on the index curve.
func (p *Provider) ParameterSensitivity(b sensitivity.Builder) (sensitivity.CurveSensitivities, error) {
	var out sensitivity.CurveSensitivities
	for _, pt := range b.Build() {
		switch pt.Key.Kind {
		case sensitivity.ZeroRate:
			c, err := p.DiscountCurve(pt.Key.Currency)
			if err != nil {
				return nil, fmt.Errorf("ParameterSensitivity: %w", err)
			}
			accumulate(&out, c, pt, pt.Key.Start, pt.Amount)
		case sensitivity.ForwardRate:
			c, err := p.ForwardCurve(pt.Key.Index)
			if err != nil {
				return nil, fmt.Errorf("ParameterSensitivity: %w", err)
			}
			ts, te := pt.Key.Start, pt.Key.End
			ratio := c.DiscountFactor(ts) / c.DiscountFactor(te)
			accumulate(&out, c, pt, ts, -pt.Amount*ts*ratio/pt.Key.Accrual)
			accumulate(&out, c, pt, te, pt.Amount*te*ratio/pt.Key.Accrual)
		default:
			return nil, fmt.Errorf("ParameterSensitivity: unsupported point kind %s", pt.Key.Kind)
		}
	}
	return out, nil
}

func accumulate(out *sensitivity.CurveSensitivities, c *curve.Curve, pt sensitivity.Point, t, amount float64) {
	if amount == 0 {
		return
	}
	out.Accumulate(c.Name(), pt.Key.Currency, c.X(), c.ZeroRateNodeSensitivities(t), amount)
}
