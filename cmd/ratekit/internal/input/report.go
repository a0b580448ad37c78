package input

import (
	"github.com/shopspring/decimal"

	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/sensitivity"
)

// OneBasisPoint scales a unit-rate sensitivity to PV01.
const OneBasisPoint = 1e-4

// CurveNode is one calibrated node.
type CurveNode struct {
	Label          string  `json:"label"`
	Time           float64 `json:"time"`
	Value          float64 `json:"value"`
	ZeroRate       float64 `json:"zero_rate"`
	DiscountFactor float64 `json:"discount_factor"`
}

// CurveReport describes a calibrated curve.
type CurveReport struct {
	Name      string      `json:"name"`
	ValueType string      `json:"value_type"`
	Nodes     []CurveNode `json:"nodes"`
}

// Curves reports every curve of prov in name order.
func Curves(prov *rates.Provider) []CurveReport {
	curves := prov.Curves()
	out := make([]CurveReport, 0, len(curves))
	for _, c := range curves {
		meta := c.Metadata()
		x, y := c.X(), c.Y()
		rep := CurveReport{Name: c.Name(), ValueType: string(meta.ValueType), Nodes: make([]CurveNode, len(x))}
		for i := range x {
			label := ""
			if i < len(meta.NodeLabels) {
				label = meta.NodeLabels[i]
			}
			rep.Nodes[i] = CurveNode{
				Label:          label,
				Time:           x[i],
				Value:          y[i],
				ZeroRate:       c.ZeroRate(x[i]),
				DiscountFactor: c.DiscountFactor(x[i]),
			}
		}
		out = append(out, rep)
	}
	return out
}

// Bucket is the PV01 of one curve node.
type Bucket struct {
	Curve    string          `json:"curve"`
	Label    string          `json:"label"`
	Time     float64         `json:"time"`
	Currency market.Currency `json:"currency"`
	PV01     decimal.Decimal `json:"pv01"`
}

// BucketedPV01 maps point sensitivities onto curve nodes and scales them to
// one basis point. Amounts are rounded to the currency's minor units.
func BucketedPV01(prov *rates.Provider, pts sensitivity.Builder) ([]Bucket, decimal.Decimal, error) {
	sens, err := prov.ParameterSensitivity(pts)
	if err != nil {
		return nil, decimal.Zero, err
	}
	sens = sens.MultipliedBy(OneBasisPoint)
	var out []Bucket
	total := decimal.Zero
	for _, cs := range sens {
		var labels []string
		if c, ok := prov.Curve(cs.Curve); ok {
			labels = c.Metadata().NodeLabels
		}
		for i, v := range cs.Sensitivity {
			b := Bucket{
				Curve:    cs.Curve,
				Time:     cs.Nodes[i],
				Currency: cs.Currency,
				PV01:     market.NewCurrencyAmount(cs.Currency, v).Rounded(),
			}
			if i < len(labels) {
				b.Label = labels[i]
			}
			total = total.Add(b.PV01)
			out = append(out, b)
		}
	}
	return out, total, nil
}
