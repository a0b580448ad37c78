// Package options implements `ratekit swaption`.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratekit/cmd/ratekit/internal/input"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/swap"
	"github.com/meenmo/ratekit/swaption"
)

// VegaNode is the vega of one surface node.
type VegaNode struct {
	Expiry float64 `json:"expiry"`
	Tenor  float64 `json:"tenor"`
	Vega   float64 `json:"vega"`
}

type PricingOutput struct {
	Currency market.Currency `json:"currency,omitempty"`
	PV       decimal.Decimal `json:"pv"`
	Model    swaption.Model  `json:"model,omitempty"`

	// ImpliedVolatility is omitted for expired options.
	ImpliedVolatility *float64        `json:"implied_volatility,omitempty"`
	Strike            float64         `json:"strike,omitempty"`
	Forward           float64         `json:"forward,omitempty"`
	Delta             float64         `json:"delta"`
	Gamma             float64         `json:"gamma"`
	Theta             float64         `json:"theta"`
	Vega              float64         `json:"vega"`
	PV01              decimal.Decimal `json:"pv01"`
	Buckets           []input.Bucket  `json:"buckets,omitempty"`
	VegaGrid          []VegaNode      `json:"vega_grid,omitempty"`
	Error             string          `json:"error,omitempty"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("swaption", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON or YAML input path (optional; if set, ignores stdin)")
	format := fs.String("format", "", "input format when reading stdin: json or yaml (default json)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" && input.IsTerminal(stdin) {
		usage(stderr)
		return 2
	}

	doc, err := input.Load(path, *format, stdin)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}
	log, closer, err := doc.RunLogger("swaption", stderr)
	if err != nil {
		return writeError(stdout, err.Error())
	}
	defer closer.Close()

	output, err := calculate(doc, log)
	if err != nil {
		log.Error("swaption pricing failed", slog.String("error", err.Error()))
		return writeError(stdout, err.Error())
	}
	input.WriteJSON(stdout, output)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ratekit swaption < input.json")
	fmt.Fprintln(w, "  ratekit swaption -input /path/to/input.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calibrate the pricing group, then value a physically settled swaption on the")
	fmt.Fprintln(w, "swap section against the swaption surface. Output is JSON on stdout.")
}

func writeError(stdout io.Writer, msg string) int {
	input.WriteJSON(stdout, PricingOutput{Error: msg})
	return 1
}

func calculate(doc *input.Document, log *slog.Logger) (*PricingOutput, error) {
	option, surface, err := doc.SwaptionTrade()
	if err != nil {
		return nil, err
	}
	prov, err := doc.PricingProvider(log)
	if err != nil {
		return nil, err
	}

	p := swaption.NewPhysicalPricer(swap.DefaultProductPricer())
	pv, err := p.PresentValue(option, prov, surface)
	if err != nil {
		return nil, fmt.Errorf("failed to price swaption: %w", err)
	}
	out := &PricingOutput{Currency: pv.Currency, PV: pv.Rounded(), Model: surface.Model()}

	greeks := []struct {
		dst *float64
		fn  func(swaption.Swaption, *rates.Provider, swaption.Volatilities) (market.CurrencyAmount, error)
	}{
		{&out.Delta, p.PresentValueDelta},
		{&out.Gamma, p.PresentValueGamma},
		{&out.Theta, p.PresentValueTheta},
		{&out.Vega, p.PresentValueVega},
	}
	for _, g := range greeks {
		v, err := g.fn(option, prov, surface)
		if err != nil {
			return nil, err
		}
		*g.dst = v.Amount
	}

	switch vol, err := p.ImpliedVolatility(option, prov, surface); {
	case err == nil:
		out.ImpliedVolatility = &vol
	case errors.Is(err, swaption.ErrDomainRange):
		log.Info("swaption expired", slog.Time("expiry", option.Expiry))
	default:
		return nil, err
	}

	pts, err := p.PresentValueSensitivityStickyStrike(option, prov, surface)
	if err != nil {
		return nil, err
	}
	if out.Buckets, out.PV01, err = input.BucketedPV01(prov, pts); err != nil {
		return nil, err
	}

	vs, err := p.PresentValueSensitivityVolatility(option, prov, surface)
	if err != nil {
		return nil, err
	}
	out.Strike, out.Forward = vs.Strike, vs.Forward
	grid, err := surface.ParameterSensitivity(vs)
	if err != nil {
		return nil, err
	}
	for i, e := range grid.Expiries {
		for j, t := range grid.Tenors {
			if v := grid.Sensitivity.At(i, j); v != 0 {
				out.VegaGrid = append(out.VegaGrid, VegaNode{Expiry: e, Tenor: t, Vega: v})
			}
		}
	}

	log.Info("swaption priced", slog.String("pv", out.PV.String()), slog.Float64("vega", out.Vega))
	return out, nil
}
