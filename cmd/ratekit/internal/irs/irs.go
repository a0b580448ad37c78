// Package irs implements `ratekit swap`.
package irs

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meenmo/ratekit/cmd/ratekit/internal/input"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/swap"
	"github.com/meenmo/ratekit/utils"
)

// LegOutput is the value of one leg.
type LegOutput struct {
	Type       market.LegType  `json:"type"`
	PayReceive swap.PayReceive `json:"pay_receive"`
	PV         decimal.Decimal `json:"pv"`
}

type PricingOutput struct {
	Currency      market.Currency `json:"currency,omitempty"`
	TotalNPV      decimal.Decimal `json:"total_npv"`
	Legs          []LegOutput     `json:"legs,omitempty"`
	ParRate       float64         `json:"par_rate,omitempty"`
	ParSpread     float64         `json:"par_spread,omitempty"`
	Pvbp          float64         `json:"pvbp,omitempty"`
	EffectiveDate string          `json:"effective_date,omitempty"`
	MaturityDate  string          `json:"maturity_date,omitempty"`
	PV01          decimal.Decimal `json:"pv01"`
	Buckets       []input.Bucket  `json:"buckets,omitempty"`
	Error         string          `json:"error,omitempty"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("swap", flag.ContinueOnError)
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
	log, closer, err := doc.RunLogger("swap", stderr)
	if err != nil {
		return writeError(stdout, err.Error())
	}
	defer closer.Close()

	output, err := calculateNPV(doc, log)
	if err != nil {
		log.Error("swap pricing failed", slog.String("error", err.Error()))
		return writeError(stdout, err.Error())
	}
	input.WriteJSON(stdout, output)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ratekit swap < input.json")
	fmt.Fprintln(w, "  ratekit swap -input /path/to/input.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calibrate the pricing group, then value the swap section: NPV, par rate,")
	fmt.Fprintln(w, "par spread and bucketed PV01. Output is JSON on stdout.")
}

func writeError(stdout io.Writer, msg string) int {
	input.WriteJSON(stdout, PricingOutput{Error: msg})
	return 1
}

func calculateNPV(doc *input.Document, log *slog.Logger) (*PricingOutput, error) {
	terms, err := doc.SwapTerms()
	if err != nil {
		return nil, err
	}
	trade, err := terms.Expand()
	if err != nil {
		return nil, fmt.Errorf("failed to build swap: %w", err)
	}
	prov, err := doc.PricingProvider(log)
	if err != nil {
		return nil, err
	}

	pp := swap.DefaultProductPricer()
	lp := pp.LegPricer()
	pv, err := pp.PresentValue(trade, prov)
	if err != nil {
		return nil, fmt.Errorf("failed to price swap: %w", err)
	}
	total, err := pv.Single()
	if err != nil {
		return nil, err
	}
	out := &PricingOutput{
		Currency:      total.Currency,
		TotalNPV:      total.Rounded(),
		EffectiveDate: utils.FormatDate(trade.StartDate()),
		MaturityDate:  utils.FormatDate(trade.EndDate()),
	}
	for _, leg := range trade.Legs {
		legPV, err := lp.PresentValue(leg, prov)
		if err != nil {
			return nil, err
		}
		out.Legs = append(out.Legs, LegOutput{Type: leg.Type, PayReceive: leg.PayReceive, PV: legPV.Rounded()})
	}

	if out.ParRate, err = pp.ParRate(trade, prov); err != nil {
		return nil, err
	}
	if out.ParSpread, err = pp.ParSpread(trade, prov); err != nil {
		return nil, err
	}
	fixed, err := trade.FixedLeg()
	if err != nil {
		return nil, err
	}
	if out.Pvbp, err = lp.Pvbp(fixed, prov); err != nil {
		return nil, err
	}

	pts, err := pp.PresentValueSensitivity(trade, prov)
	if err != nil {
		return nil, err
	}
	if out.Buckets, out.PV01, err = input.BucketedPV01(prov, pts); err != nil {
		return nil, err
	}
	log.Info("swap priced",
		slog.String("npv", out.TotalNPV.String()),
		slog.Float64("par_rate", out.ParRate),
		slog.String("pv01", out.PV01.String()))
	return out, nil
}
