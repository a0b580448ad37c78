// Package curves implements `ratekit calibrate`.
package curves

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/meenmo/ratekit/calibration"
	"github.com/meenmo/ratekit/cmd/ratekit/internal/input"
	"github.com/meenmo/ratekit/utils"
)

// GroupOutput is one calibrated group.
type GroupOutput struct {
	Name         string              `json:"name"`
	Iterations   int                 `json:"iterations"`
	ResidualNorm float64             `json:"residual_norm"`
	Curves       []input.CurveReport `json:"curves"`
}

type CalibrationOutput struct {
	ValuationDate string        `json:"valuation_date,omitempty"`
	Groups        []GroupOutput `json:"groups,omitempty"`
	Error         string        `json:"error,omitempty"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
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
	output, err := calibrate(doc, stderr)
	if err != nil {
		return writeError(stdout, err.Error())
	}
	input.WriteJSON(stdout, output)
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ratekit calibrate < input.json")
	fmt.Fprintln(w, "  ratekit calibrate -input /path/to/groups.yaml")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calibrate every curve group to the quotes and print the curve nodes as JSON.")
}

func writeError(stdout io.Writer, msg string) int {
	input.WriteJSON(stdout, CalibrationOutput{Error: msg})
	return 1
}

func calibrate(doc *input.Document, stderr io.Writer) (*CalibrationOutput, error) {
	valuationDate, err := doc.Valuation()
	if err != nil {
		return nil, err
	}
	quotes, err := doc.MarketQuotes()
	if err != nil {
		return nil, err
	}
	fixings, err := doc.MarketFixings()
	if err != nil {
		return nil, err
	}
	groups, err := doc.GroupDefinitions()
	if err != nil {
		return nil, err
	}

	log, closer, err := doc.RunLogger("calibrate", stderr)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	cal, err := calibration.New(doc.SolverConfig(), calibration.WithLogger(log))
	if err != nil {
		return nil, err
	}
	results, err := input.CalibrateAll(context.Background(), cal, groups, valuationDate, quotes, fixings)
	if err != nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}

	out := &CalibrationOutput{ValuationDate: utils.FormatDate(valuationDate)}
	for i, res := range results {
		out.Groups = append(out.Groups, GroupOutput{
			Name:         groups[i].Name,
			Iterations:   res.Iterations,
			ResidualNorm: res.ResidualNorm,
			Curves:       input.Curves(res.Provider),
		})
	}
	return out, nil
}
