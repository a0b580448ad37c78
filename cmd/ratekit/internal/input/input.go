// Package input loads the ratekit command documents and turns them into
// calibration groups, quotes and fixings.
package input

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/meenmo/ratekit/calendar"
	"github.com/meenmo/ratekit/calibration"
	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/internal/logging"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/marketdata"
	"github.com/meenmo/ratekit/utils"
)

// EnvPrefix prefixes environment overrides, e.g. RATEKIT_SOLVER_TOLERANCE.
const EnvPrefix = "RATEKIT"

// Document is the input shared by every command. Rates are decimals.
//
// Map keys are case-insensitive: quote ids, currencies and index names are
// upper-cased on load.
type Document struct {
	ValuationDate string                        `mapstructure:"valuation_date"`
	Solver        SolverInput                   `mapstructure:"solver"`
	Log           logging.Config                `mapstructure:"log"`
	Quotes        map[string]float64            `mapstructure:"quotes"`
	Fixings       map[string]map[string]float64 `mapstructure:"fixings"`
	Groups        []GroupInput                  `mapstructure:"groups"`

	// PricingGroup names the calibrated group used by swap and swaption.
	// Defaults to the first group.
	PricingGroup string         `mapstructure:"pricing_group"`
	Swap         *SwapInput     `mapstructure:"swap"`
	Swaption     *SwaptionInput `mapstructure:"swaption"`
}

// SolverInput overrides calibration.DefaultConfig.
type SolverInput struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
	MaxCondition  float64 `mapstructure:"max_condition"`
}

type GroupInput struct {
	Name     string            `mapstructure:"name"`
	Discount map[string]string `mapstructure:"discount"`
	Forward  map[string]string `mapstructure:"forward"`
	Curves   []CurveInput      `mapstructure:"curves"`
}

type CurveInput struct {
	Name         string      `mapstructure:"name"`
	ValueType    string      `mapstructure:"value_type"`
	DayCount     string      `mapstructure:"day_count"`
	Interpolator string      `mapstructure:"interpolator"`
	Left         string      `mapstructure:"left_extrapolator"`
	Right        string      `mapstructure:"right_extrapolator"`
	Nodes        []NodeInput `mapstructure:"nodes"`
}

type NodeInput struct {
	Kind       string `mapstructure:"kind"`
	QuoteID    string `mapstructure:"quote_id"`
	Label      string `mapstructure:"label"`
	Tenor      string `mapstructure:"tenor"`
	Start      string `mapstructure:"start"`
	Convention string `mapstructure:"convention"`
	Index      string `mapstructure:"index"`
	Currency   string `mapstructure:"currency"`
	DayCount   string `mapstructure:"day_count"`
	Calendar   string `mapstructure:"calendar"`
	SpotLag    int    `mapstructure:"spot_lag"`
}

// SwapInput is a fixed-vs-floating swap on a standard convention.
type SwapInput struct {
	Convention string  `mapstructure:"convention"`
	Direction  string  `mapstructure:"direction"`
	Notional   float64 `mapstructure:"notional"`
	FixedRate  float64 `mapstructure:"fixed_rate"`
	Spread     float64 `mapstructure:"spread"`
	Forward    string  `mapstructure:"forward"`
	Tenor      string  `mapstructure:"tenor"`
	StartDate  string  `mapstructure:"start_date"`
	EndDate    string  `mapstructure:"end_date"`
}

// SwaptionInput is a physically settled option on Document.Swap.
type SwaptionInput struct {
	Position string       `mapstructure:"position"`
	Expiry   string       `mapstructure:"expiry"`
	Surface  SurfaceInput `mapstructure:"surface"`
}

type SurfaceInput struct {
	Name          string      `mapstructure:"name"`
	Model         string      `mapstructure:"model"`
	ValuationTime string      `mapstructure:"valuation_time"`
	Expiries      []float64   `mapstructure:"expiries"`
	Tenors        []float64   `mapstructure:"tenors"`
	Vols          [][]float64 `mapstructure:"vols"`
}

// Load reads the document from path, or from r when path is empty. The
// format follows the file extension; stdin is read as JSON unless format is
// given. RATEKIT_* environment variables override scalar settings.
func Load(path, format string, r io.Reader) (*Document, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("solver.tolerance", calibration.DefaultConfig.ConvergenceTolerance)
	v.SetDefault("solver.max_iterations", calibration.DefaultConfig.MaxIterations)
	v.SetDefault("solver.max_condition", calibration.DefaultConfig.MaxCondition)
	v.SetDefault("log.level", logging.DefaultConfig.Level)
	v.SetDefault("log.format", logging.DefaultConfig.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", logging.DefaultConfig.MaxSizeMB)
	v.SetDefault("log.max_backups", logging.DefaultConfig.MaxBackups)
	v.SetDefault("log.max_age_days", logging.DefaultConfig.MaxAgeDays)
	v.SetDefault("log.compress", logging.DefaultConfig.Compress)
	v.SetDefault("pricing_group", "")

	if path != "" {
		v.SetConfigFile(path)
		if format != "" {
			v.SetConfigType(format)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
	} else {
		if format == "" {
			format = "json"
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		v.SetConfigType(format)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("parse %s input: %w", format, err)
		}
	}

	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	return &doc, nil
}

// IsTerminal reports whether r is an interactive terminal, in which case a
// command without -input has nothing to read.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}

// Valuation parses the valuation date.
func (d *Document) Valuation() (time.Time, error) {
	if strings.TrimSpace(d.ValuationDate) == "" {
		return time.Time{}, fmt.Errorf("valuation_date is required")
	}
	t, err := utils.ParseDate(d.ValuationDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid valuation_date: %w", err)
	}
	return t, nil
}

// SolverConfig returns the calibration configuration.
func (d *Document) SolverConfig() calibration.Config {
	return calibration.Config{
		ConvergenceTolerance: d.Solver.Tolerance,
		MaxIterations:        d.Solver.MaxIterations,
		MaxCondition:         d.Solver.MaxCondition,
	}
}

// MarketQuotes returns the quotes keyed by upper-cased id.
func (d *Document) MarketQuotes() (marketdata.Quotes, error) {
	if len(d.Quotes) == 0 {
		return nil, fmt.Errorf("quotes are required")
	}
	out := make(marketdata.Quotes, len(d.Quotes))
	for id, q := range d.Quotes {
		out[strings.ToUpper(id)] = q
	}
	return out, nil
}

// MarketFixings returns the fixing histories keyed by index.
func (d *Document) MarketFixings() (map[market.Index]marketdata.TimeSeries, error) {
	out := make(map[market.Index]marketdata.TimeSeries, len(d.Fixings))
	for name, series := range d.Fixings {
		idx, err := market.ParseIndex(strings.ToUpper(name))
		if err != nil {
			return nil, fmt.Errorf("fixings: %w", err)
		}
		ts, err := marketdata.NewTimeSeries(series)
		if err != nil {
			return nil, fmt.Errorf("fixings %s: %w", idx, err)
		}
		out[idx] = ts
	}
	return out, nil
}

// GroupDefinitions converts every group.
func (d *Document) GroupDefinitions() ([]calibration.GroupDefinition, error) {
	if len(d.Groups) == 0 {
		return nil, fmt.Errorf("at least one group is required")
	}
	out := make([]calibration.GroupDefinition, 0, len(d.Groups))
	for i, g := range d.Groups {
		def, err := g.definition()
		if err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		out = append(out, def)
	}
	return out, nil
}

// PricingGroupDefinition returns the group named by PricingGroup, or the first.
func (d *Document) PricingGroupDefinition() (calibration.GroupDefinition, error) {
	defs, err := d.GroupDefinitions()
	if err != nil {
		return calibration.GroupDefinition{}, err
	}
	if d.PricingGroup == "" {
		return defs[0], nil
	}
	for _, def := range defs {
		if strings.EqualFold(def.Name, d.PricingGroup) {
			return def, nil
		}
	}
	return calibration.GroupDefinition{}, fmt.Errorf("pricing_group %q is not defined", d.PricingGroup)
}

func (g GroupInput) definition() (calibration.GroupDefinition, error) {
	def := calibration.GroupDefinition{
		Name:     g.Name,
		Discount: make(map[market.Currency]string, len(g.Discount)),
		Forward:  make(map[market.Index]string, len(g.Forward)),
	}
	for ccy, name := range g.Discount {
		def.Discount[market.Currency(strings.ToUpper(ccy))] = name
	}
	for index, name := range g.Forward {
		idx, err := market.ParseIndex(strings.ToUpper(index))
		if err != nil {
			return def, fmt.Errorf("%s: %w", g.Name, err)
		}
		def.Forward[idx] = name
	}
	for _, c := range g.Curves {
		cd, err := c.definition()
		if err != nil {
			return def, fmt.Errorf("%s: curve %s: %w", g.Name, c.Name, err)
		}
		def.Curves = append(def.Curves, cd)
	}
	return def, nil
}

func (c CurveInput) definition() (calibration.CurveDefinition, error) {
	cd := calibration.CurveDefinition{Name: c.Name, ValueType: curve.ZeroRate}
	var err error
	switch strings.ToUpper(c.ValueType) {
	case "", "ZERORATE", "ZERO_RATE":
	case "DISCOUNTFACTOR", "DISCOUNT_FACTOR":
		cd.ValueType = curve.DiscountFactor
	default:
		return cd, fmt.Errorf("unknown value_type %q", c.ValueType)
	}
	if c.DayCount != "" {
		if cd.DayCount, err = market.ParseDayCount(c.DayCount); err != nil {
			return cd, err
		}
	}
	if c.Interpolator != "" {
		if cd.Interpolator, err = interp.ParseInterpolator(c.Interpolator); err != nil {
			return cd, err
		}
	}
	if c.Left != "" {
		if cd.Left, err = interp.ParseExtrapolator(c.Left); err != nil {
			return cd, err
		}
	}
	if c.Right != "" {
		if cd.Right, err = interp.ParseExtrapolator(c.Right); err != nil {
			return cd, err
		}
	}
	for i, n := range c.Nodes {
		node, err := n.node()
		if err != nil {
			return cd, fmt.Errorf("nodes[%d]: %w", i, err)
		}
		cd.Nodes = append(cd.Nodes, node)
	}
	return cd, nil
}

func (n NodeInput) node() (calibration.Node, error) {
	node := calibration.Node{
		Kind:       calibration.NodeKind(strings.ToUpper(n.Kind)),
		QuoteID:    strings.ToUpper(n.QuoteID),
		Label:      n.Label,
		Convention: n.Convention,
		Currency:   market.Currency(strings.ToUpper(n.Currency)),
		SpotLag:    n.SpotLag,
	}
	var err error
	if n.Tenor != "" {
		if node.Tenor, err = market.ParseTenor(n.Tenor); err != nil {
			return node, err
		}
	}
	if n.Start != "" {
		if node.Start, err = market.ParseTenor(n.Start); err != nil {
			return node, err
		}
	}
	if n.Index != "" {
		if node.Index, err = market.ParseIndex(strings.ToUpper(n.Index)); err != nil {
			return node, err
		}
	}
	if n.DayCount != "" {
		if node.DayCount, err = market.ParseDayCount(n.DayCount); err != nil {
			return node, err
		}
	}
	if n.Calendar != "" {
		if node.Calendar, err = calendar.Parse(strings.ToUpper(n.Calendar)); err != nil {
			return node, err
		}
	}
	return node, nil
}

// RunLogger builds the command logger and tags it with a fresh run id.
func (d *Document) RunLogger(command string, console io.Writer) (*slog.Logger, io.Closer, error) {
	log, closer, err := logging.New(d.Log, console)
	if err != nil {
		return nil, nil, err
	}
	return log.With(slog.String("command", command), slog.String("run_id", uuid.NewString())), closer, nil
}

// CalibrateAll calibrates independent groups concurrently. Results are in
// group order; the first failure cancels the rest.
func CalibrateAll(ctx context.Context, cal *calibration.Calibrator, groups []calibration.GroupDefinition,
	valuationDate time.Time, quotes marketdata.Quotes, fixings map[market.Index]marketdata.TimeSeries,
) ([]calibration.Result, error) {
	results := make([]calibration.Result, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	for i, def := range groups {
		i, def := i, def
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := cal.CalibrateDetailed(def, valuationDate, quotes, fixings)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WriteJSON writes v as one line.
func WriteJSON(w io.Writer, v any) {
	out, _ := json.Marshal(v)
	fmt.Fprintln(w, string(out))
}
