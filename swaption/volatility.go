package swaption

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratekit/interp"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/utils"
)

// Model is the volatility convention a surface is quoted in.
type Model string

const (
	// Black quotes lognormal volatilities.
	Black Model = "BLACK"
	// Normal quotes absolute (Bachelier) volatilities.
	Normal Model = "NORMAL"
)

// ParseModel resolves a configured model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case Black, Normal:
		return Model(s), nil
	default:
		return "", fmt.Errorf("ParseModel: unknown volatility model %q", s)
	}
}

// Volatilities is a swaption volatility source for one valuation date-time.
type Volatilities interface {
	Model() Model
	// ValuationDateTime is the instant relative times are measured from.
	ValuationDateTime() time.Time
	// RelativeTime is the year fraction from the valuation date-time; negative in the past.
	RelativeTime(t time.Time) float64
	// Tenor is the swap tenor in years between the fixed leg's start and end.
	Tenor(start, end time.Time) float64
	Volatility(expiry, tenor, strike, forward float64) float64
}

const secondsPerYear = 365 * 24 * 60 * 60

// GridSurface is an expiry × tenor volatility grid without smile. Values are
// interpolated linearly along each axis and held flat outside the grid.
type GridSurface struct {
	name      string
	model     Model
	valuation time.Time
	expiries  []float64
	tenors    []float64
	vols      *mat.Dense
	expiryAx  axis
	tenorAx   axis
}

// axis gives the linear weights of one grid dimension. A single knot is a
// constant with weight 1.
type axis struct {
	bound *interp.Bound
}

func newAxis(knots []float64) (axis, error) {
	switch len(knots) {
	case 0:
		return axis{}, fmt.Errorf("no knots: %w", interp.ErrInvalidData)
	case 1:
		return axis{}, nil
	}
	// Weights depend only on the abscissae, so the axis is bound against zeros.
	b, err := interp.Linear.Bind(knots, make([]float64, len(knots)), interp.ExtrapolateFlat, interp.ExtrapolateFlat)
	if err != nil {
		return axis{}, err
	}
	return axis{bound: b}, nil
}

func (a axis) weights(x float64) []float64 {
	if a.bound == nil {
		return []float64{1}
	}
	return a.bound.NodeSensitivities(x)
}

// GridConfig defines a GridSurface. Vols[i][j] is the volatility at Expiries[i] and Tenors[j].
type GridConfig struct {
	Name          string
	Model         Model
	ValuationTime time.Time
	Expiries      []float64
	Tenors        []float64
	Vols          [][]float64
}

// NewGridSurface validates and binds a grid.
func NewGridSurface(cfg GridConfig) (*GridSurface, error) {
	if _, err := ParseModel(string(cfg.Model)); err != nil {
		return nil, fmt.Errorf("NewGridSurface: %s: %w", cfg.Name, err)
	}
	if len(cfg.Vols) != len(cfg.Expiries) {
		return nil, fmt.Errorf("NewGridSurface: %s: %d rows for %d expiries: %w", cfg.Name, len(cfg.Vols), len(cfg.Expiries), interp.ErrInvalidData)
	}
	data := make([]float64, 0, len(cfg.Expiries)*len(cfg.Tenors))
	for i, row := range cfg.Vols {
		if len(row) != len(cfg.Tenors) {
			return nil, fmt.Errorf("NewGridSurface: %s: row %d has %d vols for %d tenors: %w", cfg.Name, i, len(row), len(cfg.Tenors), interp.ErrInvalidData)
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("NewGridSurface: %s: negative vol at (%d,%d): %w", cfg.Name, i, j, interp.ErrInvalidData)
			}
		}
		data = append(data, row...)
	}
	expiryAx, err := newAxis(cfg.Expiries)
	if err != nil {
		return nil, fmt.Errorf("NewGridSurface: %s: expiry axis: %w", cfg.Name, err)
	}
	tenorAx, err := newAxis(cfg.Tenors)
	if err != nil {
		return nil, fmt.Errorf("NewGridSurface: %s: tenor axis: %w", cfg.Name, err)
	}
	return &GridSurface{
		name:      cfg.Name,
		model:     cfg.Model,
		valuation: cfg.ValuationTime,
		expiries:  append([]float64(nil), cfg.Expiries...),
		tenors:    append([]float64(nil), cfg.Tenors...),
		vols:      mat.NewDense(len(cfg.Expiries), len(cfg.Tenors), data),
		expiryAx:  expiryAx,
		tenorAx:   tenorAx,
	}, nil
}

// Name returns the surface name.
func (s *GridSurface) Name() string { return s.name }

// Model returns the volatility convention.
func (s *GridSurface) Model() Model { return s.model }

// ValuationDateTime returns the valuation instant.
func (s *GridSurface) ValuationDateTime() time.Time { return s.valuation }

// RelativeTime is ACT/365F measured on date-times.
func (s *GridSurface) RelativeTime(t time.Time) float64 {
	return t.Sub(s.valuation).Seconds() / secondsPerYear
}

// Tenor rounds to whole months.
func (s *GridSurface) Tenor(start, end time.Time) float64 {
	return float64(utils.MonthsBetween(start, end)) / 12
}

func (s *GridSurface) weights(expiry, tenor float64) (*mat.VecDense, *mat.VecDense) {
	we := s.expiryAx.weights(expiry)
	wt := s.tenorAx.weights(tenor)
	return mat.NewVecDense(len(we), we), mat.NewVecDense(len(wt), wt)
}

// Volatility interpolates the grid. Strike and forward are ignored.
func (s *GridSurface) Volatility(expiry, tenor, strike, forward float64) float64 {
	we, wt := s.weights(expiry, tenor)
	return mat.Inner(we, s.vols, wt)
}

// WithShift returns a copy with every volatility moved by shift.
func (s *GridSurface) WithShift(shift float64) *GridSurface {
	out := *s
	r, c := s.vols.Dims()
	v := mat.NewDense(r, c, nil)
	v.Apply(func(_, _ int, x float64) float64 { return x + shift }, s.vols)
	out.vols = v
	return &out
}

// VolatilitySensitivity is the sensitivity of a value to the volatility at one point.
type VolatilitySensitivity struct {
	Model    Model
	Expiry   time.Time
	Tenor    float64
	Strike   float64
	Forward  float64
	Currency market.Currency
	Amount   float64
}

// SurfaceSensitivity is a sensitivity spread over grid nodes.
type SurfaceSensitivity struct {
	Surface     string
	Currency    market.Currency
	Expiries    []float64
	Tenors      []float64
	Sensitivity *mat.Dense
}

// Total sums the node sensitivities.
func (s SurfaceSensitivity) Total() float64 {
	return mat.Sum(s.Sensitivity)
}

// ParameterSensitivity maps a point volatility sensitivity onto grid nodes.
func (s *GridSurface) ParameterSensitivity(vs VolatilitySensitivity) (SurfaceSensitivity, error) {
	if vs.Model != s.model {
		return SurfaceSensitivity{}, fmt.Errorf("GridSurface.ParameterSensitivity: %s sensitivity on %s surface: %w", vs.Model, s.model, ErrInconsistentMarketData)
	}
	we, wt := s.weights(s.RelativeTime(vs.Expiry), vs.Tenor)
	var grid mat.Dense
	grid.Outer(vs.Amount, we, wt)
	return SurfaceSensitivity{
		Surface:     s.name,
		Currency:    vs.Currency,
		Expiries:    s.expiries,
		Tenors:      s.tenors,
		Sensitivity: &grid,
	}, nil
}
