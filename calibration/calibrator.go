package calibration

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/ratekit/curve"
	"github.com/meenmo/ratekit/market"
	"github.com/meenmo/ratekit/marketdata"
	"github.com/meenmo/ratekit/rates"
	"github.com/meenmo/ratekit/swap"
)

var (
	// ErrNonConvergence matches every *NonConvergenceError.
	ErrNonConvergence = errors.New("calibration did not converge")
	// ErrSingularJacobian is returned when a Newton step cannot be solved.
	ErrSingularJacobian = errors.New("singular calibration jacobian")
	// ErrDegenerateCurve is returned when a solution has non-finite residuals,
	// non-positive discount factors or implausible zero rates.
	ErrDegenerateCurve = errors.New("degenerate calibrated curve")
)

// maxNodeZeroRate bounds the absolute continuously compounded zero rate at a
// calibrated node.
const maxNodeZeroRate = 1.0

// NonConvergenceError reports a calibration that ran out of iterations.
type NonConvergenceError struct {
	Group        string
	Iterations   int
	ResidualNorm float64
	Tolerance    float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("calibration of %s did not converge after %d iterations: residual %.3e, tolerance %.3e",
		e.Group, e.Iterations, e.ResidualNorm, e.Tolerance)
}

// Unwrap lets errors.Is match ErrNonConvergence.
func (e *NonConvergenceError) Unwrap() error { return ErrNonConvergence }

// Result is a calibrated provider with solver diagnostics.
type Result struct {
	Provider     *rates.Provider
	Iterations   int
	ResidualNorm float64
	// Jacobian is d(residual_i)/d(parameter_j) at the solution, rows in node order.
	Jacobian *mat.Dense
	// Labels names each row and column of Jacobian.
	Labels []string
}

// Calibrator solves curve groups. It holds no state between calls.
type Calibrator struct {
	cfg    Config
	pricer *swap.ProductPricer
	logger *slog.Logger
}

// Option configures a Calibrator.
type Option func(*Calibrator)

// WithLogger sets the logger for per-iteration diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calibrator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSwapPricer sets the pricer used for swap nodes.
func WithSwapPricer(p *swap.ProductPricer) Option {
	return func(c *Calibrator) {
		if p != nil {
			c.pricer = p
		}
	}
}

// New returns a Calibrator. Logging is discarded unless WithLogger is given.
func New(cfg Config, opts ...Option) (*Calibrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Calibrator{
		cfg:    cfg,
		pricer: swap.DefaultProductPricer(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the solver configuration.
func (c *Calibrator) Config() Config { return c.cfg }

// Calibrate fits the group to the quotes and returns the calibrated provider.
func (c *Calibrator) Calibrate(group GroupDefinition, valuationDate time.Time, quotes marketdata.Quotes, fixings map[market.Index]marketdata.TimeSeries) (*rates.Provider, error) {
	res, err := c.CalibrateDetailed(group, valuationDate, quotes, fixings)
	if err != nil {
		return nil, err
	}
	return res.Provider, nil
}

// problem is the state of one calibration call.
type problem struct {
	group       GroupDefinition
	instruments []Instrument
	targets     []float64
	// offsets maps a curve name to the index of its first parameter.
	offsets map[string]int
	labels  []string
}

// Instruments resolves every node of the group, in group order.
func (c *Calibrator) Instruments(group GroupDefinition, valuationDate time.Time, quotes marketdata.Quotes) ([]Instrument, error) {
	p, err := c.setup(group, valuationDate, quotes)
	if err != nil {
		return nil, err
	}
	return p.instruments, nil
}

func (c *Calibrator) setup(group GroupDefinition, valuationDate time.Time, quotes marketdata.Quotes) (*problem, error) {
	if err := group.Validate(); err != nil {
		return nil, err
	}
	n := group.ParameterCount()
	p := &problem{
		group:       group,
		instruments: make([]Instrument, 0, n),
		targets:     make([]float64, 0, n),
		offsets:     make(map[string]int, len(group.Curves)),
		labels:      make([]string, 0, n),
	}
	for _, cd := range group.Curves {
		p.offsets[cd.Name] = len(p.instruments)
		for _, node := range cd.Nodes {
			inst, q, err := BuildInstrument(node, valuationDate, quotes, c.pricer)
			if err != nil {
				return nil, fmt.Errorf("calibration: %s/%s: %w", group.Name, cd.Name, err)
			}
			p.instruments = append(p.instruments, inst)
			p.targets = append(p.targets, q)
			p.labels = append(p.labels, cd.Name+"/"+inst.Label())
		}
	}
	return p, nil
}

// initialCurves places each node at its instrument's date and seeds the values
// from the quotes: the quote itself on zero-rate curves and exp(−quote·t) on
// discount-factor curves.
func (p *problem) initialCurves(valuationDate time.Time) ([]*curve.Curve, error) {
	out := make([]*curve.Curve, 0, len(p.group.Curves))
	for _, cd := range p.group.Curves {
		off := p.offsets[cd.Name]
		x := make([]float64, len(cd.Nodes))
		y := make([]float64, len(cd.Nodes))
		for i := range cd.Nodes {
			x[i] = rates.TimeBasis.YearFraction(valuationDate, p.instruments[off+i].NodeDate())
			q := p.targets[off+i]
			if cd.ValueType == curve.DiscountFactor {
				y[i] = math.Exp(-q * x[i])
			} else {
				y[i] = q
			}
		}
		cv, err := curve.New(cd.metadata(), x, y)
		if err != nil {
			return nil, fmt.Errorf("calibration: %s: %w", p.group.Name, err)
		}
		out = append(out, cv)
	}
	return out, nil
}

// residuals prices every instrument; target values are zero by construction.
func (p *problem) residuals(prov *rates.Provider) ([]float64, error) {
	out := make([]float64, len(p.instruments))
	for i, inst := range p.instruments {
		v, err := inst.PresentValue(prov)
		if err != nil {
			return nil, fmt.Errorf("calibration: %s: %s: %w", p.group.Name, p.labels[i], err)
		}
		out[i] = v
	}
	return out, nil
}

// jacobian chains each instrument's point sensitivity through the provider to
// the curve parameters.
func (p *problem) jacobian(prov *rates.Provider) (*mat.Dense, error) {
	n := len(p.instruments)
	jac := mat.NewDense(n, n, nil)
	for i, inst := range p.instruments {
		pts, err := inst.PresentValueSensitivity(prov)
		if err != nil {
			return nil, fmt.Errorf("calibration: %s: %s: %w", p.group.Name, p.labels[i], err)
		}
		sens, err := prov.ParameterSensitivity(pts)
		if err != nil {
			return nil, fmt.Errorf("calibration: %s: %s: %w", p.group.Name, p.labels[i], err)
		}
		for _, cs := range sens {
			off, ok := p.offsets[cs.Curve]
			if !ok {
				continue
			}
			for j, v := range cs.Sensitivity {
				jac.Set(i, off+j, jac.At(i, off+j)+v)
			}
		}
	}
	return jac, nil
}

func (p *problem) update(prov *rates.Provider, params []float64) (*rates.Provider, error) {
	curves := make([]*curve.Curve, 0, len(p.group.Curves))
	for _, cd := range p.group.Curves {
		cv, _ := prov.Curve(cd.Name)
		off := p.offsets[cd.Name]
		next, err := cv.WithParameters(params[off : off+len(cd.Nodes)])
		if err != nil {
			return nil, fmt.Errorf("calibration: %s: %w", p.group.Name, err)
		}
		curves = append(curves, next)
	}
	return prov.WithCurves(curves...)
}

// checkCurves rejects solutions that reprice the quotes only because the
// curves have collapsed.
func (p *problem) checkCurves(prov *rates.Provider) error {
	for _, cd := range p.group.Curves {
		cv, _ := prov.Curve(cd.Name)
		x, y := cv.X(), cv.Y()
		for i := range x {
			if cd.ValueType == curve.DiscountFactor && !(y[i] > 0) {
				return fmt.Errorf("calibration: %s: %s node %d: discount factor %g: %w", p.group.Name, cd.Name, i, y[i], ErrDegenerateCurve)
			}
			if r := cv.ZeroRate(x[i]); math.IsNaN(r) || math.Abs(r) > maxNodeZeroRate {
				return fmt.Errorf("calibration: %s: %s node %d: zero rate %g: %w", p.group.Name, cd.Name, i, r, ErrDegenerateCurve)
			}
		}
	}
	return nil
}

func (p *problem) parameters(prov *rates.Provider) []float64 {
	out := make([]float64, 0, len(p.instruments))
	for _, cd := range p.group.Curves {
		cv, _ := prov.Curve(cd.Name)
		out = append(out, cv.Y()...)
	}
	return out
}

// CalibrateDetailed runs the Newton iteration J·Δp = −F until ‖F‖₂ is below
// the tolerance, and reports the iteration count and final Jacobian.
func (c *Calibrator) CalibrateDetailed(group GroupDefinition, valuationDate time.Time, quotes marketdata.Quotes, fixings map[market.Index]marketdata.TimeSeries) (Result, error) {
	p, err := c.setup(group, valuationDate, quotes)
	if err != nil {
		return Result{}, err
	}
	curves, err := p.initialCurves(valuationDate)
	if err != nil {
		return Result{}, err
	}
	prov, err := rates.New(rates.Config{
		ValuationDate: valuationDate,
		Curves:        curves,
		Discount:      group.Discount,
		Forward:       group.Forward,
		Fixings:       fixings,
	})
	if err != nil {
		return Result{}, fmt.Errorf("calibration: %s: %w", group.Name, err)
	}

	log := c.logger.With(slog.String("group", group.Name), slog.Int("parameters", len(p.instruments)))
	log.Info("calibration started", slog.String("valuation_date", valuationDate.Format("2006-01-02")))

	for iter := 0; ; iter++ {
		f, err := p.residuals(prov)
		if err != nil {
			return Result{}, err
		}
		norm := floats.Norm(f, 2)
		log.Debug("calibration iteration", slog.Int("iteration", iter), slog.Float64("residual_norm", norm))
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			log.Warn("calibration failed", slog.Int("iterations", iter), slog.Float64("residual_norm", norm))
			return Result{}, fmt.Errorf("calibration: %s: iteration %d: non-finite residuals: %w", group.Name, iter, ErrDegenerateCurve)
		}

		jac, err := p.jacobian(prov)
		if err != nil {
			return Result{}, err
		}
		if norm < c.cfg.ConvergenceTolerance {
			if err := p.checkCurves(prov); err != nil {
				log.Warn("calibration failed", slog.Int("iterations", iter), slog.String("error", err.Error()))
				return Result{}, err
			}
			log.Info("calibration converged", slog.Int("iterations", iter), slog.Float64("residual_norm", norm))
			return Result{Provider: prov, Iterations: iter, ResidualNorm: norm, Jacobian: jac, Labels: p.labels}, nil
		}
		if iter == c.cfg.MaxIterations {
			log.Warn("calibration failed", slog.Int("iterations", iter), slog.Float64("residual_norm", norm))
			return Result{}, &NonConvergenceError{Group: group.Name, Iterations: iter, ResidualNorm: norm, Tolerance: c.cfg.ConvergenceTolerance}
		}

		var step mat.VecDense
		floats.Scale(-1, f)
		if err := step.SolveVec(jac, mat.NewVecDense(len(f), f)); err != nil {
			var cond mat.Condition
			if !errors.As(err, &cond) || float64(cond) > c.cfg.MaxCondition {
				return Result{}, fmt.Errorf("calibration: %s: iteration %d: %v: %w", group.Name, iter, err, ErrSingularJacobian)
			}
		}
		params := p.parameters(prov)
		floats.Add(params, step.RawVector().Data)
		if prov, err = p.update(prov, params); err != nil {
			return Result{}, err
		}
	}
}

// Residuals reprices the group's instruments against prov, in node order.
func (c *Calibrator) Residuals(group GroupDefinition, valuationDate time.Time, quotes marketdata.Quotes, prov *rates.Provider) ([]float64, error) {
	p, err := c.setup(group, valuationDate, quotes)
	if err != nil {
		return nil, err
	}
	return p.residuals(prov)
}
