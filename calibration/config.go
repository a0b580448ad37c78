package calibration

import "fmt"

// Config holds the Newton solver parameters.
type Config struct {
	// ConvergenceTolerance is the bound on the Euclidean norm of the residual
	// vector, in present value per unit notional.
	ConvergenceTolerance float64

	// MaxIterations is the number of Newton steps allowed before giving up.
	MaxIterations int

	// MaxCondition is the largest Jacobian condition number accepted by the
	// linear solve. Beyond it the step is rejected as singular.
	MaxCondition float64
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance: 1e-9,
	MaxIterations:        100,
	MaxCondition:         1e14,
}

// Validate rejects non-positive limits.
func (c Config) Validate() error {
	if c.ConvergenceTolerance <= 0 {
		return fmt.Errorf("calibration.Config: tolerance must be positive, got %g", c.ConvergenceTolerance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("calibration.Config: max iterations must be at least 1, got %d", c.MaxIterations)
	}
	if c.MaxCondition <= 1 {
		return fmt.Errorf("calibration.Config: max condition must exceed 1, got %g", c.MaxCondition)
	}
	return nil
}
