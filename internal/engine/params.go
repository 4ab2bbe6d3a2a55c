package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultSteps is one year of trading days.
	DefaultSteps = 252
	// DefaultBlockSize is the number of paths simulated together in one arena.
	DefaultBlockSize = 1024
	// DefaultDegreesOfFreedom is used when a Student-t config leaves it unset.
	DefaultDegreesOfFreedom = 5.0

	bumpFraction = 0.01
)

var (
	ErrInvalidParams     = errors.New("invalid simulation parameters")
	ErrSimulationAborted = errors.New("simulation aborted")
	// ErrNumericalOverflow marks a result that is NaN or infinite. The kernel
	// itself never returns it; callers that must serialize results do.
	ErrNumericalOverflow = errors.New("numerical overflow")
)

// Distribution selects the law of the per-step innovations.
type Distribution int

const (
	Normal Distribution = iota
	StudentT
)

func (d Distribution) String() string {
	switch d {
	case Normal:
		return "normal"
	case StudentT:
		return "student_t"
	default:
		return fmt.Sprintf("distribution(%d)", int(d))
	}
}

// ParseDistribution accepts "normal", "student_t", "studentt" or "t".
func ParseDistribution(s string) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "gaussian":
		return Normal, nil
	case "student_t", "studentt", "student-t", "t":
		return StudentT, nil
	default:
		return Normal, fmt.Errorf("unknown distribution: %q", s)
	}
}

// DistributionConfig is the distribution setup handed to a Kernel. The
// kernel only reads DegreesOfFreedom from it; innovations are always drawn
// from the kernel's own per-worker generators.
type DistributionConfig struct {
	Kind             Distribution
	DegreesOfFreedom float64
}

// NewDistributionConfig returns a config with the default degrees of freedom.
func NewDistributionConfig(kind Distribution) DistributionConfig {
	return DistributionConfig{Kind: kind, DegreesOfFreedom: DefaultDegreesOfFreedom}
}

// Params are the market and simulation inputs of a pricing call.
//
// Extreme Volatility*sqrt(Expiry/Steps) combinations can overflow the
// exponential update; such inputs are accepted and may yield +Inf or NaN.
type Params struct {
	Spot         float64
	Volatility   float64
	Rate         float64
	Expiry       float64
	Paths        int64
	Steps        int64
	Distribution Distribution
}

// WithDefaults fills Steps when unset.
func (p Params) WithDefaults() Params {
	if p.Steps == 0 {
		p.Steps = DefaultSteps
	}
	return p
}

// Validate rejects inputs that would otherwise produce NaN or divide by zero.
func (p Params) Validate() error {
	switch {
	case p.Paths < 1:
		return fmt.Errorf("%w: paths must be at least 1, got %d", ErrInvalidParams, p.Paths)
	case p.Steps < 1:
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidParams, p.Steps)
	case !finite(p.Spot) || p.Spot <= 0:
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParams, p.Spot)
	case !finite(p.Expiry) || p.Expiry <= 0:
		return fmt.Errorf("%w: expiry must be positive, got %v", ErrInvalidParams, p.Expiry)
	case !finite(p.Volatility) || p.Volatility < 0:
		return fmt.Errorf("%w: volatility must be non-negative, got %v", ErrInvalidParams, p.Volatility)
	case !finite(p.Rate):
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidParams, p.Rate)
	case p.Distribution != Normal && p.Distribution != StudentT:
		return fmt.Errorf("%w: unsupported distribution %v", ErrInvalidParams, p.Distribution)
	}
	return nil
}

func (c DistributionConfig) validate(kind Distribution) error {
	if kind != StudentT {
		return nil
	}
	if !finite(c.DegreesOfFreedom) || c.DegreesOfFreedom <= 0 {
		return fmt.Errorf("%w: degrees of freedom must be positive, got %v", ErrInvalidParams, c.DegreesOfFreedom)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
