// Package payoff defines terminal payoffs for European options.
package payoff

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrUnknownPayoff = errors.New("unknown payoff type")

// Payoff maps a terminal spot price to a non-negative payoff.
// Implementations must be safe for concurrent use.
type Payoff interface {
	Evaluate(spot float64) float64
}

// Call pays max(S-K, 0).
type Call struct {
	Strike float64
}

func (c Call) Evaluate(spot float64) float64 {
	return math.Max(spot-c.Strike, 0)
}

// Put pays max(K-S, 0).
type Put struct {
	Strike float64
}

func (p Put) Evaluate(spot float64) float64 {
	return math.Max(p.Strike-spot, 0)
}

// Func adapts an ordinary function to the Payoff interface.
type Func func(spot float64) float64

func (f Func) Evaluate(spot float64) float64 {
	return f(spot)
}

// New builds a payoff from its config name ("call" or "put").
func New(kind string, strike float64) (Payoff, error) {
	if strike < 0 || math.IsNaN(strike) || math.IsInf(strike, 0) {
		return nil, fmt.Errorf("invalid strike: %v", strike)
	}
	switch strings.ToLower(kind) {
	case "call":
		return Call{Strike: strike}, nil
	case "put":
		return Put{Strike: strike}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayoff, kind)
	}
}
