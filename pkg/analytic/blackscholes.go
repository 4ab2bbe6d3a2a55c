// Package analytic provides closed-form Black-Scholes values used as a
// reference for simulated prices.
package analytic

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var ErrInvalidInputs = errors.New("invalid black-scholes inputs")

// Quote is a closed-form price with its spot sensitivities.
type Quote struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
}

func validate(spot, strike, vol, expiry float64) error {
	if spot <= 0 || strike <= 0 || vol < 0 || expiry < 0 {
		return ErrInvalidInputs
	}
	return nil
}

func d1d2(spot, strike, rate, vol, expiry float64) (float64, float64) {
	sqrtT := math.Sqrt(expiry)
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*expiry) / (vol * sqrtT)
	return d1, d1 - vol*sqrtT
}

// Call prices a European call with no dividends.
func Call(spot, strike, rate, vol, expiry float64) (Quote, error) {
	if err := validate(spot, strike, vol, expiry); err != nil {
		return Quote{}, err
	}
	df := math.Exp(-rate * expiry)
	if expiry == 0 || vol == 0 {
		fwd := spot * math.Exp(rate*expiry)
		q := Quote{Price: math.Max(fwd-strike, 0) * df}
		if fwd > strike {
			q.Delta = 1
		}
		return q, nil
	}

	d1, d2 := d1d2(spot, strike, rate, vol, expiry)
	n := distuv.UnitNormal
	return Quote{
		Price: spot*n.CDF(d1) - strike*df*n.CDF(d2),
		Delta: n.CDF(d1),
		Gamma: n.Prob(d1) / (spot * vol * math.Sqrt(expiry)),
	}, nil
}

// Put prices a European put with no dividends.
func Put(spot, strike, rate, vol, expiry float64) (Quote, error) {
	if err := validate(spot, strike, vol, expiry); err != nil {
		return Quote{}, err
	}
	df := math.Exp(-rate * expiry)
	if expiry == 0 || vol == 0 {
		fwd := spot * math.Exp(rate*expiry)
		q := Quote{Price: math.Max(strike-fwd, 0) * df}
		if fwd < strike {
			q.Delta = -1
		}
		return q, nil
	}

	d1, d2 := d1d2(spot, strike, rate, vol, expiry)
	n := distuv.UnitNormal
	return Quote{
		Price: strike*df*n.CDF(-d2) - spot*n.CDF(-d1),
		Delta: n.CDF(d1) - 1,
		Gamma: n.Prob(d1) / (spot * vol * math.Sqrt(expiry)),
	}, nil
}

// Price dispatches on kind ("call" or "put").
func Price(kind string, spot, strike, rate, vol, expiry float64) (Quote, error) {
	switch kind {
	case "call":
		return Call(spot, strike, rate, vol, expiry)
	case "put":
		return Put(spot, strike, rate, vol, expiry)
	default:
		return Quote{}, ErrInvalidInputs
	}
}
