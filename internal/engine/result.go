package engine

import "math"

// Result is the outcome of one pricing call.
type Result struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	// StandardError is the Monte Carlo standard error of Price.
	StandardError float64 `json:"standard_error"`
	ElapsedTimeMs float64 `json:"elapsed_time_ms"`
	// BaseSeed reproduces the call when passed to WithSeed.
	BaseSeed uint64 `json:"base_seed"`
}

// Throughput returns simulated paths per second.
func (r Result) Throughput(paths int64) float64 {
	if r.ElapsedTimeMs <= 0 {
		return 0
	}
	return float64(paths) / r.ElapsedTimeMs * 1000
}

// Finite reports whether every estimate in r is a finite number. Extreme
// volatility or very heavy tails can overflow the path exponentials.
func (r Result) Finite() bool {
	for _, v := range [...]float64{r.Price, r.Delta, r.Gamma, r.StandardError} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
