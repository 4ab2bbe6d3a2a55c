// Package engine implements the Monte Carlo pricing kernel: Euler-Maruyama
// simulation of geometric Brownian motion in cache-sized path blocks, fanned
// out over a parallel.Dispatcher with one private generator per worker.
package engine

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/internal/parallel"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/payoff"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/rng"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

// Kernel prices one option under one set of parameters. It holds no state
// between calls and is safe to call from multiple goroutines.
type Kernel struct {
	params     Params
	payoff     payoff.Payoff
	dist       DistributionConfig
	dispatcher parallel.Dispatcher
	workers    int
	blockSize  int
	seed       uint64
	pinned     bool
	jumped     bool
	logger     *slog.Logger
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithSeed pins the base seed so every call replays the same paths.
func WithSeed(seed uint64) Option {
	return func(k *Kernel) {
		k.seed = seed
		k.pinned = true
	}
}

// WithDispatcher replaces the default static goroutine dispatcher.
func WithDispatcher(d parallel.Dispatcher) Option {
	return func(k *Kernel) {
		k.dispatcher = d
	}
}

// WithWorkers sets the number of worker streams. Results under a pinned
// seed depend on this value, not on the dispatcher.
func WithWorkers(n int) Option {
	return func(k *Kernel) {
		k.workers = n
	}
}

// WithBlockSize overrides the number of paths per arena block.
func WithBlockSize(n int) Option {
	return func(k *Kernel) {
		k.blockSize = n
	}
}

// WithJumpedStreams derives worker w's generator by jumping the base
// stream w times instead of seeding it with base+w.
func WithJumpedStreams() Option {
	return func(k *Kernel) {
		k.jumped = true
	}
}

// WithLogger sets the kernel's logger.
func WithLogger(l *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = l
	}
}

// New validates params and returns a Kernel. The innovation law is taken
// from params.Distribution; dist contributes only the degrees of freedom.
func New(params Params, p payoff.Payoff, dist DistributionConfig, opts ...Option) (*Kernel, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payoff is required", ErrInvalidParams)
	}
	if params.Distribution == StudentT && dist.DegreesOfFreedom == 0 {
		dist.DegreesOfFreedom = DefaultDegreesOfFreedom
	}
	if err := dist.validate(params.Distribution); err != nil {
		return nil, err
	}

	k := &Kernel{
		params:    params,
		payoff:    p,
		dist:      dist,
		blockSize: DefaultBlockSize,
		logger:    logger.Default,
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.blockSize < 1 {
		return nil, fmt.Errorf("%w: block size must be at least 1, got %d", ErrInvalidParams, k.blockSize)
	}
	if k.workers <= 0 {
		k.workers = parallel.DefaultWorkers()
	}
	if k.dispatcher == nil {
		k.dispatcher = parallel.NewStatic(k.workers)
	}
	if dist.Kind != params.Distribution {
		k.logger.Warn("distribution config kind differs from params; using params",
			"params", params.Distribution.String(),
			"config", dist.Kind.String())
	}
	return k, nil
}

// Params returns the kernel's validated parameters.
func (k *Kernel) Params() Params {
	return k.params
}

// Price returns the discounted expected payoff.
func (k *Kernel) Price() (float64, error) {
	res, err := k.Estimate()
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// Estimate runs the same simulation as Price and also reports the standard
// error, seed and timing. Delta and Gamma are left zero.
func (k *Kernel) Estimate() (Result, error) {
	return k.simulate(false)
}

// PriceWithGreeks returns price, Delta and Gamma from one simulation in
// which the base, up and down spots share every innovation.
func (k *Kernel) PriceWithGreeks() (Result, error) {
	return k.simulate(true)
}

func (k *Kernel) baseSeed() uint64 {
	if k.pinned {
		return k.seed
	}
	return rng.NewBaseSeed()
}

func (k *Kernel) simulate(greeks bool) (Result, error) {
	start := time.Now()
	seed := k.baseSeed()
	p := k.params

	dt := p.Expiry / float64(p.Steps)
	c := constants{
		spot:    p.Spot,
		drift:   (p.Rate - 0.5*p.Volatility*p.Volatility) * dt,
		volStep: p.Volatility * math.Sqrt(dt),
		steps:   p.Steps,
	}
	if greeks {
		c.bump = bumpFraction * p.Spot
	}
	discount := math.Exp(-p.Rate * p.Expiry)

	plan := newBlockPlan(p.Paths, k.blockSize, k.workers)
	streams := k.streamSeeds(seed, plan.workers)
	partials := make([]accumulator, plan.workers)

	err := k.dispatcher.ParallelFor(0, int64(plan.workers), func(i int64) {
		w := newWorker(streams[i], p.Distribution, k.dist.DegreesOfFreedom, k.blockSize, greeks)
		lo, hi := plan.blocks(int(i))
		for b := lo; b < hi; b++ {
			n := plan.blockLen(b)
			if greeks {
				w.runGreeksBlock(&c, n, k.payoff, &partials[i])
			} else {
				w.runBlock(&c, n, k.payoff, &partials[i])
			}
		}
	})
	if err != nil {
		k.logger.Error("simulation aborted", "seed", seed, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrSimulationAborted, err)
	}

	var total accumulator
	for i := range partials {
		total.add(&partials[i])
	}

	n := float64(p.Paths)
	res := Result{
		Price:         total.sum / n * discount,
		StandardError: standardError(total.sum, total.sumSq, p.Paths) * discount,
		BaseSeed:      seed,
	}
	if greeks {
		up := total.sumUp / n * discount
		down := total.sumDown / n * discount
		res.Delta = (up - down) / (2 * c.bump)
		res.Gamma = (up - 2*res.Price + down) / (c.bump * c.bump)
	}
	res.ElapsedTimeMs = utils.TimeToMs(time.Since(start))

	k.logger.Debug("pricing complete",
		"paths", p.Paths,
		"steps", p.Steps,
		"distribution", p.Distribution.String(),
		"workers", plan.workers,
		"greeks", greeks,
		"seed", seed,
		"price", res.Price,
		"elapsed_ms", res.ElapsedTimeMs)
	return res, nil
}

// streamSeeds returns the generator of each worker, either seeded base+w or
// jumped w times from the base stream.
func (k *Kernel) streamSeeds(base uint64, workers int) []*rng.Xoshiro256PlusPlus {
	out := make([]*rng.Xoshiro256PlusPlus, workers)
	if !k.jumped {
		for w := range out {
			out[w] = rng.New(rng.DeriveSeed(base, w))
		}
		return out
	}

	g := rng.New(base)
	for w := range out {
		out[w] = g.Clone()
		g.Jump()
	}
	return out
}

func standardError(sum, sumSq float64, paths int64) float64 {
	if paths < 2 {
		return 0
	}
	n := float64(paths)
	mean := sum / n
	variance := (sumSq - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance / n)
}
