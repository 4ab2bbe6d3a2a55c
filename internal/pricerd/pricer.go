// Package pricerd serves Monte Carlo option pricing over HTTP and gRPC.
package pricerd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoSim-25-26J-441/pricing-core/internal/engine"
	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/internal/parallel"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/analytic"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/payoff"
)

// Pricer turns scenarios into kernel calls. Every call it makes draws its
// workers from one shared budget, so concurrent runs cannot oversubscribe
// the machine.
type Pricer struct {
	dispatcher   *parallel.Bounded
	workers      int
	blockSize    int
	defaultSteps int64
	exporter     *metrics.Exporter
	log          *slog.Logger
}

// NewPricer builds a pricer from the daemon config. exporter may be nil.
func NewPricer(cfg *config.Config, exporter *metrics.Exporter) *Pricer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	budget := cfg.WorkerBudget
	if budget <= 0 {
		budget = 4 * int64(workers)
	}
	blockSize := cfg.BlockSize
	if blockSize <= 0 {
		blockSize = engine.DefaultBlockSize
	}

	p := &Pricer{
		dispatcher:   parallel.NewBounded(budget, workers),
		workers:      workers,
		blockSize:    blockSize,
		defaultSteps: cfg.DefaultSteps,
		exporter:     exporter,
		log:          logger.With("component", "pricer"),
	}
	if exporter != nil {
		exporter.RegisterGaugeFunc("pricer_workers_in_use", "Worker slots currently held by pricing calls.",
			func() float64 { return float64(p.dispatcher.InUse()) })
		exporter.RegisterGaugeFunc("pricer_worker_budget", "Total worker slots shared by pricing calls.",
			func() float64 { return float64(p.dispatcher.Budget()) })
	}
	return p
}

// Dispatcher exposes the shared bounded dispatcher.
func (p *Pricer) Dispatcher() *parallel.Bounded {
	return p.dispatcher
}

// PriceScenario prices every option of sc in order. ctx is checked between
// options; a kernel call in flight always runs to completion. collector may
// be nil.
func (p *Pricer) PriceScenario(ctx context.Context, sc *config.Scenario, collector *metrics.Collector) ([]models.OptionResult, error) {
	if err := config.ValidateScenario(sc); err != nil {
		return nil, err
	}

	out := make([]models.OptionResult, 0, len(sc.Options))
	for _, opt := range sc.Options {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := p.PriceOption(sc, opt)
		if err != nil {
			return out, fmt.Errorf("option %s: %w", opt.Name, err)
		}
		if collector != nil {
			metrics.RecordPricing(collector, res, metrics.OptionLabels(opt.Name, res.Distribution))
		}
		out = append(out, res)
	}
	return out, nil
}

// PriceOption runs one kernel for opt under the scenario's market.
func (p *Pricer) PriceOption(sc *config.Scenario, opt config.Option) (models.OptionResult, error) {
	params, dist, err := p.kernelInputs(sc)
	if err != nil {
		return models.OptionResult{}, err
	}
	po, err := payoff.New(opt.Type, opt.Strike)
	if err != nil {
		return models.OptionResult{}, fmt.Errorf("%w: %w", engine.ErrInvalidParams, err)
	}

	opts := []engine.Option{
		engine.WithDispatcher(p.dispatcher),
		engine.WithWorkers(p.workers),
		engine.WithBlockSize(p.blockSize),
		engine.WithLogger(p.log.With("option", opt.Name)),
	}
	if sc.Simulation.Seed != nil {
		opts = append(opts, engine.WithSeed(*sc.Simulation.Seed))
	}

	k, err := engine.New(params, po, dist, opts...)
	if err != nil {
		return models.OptionResult{}, err
	}

	mode := "price"
	var res engine.Result
	if sc.Simulation.Greeks {
		mode = "greeks"
		res, err = k.PriceWithGreeks()
	} else {
		res, err = k.Estimate()
	}
	if err == nil && !res.Finite() {
		err = fmt.Errorf("%w: price=%v delta=%v gamma=%v se=%v (seed %d)",
			engine.ErrNumericalOverflow, res.Price, res.Delta, res.Gamma, res.StandardError, res.BaseSeed)
	}
	p.exporter.ObservePricing(mode, params.Distribution.String(), params.Paths, res.ElapsedTimeMs, err)
	if err != nil {
		return models.OptionResult{}, err
	}

	out := models.OptionResult{
		Name:           opt.Name,
		Type:           opt.Type,
		Strike:         opt.Strike,
		Price:          res.Price,
		Delta:          res.Delta,
		Gamma:          res.Gamma,
		StandardError:  res.StandardError,
		Paths:          params.Paths,
		Steps:          k.Params().Steps,
		Distribution:   params.Distribution.String(),
		BaseSeed:       res.BaseSeed,
		ElapsedTimeMs:  res.ElapsedTimeMs,
		PathsPerSecond: res.Throughput(params.Paths),
	}
	m := sc.Market
	if q, err := analytic.Price(opt.Type, m.Spot, opt.Strike, m.Rate, m.Volatility, m.Expiry); err == nil {
		out.ReferencePrice = q.Price
	}
	return out, nil
}

func (p *Pricer) kernelInputs(sc *config.Scenario) (engine.Params, engine.DistributionConfig, error) {
	kind, err := engine.ParseDistribution(sc.Simulation.Distribution)
	if err != nil {
		return engine.Params{}, engine.DistributionConfig{}, fmt.Errorf("%w: %w", engine.ErrInvalidParams, err)
	}
	steps := sc.Simulation.Steps
	if steps == 0 {
		steps = p.defaultSteps
	}

	params := engine.Params{
		Spot:         sc.Market.Spot,
		Volatility:   sc.Market.Volatility,
		Rate:         sc.Market.Rate,
		Expiry:       sc.Market.Expiry,
		Paths:        sc.Simulation.Paths,
		Steps:        steps,
		Distribution: kind,
	}
	dist := engine.NewDistributionConfig(kind)
	if sc.Simulation.DegreesOfFreedom > 0 {
		dist.DegreesOfFreedom = sc.Simulation.DegreesOfFreedom
	}
	return params, dist, nil
}
