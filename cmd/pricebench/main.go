// Command pricebench times the kernel on an at-the-money call under normal
// and fat-tailed innovations and reports the price gap between them.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/GoSim-25-26J-441/pricing-core/internal/engine"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/analytic"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/payoff"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

const (
	spot   = 100.0
	strike = 100.0
	rate   = 0.05
	vol    = 0.2
	expiry = 1.0

	warmupPaths = 10000
	fatTailDoF  = 4.0
)

var rule = strings.Repeat("-", 40)

type bench struct {
	steps   int64
	workers int
	seed    uint64
	jumped  bool
}

func (b bench) run(name string, dist engine.Distribution, paths int64) (engine.Result, error) {
	params := engine.Params{
		Spot:         spot,
		Volatility:   vol,
		Rate:         rate,
		Expiry:       expiry,
		Paths:        paths,
		Steps:        b.steps,
		Distribution: dist,
	}
	cfg := engine.NewDistributionConfig(dist)
	cfg.DegreesOfFreedom = fatTailDoF

	opts := []engine.Option{engine.WithWorkers(b.workers)}
	if b.seed != 0 {
		opts = append(opts, engine.WithSeed(b.seed))
	}
	if b.jumped {
		opts = append(opts, engine.WithJumpedStreams())
	}

	k, err := engine.New(params, payoff.Call{Strike: strike}, cfg, opts...)
	if err != nil {
		return engine.Result{}, err
	}

	fmt.Printf("Running %s (%d steps) with %d paths...\n", name, k.Params().Steps, paths)
	res, err := k.PriceWithGreeks()
	if err != nil {
		return engine.Result{}, err
	}

	fmt.Printf("Base Seed:  %d\n", res.BaseSeed)
	fmt.Printf("Price:      %s (se %s)\n", utils.FormatFixed(res.Price, 5), utils.FormatFixed(res.StandardError, 5))
	fmt.Printf("Delta:      %s\n", utils.FormatFixed(res.Delta, 5))
	fmt.Printf("Gamma:      %s\n", utils.FormatFixed(res.Gamma, 5))
	fmt.Printf("Time:       %s ms (%s)\n", utils.FormatFixed(res.ElapsedTimeMs, 5), utils.FormatDuration(utils.MsToTime(res.ElapsedTimeMs)))
	fmt.Printf("Throughput: %s paths/sec\n", utils.FormatThroughput(res.Throughput(paths)))
	fmt.Println(rule)
	return res, nil
}

func main() {
	_ = godotenv.Load()

	var (
		paths    int64
		b        bench
		logLevel string
	)
	flag.Int64Var(&paths, "paths", 1000000, "paths per measured run")
	flag.Int64Var(&b.steps, "steps", engine.DefaultSteps, "time steps per path")
	flag.IntVar(&b.workers, "workers", 0, "worker streams (0 for GOMAXPROCS)")
	flag.Uint64Var(&b.seed, "seed", 0, "pin the base seed (0 draws a fresh one)")
	flag.BoolVar(&b.jumped, "jumped", false, "derive worker streams by jump-ahead")
	flag.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stderr))

	fmt.Println("Monte Carlo Pricer Benchmark (multi-step log-Euler)")
	fmt.Println(rule)

	if _, err := b.run("Warmup (Normal)", engine.Normal, warmupPaths); err != nil {
		fail(err)
	}
	normal, err := b.run("Normal Distribution", engine.Normal, paths)
	if err != nil {
		fail(err)
	}
	fat, err := b.run(fmt.Sprintf("Fat-Tail (Student-t, df=%g)", fatTailDoF), engine.StudentT, paths)
	if err != nil {
		fail(err)
	}

	if ref, err := analytic.Call(spot, strike, rate, vol, expiry); err == nil {
		fmt.Printf(">>> Black-Scholes reference: %s (normal error %s)\n",
			utils.FormatFixed(ref.Price, 5), utils.FormatFixed(normal.Price-ref.Price, 5))
	}
	fmt.Printf(">>> Model Risk Premium (Fat-Tail - Normal): %s\n", utils.FormatFixed(fat.Price-normal.Price, 5))
	fmt.Println(rule)
}

func fail(err error) {
	logger.Error("benchmark failed", "error", err)
	os.Exit(1)
}
