package engine

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/GoSim-25-26J-441/pricing-core/pkg/payoff"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/rng"
)

// constants are the per-call discretization values shared read-only by all
// workers.
type constants struct {
	spot    float64
	bump    float64
	drift   float64
	volStep float64
	steps   int64
}

// accumulator holds one worker's undiscounted payoff sums.
type accumulator struct {
	sum     float64
	sumSq   float64
	sumUp   float64
	sumDown float64
}

func (a *accumulator) add(o *accumulator) {
	a.sum += o.sum
	a.sumSq += o.sumSq
	a.sumUp += o.sumUp
	a.sumDown += o.sumDown
}

// blockPlan assigns contiguous runs of path blocks to workers.
type blockPlan struct {
	paths     int64
	blockSize int64
	total     int
	perWorker int
	workers   int
}

func newBlockPlan(paths int64, blockSize, workers int) blockPlan {
	bs := int64(blockSize)
	total := int((paths + bs - 1) / bs)
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}
	return blockPlan{
		paths:     paths,
		blockSize: bs,
		total:     total,
		perWorker: (total + workers - 1) / workers,
		workers:   workers,
	}
}

// blocks returns the half-open block range of worker w.
func (p blockPlan) blocks(w int) (int, int) {
	lo := min(w*p.perWorker, p.total)
	hi := min(lo+p.perWorker, p.total)
	return lo, hi
}

// blockLen is the number of paths in block b; only the last block is short.
func (p blockPlan) blockLen(b int) int {
	start := int64(b) * p.blockSize
	return int(min(p.blockSize, p.paths-start))
}

// sampler fills a buffer with innovations.
type sampler interface {
	fill(z []float64)
}

type normalSampler struct {
	r *rand.Rand
}

func (s normalSampler) fill(z []float64) {
	for i := range z {
		z[i] = s.r.NormFloat64()
	}
}

// studentSampler draws raw Student-t deviates; they are not rescaled to
// unit variance.
type studentSampler struct {
	d distuv.StudentsT
}

func (s studentSampler) fill(z []float64) {
	for i := range z {
		z[i] = s.d.Rand()
	}
}

func newSampler(g *rng.Xoshiro256PlusPlus, kind Distribution, df float64) sampler {
	if kind == StudentT {
		return studentSampler{d: distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df, Src: g}}
	}
	return normalSampler{r: rand.New(g)}
}

// worker owns a generator and fixed-capacity arenas reused for every block
// it simulates.
type worker struct {
	sampler sampler
	spot    []float64
	up      []float64
	down    []float64
	z       []float64
}

func newWorker(g *rng.Xoshiro256PlusPlus, kind Distribution, df float64, blockSize int, greeks bool) *worker {
	w := &worker{
		sampler: newSampler(g, kind, df),
		spot:    make([]float64, blockSize),
		z:       make([]float64, blockSize),
	}
	if greeks {
		w.up = make([]float64, blockSize)
		w.down = make([]float64, blockSize)
	}
	return w
}

func fill(buf []float64, v float64) {
	for i := range buf {
		buf[i] = v
	}
}

func (w *worker) runBlock(c *constants, n int, p payoff.Payoff, acc *accumulator) {
	spot := w.spot[:n]
	z := w.z[:n]
	fill(spot, c.spot)

	for step := int64(0); step < c.steps; step++ {
		w.sampler.fill(z)
		for i := range spot {
			spot[i] *= math.Exp(c.drift + c.volStep*z[i])
		}
	}

	sum, sumSq := 0.0, 0.0
	for _, s := range spot {
		v := p.Evaluate(s)
		sum += v
		sumSq += v * v
	}
	acc.sum += sum
	acc.sumSq += sumSq
}

func (w *worker) runGreeksBlock(c *constants, n int, p payoff.Payoff, acc *accumulator) {
	spot := w.spot[:n]
	up := w.up[:n]
	down := w.down[:n]
	z := w.z[:n]
	fill(spot, c.spot)
	fill(up, c.spot+c.bump)
	fill(down, c.spot-c.bump)

	for step := int64(0); step < c.steps; step++ {
		w.sampler.fill(z)
		for i := range spot {
			growth := math.Exp(c.drift + c.volStep*z[i])
			spot[i] *= growth
			up[i] *= growth
			down[i] *= growth
		}
	}

	sum, sumSq, sumUp, sumDown := 0.0, 0.0, 0.0, 0.0
	for i, s := range spot {
		v := p.Evaluate(s)
		sum += v
		sumSq += v * v
		sumUp += p.Evaluate(up[i])
		sumDown += p.Evaluate(down[i])
	}
	acc.sum += sum
	acc.sumSq += sumSq
	acc.sumUp += sumUp
	acc.sumDown += sumDown
}
