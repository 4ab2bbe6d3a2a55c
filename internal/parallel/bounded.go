package parallel

import (
	"fmt"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Bounded draws its goroutines from a worker budget shared by every call
// that uses it. A call either gets all the workers its partition needs or
// fails with ErrResourceExhausted before running any unit.
type Bounded struct {
	sem     *semaphore.Weighted
	budget  int64
	workers int
	inUse   atomic.Int64
}

// NewBounded creates a dispatcher with a shared budget of worker slots.
// workers is the goroutine count per call (0 for GOMAXPROCS); it is clamped
// to the budget.
func NewBounded(budget int64, workers int) *Bounded {
	if budget < 1 {
		budget = int64(DefaultWorkers())
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if int64(workers) > budget {
		workers = int(budget)
	}
	return &Bounded{
		sem:     semaphore.NewWeighted(budget),
		budget:  budget,
		workers: workers,
	}
}

// Budget returns the total number of worker slots.
func (b *Bounded) Budget() int64 {
	return b.budget
}

// InUse returns the number of slots currently held.
func (b *Bounded) InUse() int64 {
	return b.inUse.Load()
}

// ParallelFor implements Dispatcher.
func (b *Bounded) ParallelFor(start, end int64, unit func(i int64)) error {
	spans := partition(start, end, b.workers)
	if len(spans) == 0 {
		return nil
	}

	n := int64(len(spans))
	if !b.sem.TryAcquire(n) {
		return fmt.Errorf("%w: need %d of %d workers, %d in use", ErrResourceExhausted, n, b.budget, b.inUse.Load())
	}
	b.inUse.Add(n)
	defer func() {
		b.inUse.Add(-n)
		b.sem.Release(n)
	}()

	var g errgroup.Group
	for _, sp := range spans {
		g.Go(func() error {
			var pc panics.Catcher
			pc.Try(func() { runSpan(sp, unit) })
			if r := pc.Recovered(); r != nil {
				return panicError(r)
			}
			return nil
		})
	}
	return g.Wait()
}
