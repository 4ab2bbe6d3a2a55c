// Package parallel distributes an index range across goroutines.
//
// Every Dispatcher calls unit(i) exactly once per index in [start, end) and
// returns only after all of its goroutines have finished. A panic inside a
// unit is recovered once every worker has stopped and reported as an error;
// the caller must discard any partial work.
package parallel

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var (
	ErrWorkerPanic       = errors.New("worker panicked")
	ErrResourceExhausted = errors.New("worker budget exhausted")
)

// Dispatcher is an execution strategy for an index range.
type Dispatcher interface {
	ParallelFor(start, end int64, unit func(i int64)) error
}

// span is a half-open index range owned by one worker.
type span struct {
	lo, hi int64
}

// partition splits [start, end) into at most workers contiguous chunks of
// ceil(n/workers) indices. Empty trailing chunks are dropped.
func partition(start, end int64, workers int) []span {
	if end <= start {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	n := end - start
	size := (n + int64(workers) - 1) / int64(workers)

	out := make([]span, 0, workers)
	for w := int64(0); w < int64(workers); w++ {
		lo := start + w*size
		if lo >= end {
			break
		}
		hi := lo + size
		if hi > end {
			hi = end
		}
		out = append(out, span{lo: lo, hi: hi})
	}
	return out
}

// DefaultWorkers is the hardware parallelism available to the process.
func DefaultWorkers() int {
	return max(1, runtime.GOMAXPROCS(0))
}

func runSpan(sp span, unit func(int64)) {
	for i := sp.lo; i < sp.hi; i++ {
		unit(i)
	}
}

func panicError(r *panics.Recovered) error {
	return fmt.Errorf("%w: %w", ErrWorkerPanic, r.AsError())
}

// Static runs one goroutine per chunk with static even partitioning.
type Static struct {
	// Workers caps the goroutine count; zero means GOMAXPROCS.
	Workers int
}

// NewStatic returns a Static dispatcher using n workers (0 for GOMAXPROCS).
func NewStatic(n int) *Static {
	return &Static{Workers: n}
}

func (s *Static) workers() int {
	if s == nil || s.Workers <= 0 {
		return DefaultWorkers()
	}
	return s.Workers
}

// ParallelFor implements Dispatcher.
func (s *Static) ParallelFor(start, end int64, unit func(i int64)) error {
	spans := partition(start, end, s.workers())
	if len(spans) == 0 {
		return nil
	}

	var wg conc.WaitGroup
	for _, sp := range spans {
		wg.Go(func() { runSpan(sp, unit) })
	}
	if r := wg.WaitAndRecover(); r != nil {
		return panicError(r)
	}
	return nil
}

// Serial runs every index on the calling goroutine.
type Serial struct{}

// ParallelFor implements Dispatcher.
func (Serial) ParallelFor(start, end int64, unit func(i int64)) error {
	var pc panics.Catcher
	pc.Try(func() { runSpan(span{lo: start, hi: end}, unit) })
	if r := pc.Recovered(); r != nil {
		return panicError(r)
	}
	return nil
}
