package pricerd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
)

// RunExecutor manages asynchronous run execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	pricer   *Pricer
	exporter *metrics.Exporter
	notifier *Notifier

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      conc.WaitGroup
}

func NewRunExecutor(store *RunStore, pricer *Pricer, exporter *metrics.Exporter) *RunExecutor {
	return &RunExecutor{
		store:    store,
		pricer:   pricer,
		exporter: exporter,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// SetNotifier enables completion callbacks for runs that registered one.
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

// Start begins pricing a run asynchronously and returns it as RUNNING.
// Starting a running run is a no-op.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.Terminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		e.cleanup(runID)
		return nil, err
	}

	e.wg.Go(func() { e.runPricing(ctx, runID) })
	return updated, nil
}

// Stop cancels a run. Options priced so far, including one in flight when
// Stop arrives, stay in the run's results. A running run sends its callback
// once those results are stored.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	e.mu.Lock()
	cancel, running := e.cancels[runID]
	e.mu.Unlock()

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}
	e.exporter.ObserveRun(string(models.RunStatusCancelled))
	if running {
		cancel()
	} else {
		e.notifier.Notify(updated)
	}
	return updated, nil
}

// Shutdown cancels every active run and waits for their goroutines, or
// for ctx to end.
func (e *RunExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil && !errors.Is(err, ErrRunTerminal) {
			logger.Warn("failed to stop run during shutdown", "run_id", id, "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		e.notifier.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
}

func (e *RunExecutor) runPricing(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}

	collector := metrics.NewCollector()
	collector.Start()
	if err := e.store.SetCollector(runID, collector); err != nil {
		logger.Error("failed to store collector", "run_id", runID, "error", err)
	}

	logger.Info("starting pricing run", "run_id", runID, "options", len(rec.Scenario.Options))
	options, err := e.pricer.PriceScenario(ctx, rec.Scenario, collector)
	collector.Stop()

	results := &models.RunResults{Options: options, Summary: collector.GetSummary()}
	if setErr := e.store.SetResults(runID, results); setErr != nil {
		logger.Error("failed to set results", "run_id", runID, "error", setErr)
	}

	if err != nil {
		if ctx.Err() != nil {
			logger.Info("pricing run cancelled", "run_id", runID, "priced", len(options))
			if rec, ok := e.store.Get(runID); ok && rec.Run.Status == models.RunStatusCancelled {
				e.notifier.Notify(rec)
			}
			return
		}
		logger.Error("pricing run failed", "run_id", runID, "error", err)
		e.finish(runID, models.RunStatusFailed, err.Error())
		return
	}

	e.finish(runID, models.RunStatusCompleted, "")
	logger.Info("pricing run completed", "run_id", runID,
		"options", len(options),
		"duration_ms", results.Summary.DurationMs)
}

func (e *RunExecutor) finish(runID string, status models.RunStatus, errMsg string) {
	rec, err := e.store.SetStatus(runID, status, errMsg)
	if err != nil {
		if !errors.Is(err, ErrRunTerminal) {
			logger.Error("failed to set final status", "run_id", runID, "status", status, "error", err)
			return
		}
		// Stopped while the last option was pricing.
		if rec.Run.Status == models.RunStatusCancelled {
			e.notifier.Notify(rec)
		}
		return
	}
	e.exporter.ObserveRun(string(status))
	e.notifier.Notify(rec)
}
