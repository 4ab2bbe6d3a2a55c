package pricerd

import (
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
)

type testDaemon struct {
	store    *RunStore
	pricer   *Pricer
	executor *RunExecutor
	exporter *metrics.Exporter
}

func newTestDaemon(t *testing.T) *testDaemon {
	t.Helper()
	exporter := metrics.NewExporter()
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	cfg.WorkerBudget = 8
	pricer := NewPricer(cfg, exporter)
	store := NewRunStore()
	return &testDaemon{
		store:    store,
		pricer:   pricer,
		executor: NewRunExecutor(store, pricer, exporter),
		exporter: exporter,
	}
}

func testScenario() *config.Scenario {
	seed := uint64(7)
	return &config.Scenario{
		Market:     config.Market{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1},
		Simulation: config.Simulation{Paths: 4000, Steps: 12, Seed: &seed},
		Options: []config.Option{
			{Name: "atm-call", Type: "call", Strike: 100},
			{Name: "atm-put", Type: "put", Strike: 100},
		},
	}
}

// overflowScenario draws Cauchy shocks at 300% volatility, which overflows
// the path exponentials.
func overflowScenario() *config.Scenario {
	sc := testScenario()
	sc.Market.Volatility = 3
	sc.Simulation.Steps = 52
	sc.Simulation.Distribution = "student_t"
	sc.Simulation.DegreesOfFreedom = 1
	sc.Simulation.Greeks = true
	return sc
}

const overflowScenarioJSON = `{
  "market": {"spot": 100, "volatility": 3, "rate": 0.05, "expiry": 1},
  "simulation": {"paths": 4000, "steps": 52, "seed": 7, "distribution": "student_t", "degrees_of_freedom": 1, "greeks": true},
  "options": [{"name": "atm-call", "type": "call", "strike": 100}]
}`

const testScenarioJSON = `{
  "market": {"spot": 100, "volatility": 0.2, "rate": 0.05, "expiry": 1},
  "simulation": {"paths": 4000, "steps": 12, "seed": 7, "greeks": true},
  "options": [{"name": "atm-call", "type": "call", "strike": 100}]
}`

func waitForStatus(t *testing.T, store *RunStore, runID string, want models.RunStatus) *RunRecord {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		rec, ok := store.Get(runID)
		if !ok {
			t.Fatalf("run %s disappeared", runID)
		}
		if rec.Run.Status == want {
			return rec
		}
		if rec.Run.Status.Terminal() {
			t.Fatalf("expected status %s, run ended as %s (%s)", want, rec.Run.Status, rec.Run.Error)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for run %s to reach %s", runID, want)
	return nil
}
