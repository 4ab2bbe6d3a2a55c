//go:build integration
// +build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/internal/pricerd"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
)

const scenarioYAML = `
market: {spot: 100, volatility: 0.2, rate: 0.05, expiry: 1}
simulation:
  paths: 100000
  steps: 52
  seed: 2024
  greeks: true
options:
  - {name: atm-call, type: call, strike: 100}
  - {name: atm-put, type: put, strike: 100}
  - {name: otm-call, type: call, strike: 120}
`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers = 4
	cfg.WorkerBudget = 16

	exporter := metrics.NewExporter()
	pricer := pricerd.NewPricer(cfg, exporter)
	store := pricerd.NewRunStore()
	executor := pricerd.NewRunExecutor(store, pricer, exporter)
	srv := httptest.NewServer(pricerd.NewHTTPServer(store, executor, pricer, exporter).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

// TestIntegration_RunPricesScenarioNearBlackScholes drives a full run over
// HTTP and checks every option against its analytic price.
func TestIntegration_RunPricesScenarioNearBlackScholes(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/v1/runs", map[string]string{"scenario_yaml": scenarioYAML})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Run models.Run `json:"run"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	deadline := time.Now().Add(60 * time.Second)
	for {
		var got struct {
			Run models.Run `json:"run"`
		}
		getJSON(t, srv.URL+"/v1/runs/"+created.Run.ID, &got)
		if got.Run.Status == models.RunStatusCompleted {
			break
		}
		if got.Run.Status.Terminal() {
			t.Fatalf("run ended as %s: %s", got.Run.Status, got.Run.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for run")
		}
		time.Sleep(20 * time.Millisecond)
	}

	var body struct {
		Results models.RunResults `json:"results"`
	}
	if code := getJSON(t, srv.URL+"/v1/runs/"+created.Run.ID+"/results", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Results.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(body.Results.Options))
	}
	for _, opt := range body.Results.Options {
		if math.Abs(opt.Price-opt.ReferencePrice) > 6*opt.StandardError {
			t.Fatalf("%s: price %v outside 6 standard errors of %v (se %v)",
				opt.Name, opt.Price, opt.ReferencePrice, opt.StandardError)
		}
		if opt.BaseSeed != 2024 {
			t.Fatalf("%s: expected pinned seed 2024, got %d", opt.Name, opt.BaseSeed)
		}
	}
	if body.Results.Summary == nil || body.Results.Summary.Aggregations[metrics.MetricPricingElapsedMs].Count != 3 {
		t.Fatalf("expected 3 timing samples in summary")
	}
}

// TestIntegration_SynchronousPriceMatchesRun checks that the synchronous
// endpoint and a run agree bit for bit under a pinned seed.
func TestIntegration_SynchronousPriceMatchesRun(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/v1/price", map[string]string{"scenario_yaml": scenarioYAML})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var first struct {
		Options []models.OptionResult `json:"options"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp2 := postJSON(t, srv.URL+"/v1/price", map[string]string{"scenario_yaml": scenarioYAML})
	defer resp2.Body.Close()
	var second struct {
		Options []models.OptionResult `json:"options"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i := range first.Options {
		a, b := first.Options[i], second.Options[i]
		if a.Price != b.Price || a.Delta != b.Delta || a.Gamma != b.Gamma {
			t.Fatalf("%s: expected identical results, got %+v and %+v", a.Name, a, b)
		}
	}
}

// TestIntegration_MetricsEndpoint checks the Prometheus scrape after pricing.
func TestIntegration_MetricsEndpoint(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/v1/price", map[string]string{"scenario_yaml": scenarioYAML})
	resp.Body.Close()

	m, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer m.Body.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(m.Body); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`pricer_calls_total{mode="greeks",status="ok"} 3`)) {
		t.Fatalf("expected 3 successful greeks calls in scrape output")
	}
}
