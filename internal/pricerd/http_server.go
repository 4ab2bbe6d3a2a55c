package pricerd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/internal/engine"
	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/logger"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

const maxBodyBytes = 1 << 20

type HTTPServer struct {
	mux      *http.ServeMux
	store    *RunStore
	Executor *RunExecutor
	pricer   *Pricer
}

// NewHTTPServer wires the REST API. exporter may be nil, in which case
// /metrics is not served.
func NewHTTPServer(store *RunStore, executor *RunExecutor, pricer *Pricer, exporter *metrics.Exporter) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
		pricer:   pricer,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/runs/", s.handleRunByID)
	s.mux.HandleFunc("/v1/price", s.handlePrice)
	if exporter != nil {
		s.mux.Handle("/metrics", exporter.Handler())
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"workers_in_use": s.pricer.Dispatcher().InUse(),
		"worker_budget":  s.pricer.Dispatcher().Budget(),
	})
}

// handleRuns handles /v1/runs
func (s *HTTPServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateRun(w, r)
	case http.MethodGet:
		s.handleListRuns(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRunByID handles /v1/runs/{id}, /v1/runs/{id}:stop,
// /v1/runs/{id}/results and /v1/runs/{id}/metrics/timeseries.
func (s *HTTPServer) handleRunByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	route := func(suffix, method string, h func(http.ResponseWriter, *http.Request, string)) bool {
		if !strings.HasSuffix(path, suffix) {
			return false
		}
		if r.Method != method {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return true
		}
		h(w, r, strings.TrimSuffix(path, suffix))
		return true
	}

	switch {
	case route(":stop", http.MethodPost, s.handleStopRun):
	case route("/results", http.MethodGet, s.handleGetResults):
	case route("/metrics/timeseries", http.MethodGet, s.handleTimeSeries):
	case strings.Contains(path, "/"):
		s.writeError(w, http.StatusNotFound, "not found")
	case r.Method == http.MethodGet:
		s.handleGetRun(w, r, path)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateRun handles POST /v1/runs: the run is created and started.
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScenarioRequest(w, r)
	if !ok {
		return
	}
	started, err := createAndStart(s.store, s.Executor, req)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	logger.Info("run created (HTTP)", "run_id", started.Run.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{"run": started.Run})
}

// handleListRuns handles GET /v1/runs with pagination and status filter
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if parsed, err := strconv.Atoi(q.Get("limit")); err == nil && parsed > 0 {
		limit = min(parsed, 1000)
	}
	offset := 0
	if parsed, err := strconv.Atoi(q.Get("offset")); err == nil && parsed >= 0 {
		offset = parsed
	}
	status := models.RunStatus(strings.ToUpper(q.Get("status")))

	recs := s.store.List(limit, offset, status)
	runs := make([]models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs": runs,
		"pagination": map[string]any{
			"limit":  limit,
			"offset": offset,
			"count":  len(runs),
		},
	})
}

// handleGetRun handles GET /v1/runs/{id}
func (s *HTTPServer) handleGetRun(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": rec.Run})
}

// handleStopRun handles POST /v1/runs/{id}:stop
func (s *HTTPServer) handleStopRun(w http.ResponseWriter, _ *http.Request, runID string) {
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{"run": updated.Run})
}

// handleGetResults handles GET /v1/runs/{id}/results
func (s *HTTPServer) handleGetResults(w http.ResponseWriter, _ *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Results == nil {
		s.writeError(w, http.StatusPreconditionFailed, "results not available")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":     rec.Run,
		"results": rec.Results,
	})
}

// handleTimeSeries handles GET /v1/runs/{id}/metrics/timeseries, optionally
// narrowed by ?metric= and ?option=.
func (s *HTTPServer) handleTimeSeries(w http.ResponseWriter, r *http.Request, runID string) {
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if rec.Collector == nil {
		s.writeError(w, http.StatusPreconditionFailed, "time-series metrics not available")
		return
	}

	metricNames := rec.Collector.MetricNames()
	if m := r.URL.Query().Get("metric"); m != "" {
		metricNames = []string{m}
	}
	optionFilter := r.URL.Query().Get("option")
	dist, err := engine.ParseDistribution(rec.Scenario.Simulation.Distribution)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var points []*models.MetricPoint
	for _, name := range metricNames {
		for _, opt := range rec.Scenario.Options {
			if optionFilter != "" && opt.Name != optionFilter {
				continue
			}
			points = append(points, rec.Collector.GetTimeSeries(name, metrics.OptionLabels(opt.Name, dist.String()))...)
		}
	}
	if points == nil {
		points = []*models.MetricPoint{}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"points": points,
	})
}

// handlePrice handles POST /v1/price: every option is priced before the
// response is written.
func (s *HTTPServer) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, ok := s.decodeScenarioRequest(w, r)
	if !ok {
		return
	}
	scenario, err := req.resolve()
	if err != nil {
		s.writeErr(w, err)
		return
	}

	jobID := utils.GenerateJobID()
	options, err := s.pricer.PriceScenario(r.Context(), scenario, nil)
	if err != nil {
		logger.Warn("pricing request failed", "job_id", jobID, "error", err)
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"job_id":  jobID,
		"options": options,
	})
}

func (s *HTTPServer) decodeScenarioRequest(w http.ResponseWriter, r *http.Request) (scenarioRequest, bool) {
	var req scenarioRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// Helper functions

// writeJSON buffers the encoding; a value that cannot be encoded is
// answered with 500 and an error body.
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "status", status, "error", err)
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(map[string]any{"error": "failed to encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func (s *HTTPServer) writeErr(w http.ResponseWriter, err error) {
	s.writeError(w, httpStatusFor(err), err.Error())
}
