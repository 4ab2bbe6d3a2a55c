package pricerd

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GoSim-25-26J-441/pricing-core/internal/metrics"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/config"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

var (
	ErrRunExists    = errors.New("run already exists")
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
)

// RunRecord is a run together with its input and, once finished, its output.
type RunRecord struct {
	Run       models.Run
	Scenario  *config.Scenario
	Results   *models.RunResults
	Collector *metrics.Collector

	CallbackURL    string
	CallbackSecret string
}

// RunStore keeps runs in memory. Records handed out are snapshots.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func (s *RunStore) Create(runID string, scenario *config.Scenario) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: models.Run{
			ID:              runID,
			Status:          models.RunStatusPending,
			CreatedAtUnixMs: utils.NowUnixMs(),
		},
		Scenario: scenario,
	}
	s.runs[runID] = rec
	return snapshot(rec), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return snapshot(rec), true
}

// List returns runs oldest first, optionally filtered by status.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	matched := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != "" && rec.Run.Status != status {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Run, matched[j].Run
		if a.CreatedAtUnixMs != b.CreatedAtUnixMs {
			return a.CreatedAtUnixMs < b.CreatedAtUnixMs
		}
		return a.ID < b.ID
	})

	if offset >= len(matched) {
		return []*RunRecord{}
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]*RunRecord, len(matched))
	for i, rec := range matched {
		out[i] = snapshot(rec)
	}
	return out
}

// SetStatus moves a run to status. Terminal runs never change again.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.Terminal() {
		return snapshot(rec), fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	switch {
	case status == models.RunStatusRunning:
		if rec.Run.StartedAtUnixMs == 0 {
			rec.Run.StartedAtUnixMs = utils.NowUnixMs()
		}
	case status.Terminal():
		rec.Run.EndedAtUnixMs = utils.NowUnixMs()
	}

	return snapshot(rec), nil
}

func (s *RunStore) SetResults(runID string, results *models.RunResults) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Results = results
	return nil
}

func (s *RunStore) SetCollector(runID string, collector *metrics.Collector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Collector = collector
	return nil
}

// SetCallback registers the URL notified when the run ends.
func (s *RunStore) SetCallback(runID, url, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.CallbackURL = url
	rec.CallbackSecret = secret
	return nil
}

func snapshot(rec *RunRecord) *RunRecord {
	cp := *rec
	return &cp
}
