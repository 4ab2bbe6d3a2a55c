// Package models holds the data types shared by the pricing daemon, its
// stores and its transports.
package models

import "time"

// RunStatus is the lifecycle state of a pricing run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Run is the externally visible state of a pricing run.
type Run struct {
	ID              string    `json:"id"`
	Status          RunStatus `json:"status"`
	CreatedAtUnixMs int64     `json:"created_at_unix_ms"`
	StartedAtUnixMs int64     `json:"started_at_unix_ms,omitempty"`
	EndedAtUnixMs   int64     `json:"ended_at_unix_ms,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// OptionResult is the priced outcome of one option in a run.
type OptionResult struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Strike         float64 `json:"strike"`
	Price          float64 `json:"price"`
	Delta          float64 `json:"delta,omitempty"`
	Gamma          float64 `json:"gamma,omitempty"`
	StandardError  float64 `json:"standard_error"`
	ReferencePrice float64 `json:"reference_price"`
	Paths          int64   `json:"paths"`
	Steps          int64   `json:"steps"`
	Distribution   string  `json:"distribution"`
	BaseSeed       uint64  `json:"base_seed"`
	ElapsedTimeMs  float64 `json:"elapsed_time_ms"`
	PathsPerSecond float64 `json:"paths_per_second"`
}

// RunResults collects the per-option outcomes and timing summary of a run.
type RunResults struct {
	Options []OptionResult  `json:"options"`
	Summary *MetricsSummary `json:"summary,omitempty"`
}

// MetricPoint is one recorded metric value.
type MetricPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// MetricsSummary aggregates every metric recorded during a run.
type MetricsSummary struct {
	StartTime    time.Time               `json:"start_time"`
	EndTime      time.Time               `json:"end_time"`
	DurationMs   float64                 `json:"duration_ms"`
	Aggregations map[string]*Aggregation `json:"aggregations,omitempty"`
}

// Aggregation is the distribution of a metric's values.
type Aggregation struct {
	Count  int64   `json:"count"`
	Sum    float64 `json:"sum"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}
