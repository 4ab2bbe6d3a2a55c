// Package metrics records pricing timings per run and exports process-wide
// counters to Prometheus.
package metrics

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
	"github.com/GoSim-25-26J-441/pricing-core/pkg/utils"
)

// Collector keeps the time series recorded during one run.
type Collector struct {
	mu sync.RWMutex

	startTime time.Time
	endTime   time.Time

	// metric name -> label key -> points
	series map[string]map[string][]*models.MetricPoint
}

func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		series:    make(map[string]map[string][]*models.MetricPoint),
	}
}

// Start marks the beginning of collection.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// Stop marks the end of collection.
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endTime = time.Now()
}

// Record stores value under name and labels at timestamp.
func (c *Collector) Record(name string, value float64, timestamp time.Time, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := labelKey(labels)
	byLabel, ok := c.series[name]
	if !ok {
		byLabel = make(map[string][]*models.MetricPoint)
		c.series[name] = byLabel
	}
	byLabel[key] = append(byLabel[key], &models.MetricPoint{
		Timestamp: timestamp,
		Name:      name,
		Value:     value,
		Labels:    copyLabels(labels),
	})
}

// RecordNow stores value at the current time.
func (c *Collector) RecordNow(name string, value float64, labels map[string]string) {
	c.Record(name, value, time.Now(), labels)
}

// GetTimeSeries returns a copy of the points recorded under name and labels.
func (c *Collector) GetTimeSeries(name string, labels map[string]string) []*models.MetricPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()

	points := c.series[name][labelKey(labels)]
	if len(points) == 0 {
		return nil
	}
	out := make([]*models.MetricPoint, len(points))
	for i, p := range points {
		cp := *p
		cp.Labels = copyLabels(p.Labels)
		out[i] = &cp
	}
	return out
}

// GetAggregation aggregates the points of one label set.
func (c *Collector) GetAggregation(name string, labels map[string]string) *models.Aggregation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggregate(c.series[name][labelKey(labels)])
}

// MetricNames returns the recorded metric names in sorted order.
func (c *Collector) MetricNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.series))
	for name := range c.series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetSummary aggregates every metric across all of its label sets.
func (c *Collector) GetSummary() *models.MetricsSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	end := c.endTime
	if end.IsZero() {
		end = time.Now()
	}
	summary := &models.MetricsSummary{
		StartTime:    c.startTime,
		EndTime:      end,
		DurationMs:   utils.TimeToMs(end.Sub(c.startTime)),
		Aggregations: make(map[string]*models.Aggregation, len(c.series)),
	}
	for name, byLabel := range c.series {
		var all []*models.MetricPoint
		for _, points := range byLabel {
			all = append(all, points...)
		}
		if agg := aggregate(all); agg != nil {
			summary.Aggregations[name] = agg
		}
	}
	return summary
}

func labelKey(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(',')
	}
	return b.String()
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

func aggregate(points []*models.MetricPoint) *models.Aggregation {
	if len(points) == 0 {
		return nil
	}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	slices.Sort(values)

	mean, std := utils.MeanStdDev(values)
	return &models.Aggregation{
		Count:  int64(len(values)),
		Sum:    utils.Sum(values),
		Min:    values[0],
		Max:    values[len(values)-1],
		Mean:   mean,
		StdDev: std,
		P50:    utils.P50(values),
		P95:    utils.P95(values),
		P99:    utils.P99(values),
	}
}
