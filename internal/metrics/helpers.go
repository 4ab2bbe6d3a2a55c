package metrics

import (
	"time"

	"github.com/GoSim-25-26J-441/pricing-core/pkg/models"
)

const (
	MetricPricingElapsedMs = "pricing_elapsed_ms"
	MetricPathsPerSecond   = "paths_per_second"
	MetricStandardError    = "standard_error"
)

// OptionLabels identifies one option of a run.
func OptionLabels(option, distribution string) map[string]string {
	return map[string]string{
		"option":       option,
		"distribution": distribution,
	}
}

// RecordPricing stores the timing and precision of one pricing call.
func RecordPricing(c *Collector, res models.OptionResult, labels map[string]string) {
	now := time.Now()
	c.Record(MetricPricingElapsedMs, res.ElapsedTimeMs, now, labels)
	c.Record(MetricPathsPerSecond, res.PathsPerSecond, now, labels)
	c.Record(MetricStandardError, res.StandardError, now, labels)
}
