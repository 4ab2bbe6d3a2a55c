package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter owns a private Prometheus registry with the daemon's counters.
type Exporter struct {
	registry *prometheus.Registry

	PricingCalls    *prometheus.CounterVec
	PricingDuration *prometheus.HistogramVec
	PathsSimulated  *prometheus.CounterVec
	Runs            *prometheus.CounterVec
}

// NewExporter registers the standard Go and process collectors plus the
// pricing metrics.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := &Exporter{registry: reg}
	e.PricingCalls = e.NewCounterVec(prometheus.CounterOpts{
		Name: "pricer_calls_total",
		Help: "Pricing calls by mode and outcome.",
	}, []string{"mode", "status"})
	e.PricingDuration = e.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricer_call_duration_seconds",
		Help:    "Wall time of successful pricing calls.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"mode", "distribution"})
	e.PathsSimulated = e.NewCounterVec(prometheus.CounterOpts{
		Name: "pricer_paths_simulated_total",
		Help: "Monte Carlo paths simulated.",
	}, []string{"distribution"})
	e.Runs = e.NewCounterVec(prometheus.CounterOpts{
		Name: "pricer_runs_total",
		Help: "Runs reaching a terminal status.",
	}, []string{"status"})
	return e
}

func (e *Exporter) NewCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labels)
	e.registry.MustRegister(cv)
	return cv
}

func (e *Exporter) NewHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labels)
	e.registry.MustRegister(hv)
	return hv
}

// RegisterGaugeFunc exposes a value sampled at scrape time.
func (e *Exporter) RegisterGaugeFunc(name, help string, fn func() float64) {
	e.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}

// ObservePricing records one pricing call. mode is "price" or "greeks".
func (e *Exporter) ObservePricing(mode, distribution string, paths int64, elapsedMs float64, err error) {
	if e == nil {
		return
	}
	if err != nil {
		e.PricingCalls.WithLabelValues(mode, "error").Inc()
		return
	}
	e.PricingCalls.WithLabelValues(mode, "ok").Inc()
	e.PricingDuration.WithLabelValues(mode, distribution).Observe(elapsedMs / 1000)
	e.PathsSimulated.WithLabelValues(distribution).Add(float64(paths))
}

// ObserveRun counts a run reaching status.
func (e *Exporter) ObserveRun(status string) {
	if e == nil {
		return
	}
	e.Runs.WithLabelValues(status).Inc()
}

// Gatherer exposes the registry for tests.
func (e *Exporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// Handler serves the registry in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
