package metrics

import (
	"net/http"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exports scan telemetry to Prometheus
type Recorder struct {
	registry *prometheus.Registry

	scansTotal     *prometheus.CounterVec
	findingsTotal  *prometheus.CounterVec
	missingTotal   *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	scanDuration   prometheus.Histogram
	overallScore   prometheus.Histogram
}

// NewRecorder registers the scan collectors on a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lovescan_scans_total",
			Help: "Total number of completed scans by overall risk level",
		}, []string{"level"}),
		findingsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lovescan_findings_total",
			Help: "Total number of per-source findings by source and level",
		}, []string{"source", "level"}),
		missingTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lovescan_missing_sources_total",
			Help: "Total number of scans in which a source produced no finding",
		}, []string{"source"}),
		fallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lovescan_chat_fallbacks_total",
			Help: "Total number of times the phrase catalog replaced an LLM chat verdict",
		}, []string{"reason"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lovescan_cache_lookups_total",
			Help: "Total number of LLM verdict cache lookups by result",
		}, []string{"result"}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lovescan_scan_duration_seconds",
			Help:    "Time taken to analyze one evidence set",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}),
		overallScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lovescan_overall_score",
			Help:    "Distribution of overall risk scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

// ScanCompleted records one finished scan
func (r *Recorder) ScanCompleted(agg core.AggregateRisk, elapsed time.Duration) {
	level := string(agg.OverallLevel)
	if agg.NoEvidence {
		level = "none"
	}
	r.scansTotal.WithLabelValues(level).Inc()
	r.scanDuration.Observe(elapsed.Seconds())

	for _, f := range agg.Findings {
		r.findingsTotal.WithLabelValues(string(f.Source), string(f.Level)).Inc()
	}
	for _, s := range agg.MissingSources {
		r.missingTotal.WithLabelValues(string(s)).Inc()
	}

	if !agg.NoEvidence {
		r.overallScore.Observe(float64(agg.OverallScore))
	}
}

// ChatFallback records a heuristic substitution for an LLM verdict
func (r *Recorder) ChatFallback(reason string) {
	r.fallbacksTotal.WithLabelValues(reason).Inc()
}

// CacheLookup records a cache hit or miss
func (r *Recorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
