package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisMetrics records analysis latency and result cache effectiveness.
type AnalysisMetrics struct {
	duration *prometheus.HistogramVec
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewAnalysisMetrics registers the analysis metrics on the provided registerer.
// A nil registerer returns a recorder that drops every observation.
func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	if reg == nil {
		return &AnalysisMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Duration of analysis computations in seconds, including data fetch.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_cache_hits_total",
		Help: "Analysis results served from the result cache.",
	}, []string{"operation"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_cache_misses_total",
		Help: "Analysis results that had to be computed.",
	}, []string{"operation"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_failures_total",
		Help: "Analyses that returned an error.",
	}, []string{"operation"})
	reg.MustRegister(duration, hits, misses, failures)
	return &AnalysisMetrics{
		duration: duration,
		hits:     hits,
		misses:   misses,
		failures: failures,
	}
}

func (m *AnalysisMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func (m *AnalysisMetrics) IncCacheHit(operation string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *AnalysisMetrics) IncCacheMiss(operation string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *AnalysisMetrics) IncFailure(operation string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
