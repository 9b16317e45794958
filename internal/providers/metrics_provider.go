package providers

import (
	"felixrec/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(namespace string)
	IncCacheMisses(namespace string)
	ObservePersistenceDuration(duration time.Duration)
	IncFlushFailures()
	SetJournalEntries(status string, count int)
	IncJobTransition(status string)
	ObservePhaseDuration(phase string, duration time.Duration)
	IncRetries(operation string)
	IncPollErrors()
	SetInFlightJobs(count int)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	flushFailures       prometheus.Counter
	journalEntries      *prometheus.GaugeVec
	jobTransitions      *prometheus.CounterVec
	phaseDuration       *prometheus.HistogramVec
	retries             *prometheus.CounterVec
	pollErrors          prometheus.Counter
	inFlightJobs        prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(namespace string) {
	m.cacheHits.WithLabelValues(namespace).Inc()
}

func (m *MetricsProvider) IncCacheMisses(namespace string) {
	m.cacheMisses.WithLabelValues(namespace).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncFlushFailures() {
	m.flushFailures.Inc()
}

func (m *MetricsProvider) SetJournalEntries(status string, count int) {
	m.journalEntries.WithLabelValues(status).Set(float64(count))
}

func (m *MetricsProvider) IncJobTransition(status string) {
	m.jobTransitions.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) ObservePhaseDuration(phase string, duration time.Duration) {
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRetries(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}

func (m *MetricsProvider) IncPollErrors() {
	m.pollErrors.Inc()
}

func (m *MetricsProvider) SetInFlightJobs(count int) {
	m.inFlightJobs.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "felixrec_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "felixrec_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "felixrec_cache_hits_total",
			Help: "Total number of cache hits per key namespace",
		}, []string{"namespace"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "felixrec_cache_misses_total",
			Help: "Total number of cache misses per key namespace",
		}, []string{"namespace"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "felixrec_journal_flush_duration_seconds",
			Help:    "Duration of journal flushes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		flushFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "felixrec_journal_flush_failures_total",
			Help: "Total number of failed journal flushes",
		}),

		journalEntries: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "felixrec_journal_entries",
			Help: "Number of journal entries per status",
		}, []string{"status"}),

		jobTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "felixrec_job_transitions_total",
			Help: "Total number of job status transitions",
		}, []string{"status"}),

		phaseDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "felixrec_phase_duration_seconds",
			Help:    "Duration of job phases in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800, 3600, 7200},
		}, []string{"phase"}),

		retries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "felixrec_retries_total",
			Help: "Total number of retried operations",
		}, []string{"operation"}),

		pollErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "felixrec_poll_errors_total",
			Help: "Total number of failed schedule polls",
		}),

		inFlightJobs: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "felixrec_inflight_jobs",
			Help: "Number of executors currently running",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncFlushFailures()                                {}
func (n *noopMetrics) SetJournalEntries(_ string, _ int)                {}
func (n *noopMetrics) IncJobTransition(_ string)                        {}
func (n *noopMetrics) ObservePhaseDuration(_ string, _ time.Duration)   {}
func (n *noopMetrics) IncRetries(_ string)                              {}
func (n *noopMetrics) IncPollErrors()                                   {}
func (n *noopMetrics) SetInFlightJobs(_ int)                            {}
