package providers

import (
	"felixrec/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTestRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
	return reg
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits("api")
	m.IncCacheMisses("api")
	m.ObservePersistenceDuration(time.Millisecond)
	m.IncFlushFailures()
	m.SetJournalEntries("recorded", 2)
	m.IncJobTransition("uploaded")
	m.ObservePhaseDuration("upload", time.Second)
	m.IncRetries("upload")
	m.IncPollErrors()
	m.SetInFlightJobs(1)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_RecordsValues(t *testing.T) {
	reg := useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf).(*MetricsProvider)

	m.IncRequestsTotal("/health", 200)
	m.IncRequestsTotal("/health", 404)
	m.ObserveRequestDuration("/health", 5*time.Millisecond)
	m.IncJobTransition("recorded")
	m.IncJobTransition("recorded")
	m.IncRetries("upload")
	m.IncPollErrors()
	m.SetJournalEntries("failed", 3)
	m.SetInFlightJobs(2)
	m.ObservePhaseDuration("capture", time.Minute)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
		var total float64
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue() + metric.GetGauge().GetValue()
		}
		values[f.GetName()] = total
	}

	assert.Equal(t, 2.0, values["felixrec_job_transitions_total"])
	assert.Equal(t, 1.0, values["felixrec_retries_total"])
	assert.Equal(t, 1.0, values["felixrec_poll_errors_total"])
	assert.Equal(t, 3.0, values["felixrec_journal_entries"])
	assert.Equal(t, 2.0, values["felixrec_inflight_jobs"])
	assert.Contains(t, names, "felixrec_requests_total")
	assert.Contains(t, names, "felixrec_phase_duration_seconds")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
