// Package metrics tracks harvest and pipeline counters in a Prometheus registry.
//
// The CLI is a batch job, so metrics are not scraped over HTTP. Instead the
// registry is written once per run in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "yeg_events"

// Metrics holds the collectors for one process
type Metrics struct {
	registry     *prometheus.Registry
	stepEvents   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	geocodeCache *prometheus.CounterVec
	sourceEvents *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	lastRunTime  prometheus.Gauge
}

// New creates collectors registered on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_events_total",
			Help:      "Events entering (in) and leaving (out) each pipeline step.",
		}, []string{"step", "direction"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent in each pipeline step.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		geocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result (hit, miss).",
		}, []string{"result"}),
		sourceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_events_total",
			Help:      "Events produced by each source.",
		}, []string{"source"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_errors_total",
			Help:      "Failed source runs.",
		}, []string{"source"}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed harvest.",
		}),
	}

	m.registry.MustRegister(
		m.stepEvents,
		m.stepDuration,
		m.geocodeCache,
		m.sourceEvents,
		m.sourceErrors,
		m.lastRunTime,
	)

	return m
}

// ObserveStep records the cardinality and duration of one step run
func (m *Metrics) ObserveStep(step string, in, out int, duration time.Duration) {
	m.stepEvents.WithLabelValues(step, "in").Add(float64(in))
	m.stepEvents.WithLabelValues(step, "out").Add(float64(out))
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// GeocodeCacheHit counts a geocode cache hit
func (m *Metrics) GeocodeCacheHit() {
	m.geocodeCache.WithLabelValues("hit").Inc()
}

// GeocodeCacheMiss counts a geocode cache miss
func (m *Metrics) GeocodeCacheMiss() {
	m.geocodeCache.WithLabelValues("miss").Inc()
}

// ObserveSource records the outcome of one source run
func (m *Metrics) ObserveSource(source string, events int, failed bool) {
	m.sourceEvents.WithLabelValues(source).Add(float64(events))
	if failed {
		m.sourceErrors.WithLabelValues(source).Inc()
	}
}

// MarkRun sets the last-run gauge
func (m *Metrics) MarkRun(at time.Time) {
	m.lastRunTime.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics to path in the textfile collector format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
