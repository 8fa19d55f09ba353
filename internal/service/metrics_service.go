package service

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Schedule run outcomes used as metric labels.
const (
	RunOutcomeSuccess    = "success"
	RunOutcomeEmpty      = "empty_roster"
	RunOutcomeInProgress = "in_progress"
	RunOutcomeError      = "error"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dbQueryDuration *prometheus.HistogramVec
	scheduleRuns    *prometheus.CounterVec
	scheduleLatency prometheus.Observer
	lessonsPlaced   prometheus.Counter
	unscheduled     prometheus.Gauge
	rateLimited     prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	scheduleRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lesson_schedule_runs_total",
		Help: "Scheduling runs by outcome",
	}, []string{"outcome"})

	scheduleLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lesson_schedule_run_seconds",
		Help:    "Wall time of the assignment engine",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	lessonsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lesson_schedule_lessons_placed_total",
		Help: "Lessons placed across all runs",
	})

	unscheduled := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lesson_schedule_unscheduled_students",
		Help: "Under-scheduled students in the most recent run",
	})

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lesson_schedule_rate_limited_total",
		Help: "Generate requests rejected by the rate limiter",
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		dbQueryDuration,
		scheduleRuns, scheduleLatency, lessonsPlaced, unscheduled, rateLimited,
		collectors.NewGoCollector(),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		dbQueryDuration: dbQueryDuration,
		scheduleRuns:    scheduleRuns,
		scheduleLatency: scheduleLatency,
		lessonsPlaced:   lessonsPlaced,
		unscheduled:     unscheduled,
		rateLimited:     rateLimited,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// ObserveScheduleRun records the outcome of a scheduling run.
func (m *MetricsService) ObserveScheduleRun(outcome string, duration time.Duration, placed, unscheduled int) {
	if m == nil {
		return
	}
	m.scheduleRuns.WithLabelValues(outcome).Inc()
	if outcome != RunOutcomeSuccess {
		return
	}
	m.scheduleLatency.Observe(duration.Seconds())
	m.lessonsPlaced.Add(float64(placed))
	m.unscheduled.Set(float64(unscheduled))
}

// RecordRateLimited counts a throttled generate request.
func (m *MetricsService) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
