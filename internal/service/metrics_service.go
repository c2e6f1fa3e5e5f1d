package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

// MetricsService owns the Prometheus registry and keeps counters for JSON snapshots.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	gridFetch       *prometheus.HistogramVec
	searchDuration  *prometheus.HistogramVec
	searchLeaves    prometheus.Histogram
	clashesFound    prometheus.Histogram

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	gridFetchCount       uint64
	gridFetchTotal       uint64
	searchCount          uint64
	searchTruncatedCount uint64
}

// NewMetricsService registers the service collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache lookups",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to total cache lookups",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total cache hits",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total cache misses",
		}),
		gridFetch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grid_fetch_duration_seconds",
			Help:    "Duration of timetable grid fetches from the source",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"source", "outcome"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_search_duration_seconds",
			Help:    "Duration of optimal schedule searches",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		searchLeaves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schedule_search_leaves",
			Help:    "Complete assignments scored per search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		clashesFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clashes_detected",
			Help:    "Clashes reported per detection request",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLatency, m.cacheWrite,
		m.cacheHitRatio, m.cacheHits, m.cacheMisses,
		m.gridFetch, m.searchDuration, m.searchLeaves, m.clashesFound,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
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
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveGridFetch records one source fetch.
func (m *MetricsService) ObserveGridFetch(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.gridFetch.WithLabelValues(source, outcome(err)).Observe(duration.Seconds())
	atomic.AddUint64(&m.gridFetchCount, 1)
	atomic.AddUint64(&m.gridFetchTotal, uint64(duration.Nanoseconds()))
}

// ObserveSearch records one optimal schedule search.
func (m *MetricsService) ObserveSearch(leaves int, truncated bool, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.searchDuration.WithLabelValues(outcome(err)).Observe(duration.Seconds())
	m.searchLeaves.Observe(float64(leaves))
	atomic.AddUint64(&m.searchCount, 1)
	if truncated {
		atomic.AddUint64(&m.searchTruncatedCount, 1)
	}
}

// ObserveClashes records how many clashes a detection produced.
func (m *MetricsService) ObserveClashes(count int) {
	if m == nil {
		return
	}
	m.clashesFound.Observe(float64(count))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	fetches := atomic.LoadUint64(&m.gridFetchCount)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}

	return models.SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(atomic.LoadUint64(&m.requestDurationTotal), requests),
		GridFetches:              fetches,
		AverageGridFetchMs:       averageMs(atomic.LoadUint64(&m.gridFetchTotal), fetches),
		Searches:                 atomic.LoadUint64(&m.searchCount),
		SearchesTruncated:        atomic.LoadUint64(&m.searchTruncatedCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func averageMs(totalNanos, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / float64(time.Millisecond)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
