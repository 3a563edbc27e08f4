package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic, the feed cache and the shift engine.
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
	shiftsGenerated prometheus.Counter
	shiftsSkipped   prometheus.Counter
	duplicates      prometheus.Counter
	driftRepairs    *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
	sweepFailures   prometheus.Counter

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	generatedCount       uint64
	skippedCount         uint64
	duplicateCount       uint64
	driftCount           uint64
	sweepCount           uint64
}

// NewMetricsService registers the collectors on a private registry.
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
		Help:    "Latency for cache lookups",
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

	shiftsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_generated_total",
		Help: "Generated shift instances written",
	})

	shiftsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_generation_skipped_total",
		Help: "Candidate instances skipped because their slot already existed",
	})

	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_duplicates_removed_total",
		Help: "Duplicate generated instances removed by deduplication sweeps",
	})

	driftRepairs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shifts_drift_repairs_total",
		Help: "Generated instances repaired by timing validation",
	}, []string{"kind"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shifts_generation_sweep_seconds",
		Help:    "Duration of generate-all sweeps",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	sweepFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_generation_template_failures_total",
		Help: "Templates that failed during generate-all sweeps",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		shiftsGenerated, shiftsSkipped, duplicates, driftRepairs, sweepDuration, sweepFailures, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		shiftsGenerated: shiftsGenerated,
		shiftsSkipped:   shiftsSkipped,
		duplicates:      duplicates,
		driftRepairs:    driftRepairs,
		sweepDuration:   sweepDuration,
		sweepFailures:   sweepFailures,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
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

// RecordGeneration counts instances written and skipped by one generation pass.
func (m *MetricsService) RecordGeneration(created, skipped int) {
	if m == nil {
		return
	}
	if created > 0 {
		m.shiftsGenerated.Add(float64(created))
		atomic.AddUint64(&m.generatedCount, uint64(created))
	}
	if skipped > 0 {
		m.shiftsSkipped.Add(float64(skipped))
		atomic.AddUint64(&m.skippedCount, uint64(skipped))
	}
}

// RecordDuplicatesRemoved counts instances deleted by a deduplication sweep.
func (m *MetricsService) RecordDuplicatesRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.duplicates.Add(float64(n))
	atomic.AddUint64(&m.duplicateCount, uint64(n))
}

// RecordDriftRepair counts one timing repair. kind is "deleted" or "retimed".
func (m *MetricsService) RecordDriftRepair(kind string) {
	if m == nil {
		return
	}
	m.driftRepairs.WithLabelValues(kind).Inc()
	atomic.AddUint64(&m.driftCount, 1)
}

// ObserveSweep records a finished generate-all sweep.
func (m *MetricsService) ObserveSweep(duration time.Duration, failures int) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
	if failures > 0 {
		m.sweepFailures.Add(float64(failures))
	}
	atomic.AddUint64(&m.sweepCount, 1)
}

// Snapshot returns aggregated counters for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ShiftsGenerated:          atomic.LoadUint64(&m.generatedCount),
		ShiftsSkipped:            atomic.LoadUint64(&m.skippedCount),
		DuplicatesRemoved:        atomic.LoadUint64(&m.duplicateCount),
		DriftRepairs:             atomic.LoadUint64(&m.driftCount),
		SweepsCompleted:          atomic.LoadUint64(&m.sweepCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
