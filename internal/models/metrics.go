package models

import "time"

// SystemMetrics is a point-in-time snapshot of process and engine counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ShiftsGenerated          uint64    `json:"shifts_generated"`
	ShiftsSkipped            uint64    `json:"shifts_skipped"`
	DuplicatesRemoved        uint64    `json:"duplicates_removed"`
	DriftRepairs             uint64    `json:"drift_repairs"`
	SweepsCompleted          uint64    `json:"sweeps_completed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
