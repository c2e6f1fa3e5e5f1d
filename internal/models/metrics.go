package models

import "time"

// SystemMetrics is a JSON snapshot of the service counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	GridFetches              uint64    `json:"gridFetches"`
	AverageGridFetchMs       float64   `json:"averageGridFetchMs"`
	Searches                 uint64    `json:"searches"`
	SearchesTruncated        uint64    `json:"searchesTruncated"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
