// Package metrics accumulates pass and search statistics for one process.
package metrics

import (
	"sync"
	"time"
)

// PassStats aggregates the runs of one pass kind.
type PassStats struct {
	Runs           int64         `json:"runs"`
	Failures       int64         `json:"failures"`
	ItemsProcessed int64         `json:"items_processed"`
	ItemErrors     int64         `json:"item_errors"`
	Delivered      int64         `json:"delivered"`
	DeliveryFailed int64         `json:"delivery_failed"`
	LastDuration   time.Duration `json:"last_duration_ns"`
	LastRun        time.Time     `json:"last_run"`
}

// SearchStats aggregates search requests.
type SearchStats struct {
	Requests     int64         `json:"requests"`
	Results      int64         `json:"results"`
	TotalLatency time.Duration `json:"total_latency_ns"`
	MaxLatency   time.Duration `json:"max_latency_ns"`
}

// PassRecord is what a finished pass reports to the collector.
type PassRecord struct {
	Kind           string
	Duration       time.Duration
	FinishedAt     time.Time
	ItemsProcessed int
	ItemErrors     int
	Delivered      int
	DeliveryFailed int
	Err            error
}

// Snapshot is a point-in-time copy of the collector.
type Snapshot struct {
	StartedAt time.Time            `json:"started_at"`
	Passes    map[string]PassStats `json:"passes"`
	Search    SearchStats          `json:"search"`
}

// Collector is safe for concurrent use. A nil *Collector discards
// everything recorded on it.
type Collector struct {
	mu        sync.RWMutex
	startedAt time.Time
	passes    map[string]*PassStats
	search    SearchStats
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		startedAt: time.Now(),
		passes:    make(map[string]*PassStats),
	}
}

// RecordPass adds one pass run.
func (c *Collector) RecordPass(r PassRecord) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.passes[r.Kind]
	if !ok {
		stats = &PassStats{}
		c.passes[r.Kind] = stats
	}

	stats.Runs++
	if r.Err != nil {
		stats.Failures++
	}
	stats.ItemsProcessed += int64(r.ItemsProcessed)
	stats.ItemErrors += int64(r.ItemErrors)
	stats.Delivered += int64(r.Delivered)
	stats.DeliveryFailed += int64(r.DeliveryFailed)
	stats.LastDuration = r.Duration
	stats.LastRun = r.FinishedAt
}

// RecordSearch adds one search request.
func (c *Collector) RecordSearch(latency time.Duration, results int) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.search.Requests++
	c.search.Results += int64(results)
	c.search.TotalLatency += latency
	if latency > c.search.MaxLatency {
		c.search.MaxLatency = latency
	}
}

// Snapshot returns a copy that is not affected by later recordings.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Passes: map[string]PassStats{}}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	passes := make(map[string]PassStats, len(c.passes))
	for kind, stats := range c.passes {
		passes[kind] = *stats
	}

	return Snapshot{
		StartedAt: c.startedAt,
		Passes:    passes,
		Search:    c.search,
	}
}
