package measure

import "time"

// Measure collects one metric per pipeline node.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the timings and cache counters of a single node.
type Metric interface {
	AddFitDuration(elapsed time.Duration)
	AddTransformDuration(elapsed time.Duration)
	AddCacheLookup(hits, misses int)
	FitDuration() time.Duration
	AVGTransformDuration() time.Duration
	CacheHits() int64
	CacheMisses() int64
}
