package measure

import (
	"sync"
	"time"
)

type DefaultMetric struct {
	mu               *sync.Mutex
	fitElapsed       time.Duration
	transformElapsed time.Duration
	transformTotal   int64
	cacheHits        int64
	cacheMisses      int64
}

func (mt *DefaultMetric) AddFitDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.fitElapsed += elapsed
}

func (mt *DefaultMetric) AddTransformDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.transformTotal++
	mt.transformElapsed += elapsed
}

func (mt *DefaultMetric) AddCacheLookup(hits, misses int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.cacheHits += int64(hits)
	mt.cacheMisses += int64(misses)
}

func (mt *DefaultMetric) FitDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.fitElapsed
}

func (mt *DefaultMetric) AVGTransformDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.transformTotal == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.transformElapsed) / float64(mt.transformTotal)))
}

func (mt *DefaultMetric) CacheHits() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.cacheHits
}

func (mt *DefaultMetric) CacheMisses() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.cacheMisses
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		return d.Round(10 * time.Millisecond)
	case d > time.Millisecond:
		return d.Round(10 * time.Microsecond)
	case d > time.Microsecond:
		return d.Round(10 * time.Nanosecond)
	default:
		return d
	}
}

var _ Metric = (*DefaultMetric)(nil)
