package service

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/mean-reverter/internal/metrics"
	"github.com/yourusername/mean-reverter/internal/models"
)

// SeriesCacheKey identifies an enriched bar series by its inputs
type SeriesCacheKey struct {
	Symbol          string
	Timeframe       string
	Start           time.Time
	End             time.Time
	EntryMultiplier float64
}

// String returns the string form used as the cache key
func (k SeriesCacheKey) String() string {
	return fmt.Sprintf("%s:%s:%d:%d:%.2f",
		k.Symbol, k.Timeframe, k.Start.Unix(), k.End.Unix(), k.EntryMultiplier)
}

// SeriesCache provides in-memory caching for enriched bar series. Building a
// series recomputes every indicator over the full history, so repeated
// detection runs over the same window reuse the cached result.
type SeriesCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewSeriesCache creates a new series cache
func NewSeriesCache(ttl time.Duration, maxSize int) *SeriesCache {
	return &SeriesCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached series, or nil on miss
func (sc *SeriesCache) Get(key SeriesCacheKey) *models.BarSeries {
	if result, found := sc.cache.Get(key.String()); found {
		sc.mu.Lock()
		sc.hitCount++
		sc.mu.Unlock()
		sc.updateMetrics()
		if series, ok := result.(*models.BarSeries); ok {
			return series
		}
	}

	sc.mu.Lock()
	sc.missCount++
	sc.mu.Unlock()
	sc.updateMetrics()
	return nil
}

func (sc *SeriesCache) updateMetrics() {
	_, _, ratio := sc.Stats()
	metrics.UpdateSeriesCacheHitRatio(ratio)
}

// Set stores a series in the cache
func (sc *SeriesCache) Set(key SeriesCacheKey, series *models.BarSeries) {
	if sc.cache.ItemCount() >= sc.maxSize {
		sc.cache.DeleteExpired()
	}
	sc.cache.Set(key.String(), series, sc.ttl)
}

// Clear flushes the entire cache
func (sc *SeriesCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns cache statistics
func (sc *SeriesCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (sc *SeriesCache) ItemCount() int {
	return sc.cache.ItemCount()
}
