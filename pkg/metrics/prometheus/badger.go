package prometheus

import (
	"context"
	"sync"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/dittomds/pkg/metrics"
)

// badgerMetrics exports the block and index cache statistics of the badger
// catalog.
type badgerMetrics struct {
	cacheHitRatio *prometheus.GaugeVec
	cacheMisses   *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec

	mu   sync.Mutex
	last map[string]cacheSample
}

type cacheSample struct {
	hits, misses uint64
}

// NewBadgerMetrics creates a new Prometheus-backed badger catalog metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBadgerMetrics() *badgerMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &badgerMetrics{
		cacheHitRatio: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dittomds_catalog_badger_cache_hit_ratio",
				Help: "Badger catalog cache hit ratio (0.0 to 1.0) by cache type",
			},
			[]string{"cache_type"}, // "block", "index"
		),
		cacheMisses: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittomds_catalog_badger_cache_misses_total",
				Help: "Total number of badger catalog cache misses by cache type",
			},
			[]string{"cache_type"},
		),
		cacheHits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "dittomds_catalog_badger_cache_hits_total",
				Help: "Total number of badger catalog cache hits by cache type",
			},
			[]string{"cache_type"},
		),
		last: make(map[string]cacheSample),
	}
}

// RecordCacheStats records cumulative hit and miss counts for a cache type.
// Counters advance by the difference to the previous sample.
func (m *badgerMetrics) RecordCacheStats(cacheType string, hits, misses uint64, ratio float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.last[cacheType]
	if hits >= prev.hits {
		m.cacheHits.WithLabelValues(cacheType).Add(float64(hits - prev.hits))
	}
	if misses >= prev.misses {
		m.cacheMisses.WithLabelValues(cacheType).Add(float64(misses - prev.misses))
	}
	m.last[cacheType] = cacheSample{hits: hits, misses: misses}
	m.cacheHitRatio.WithLabelValues(cacheType).Set(ratio)
}

// Observe samples the caches of db once.
func (m *badgerMetrics) Observe(db *badgerdb.DB) {
	if m == nil || db == nil {
		return
	}
	if bc := db.BlockCacheMetrics(); bc != nil {
		m.RecordCacheStats("block", bc.Hits(), bc.Misses(), bc.Ratio())
	}
	if ic := db.IndexCacheMetrics(); ic != nil {
		m.RecordCacheStats("index", ic.Hits(), ic.Misses(), ic.Ratio())
	}
}

// Run samples db every interval until ctx is done.
func (m *badgerMetrics) Run(ctx context.Context, db *badgerdb.DB, interval time.Duration) {
	if m == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Observe(db)
		}
	}
}
