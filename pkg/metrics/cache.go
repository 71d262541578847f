package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics records hit/miss traffic on the two-tier cache, labeled by
// cache domain (dashboard, orders, inventory, catalog, listings).
type CacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	staleHits     *prometheus.CounterVec
	writeFailures *prometheus.CounterVec
}

// NewCacheMetrics registers the cache metrics on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Fresh cache reads served.",
	}, []string{"domain"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache reads that found no fresh entry.",
	}, []string{"domain"})
	staleHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_stale_hits_total",
		Help: "Degraded-mode reads served past their TTL.",
	}, []string{"domain"})
	writeFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_write_failures_total",
		Help: "Persistent-tier writes that failed and fell back to memory only.",
	}, []string{"domain"})
	reg.MustRegister(hits, misses, staleHits, writeFailures)
	return &CacheMetrics{
		hits:          hits,
		misses:        misses,
		staleHits:     staleHits,
		writeFailures: writeFailures,
	}
}

// IncHit increments the fresh-hit counter for the domain.
func (c *CacheMetrics) IncHit(domain string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(domain)).Inc()
}

// IncMiss increments the miss counter for the domain.
func (c *CacheMetrics) IncMiss(domain string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(domain)).Inc()
}

// IncStaleHit increments the stale-hit counter for the domain.
func (c *CacheMetrics) IncStaleHit(domain string) {
	if c == nil || c.staleHits == nil {
		return
	}
	c.staleHits.WithLabelValues(normalizeLabel(domain)).Inc()
}

// IncWriteFailure increments the persistent-write-failure counter.
func (c *CacheMetrics) IncWriteFailure(domain string) {
	if c == nil || c.writeFailures == nil {
		return
	}
	c.writeFailures.WithLabelValues(normalizeLabel(domain)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
