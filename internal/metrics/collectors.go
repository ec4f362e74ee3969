package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"delphi/pkg/logger"
)

// CacheStatsFunc reports the current cache entry count and total size in bytes.
type CacheStatsFunc func() (entries int, sizeBytes int64, err error)

// CacheCollector exposes cache store statistics scraped live on each collect
type CacheCollector struct {
	log   *logger.Logger
	stats CacheStatsFunc

	entries   *prometheus.Desc
	sizeBytes *prometheus.Desc
}

// NewCacheCollector creates a collector backed by the given stats function
func NewCacheCollector(log *logger.Logger, stats CacheStatsFunc) *CacheCollector {
	return &CacheCollector{
		log:   log,
		stats: stats,

		entries: prometheus.NewDesc(
			"delphi_cache_entries",
			"Current number of cached analyses",
			nil, nil,
		),
		sizeBytes: prometheus.NewDesc(
			"delphi_cache_size_bytes",
			"Total size of the cache directory in bytes",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.sizeBytes
}

// Collect implements prometheus.Collector
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	entries, size, err := c.stats()
	if err != nil {
		c.log.Error("Failed to collect cache stats", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(
		c.entries,
		prometheus.GaugeValue,
		float64(entries),
	)
	ch <- prometheus.MustNewConstMetric(
		c.sizeBytes,
		prometheus.GaugeValue,
		float64(size),
	)
}

// RegisterCacheCollector registers the cache collector
func RegisterCacheCollector(collector *CacheCollector) {
	prometheus.MustRegister(collector)
}
