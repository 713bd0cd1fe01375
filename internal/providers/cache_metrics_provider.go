package providers

import "coinbot/internal/structures"

// MetricsCacheProvider counts hits and misses per key namespace.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	ns := CacheNamespace(key)
	if ok {
		c.metrics.IncCacheHits(ns)
	} else {
		c.metrics.IncCacheMisses(ns)
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

// NewInstrumentedCacheProvider is the cache handed to the song service, the
// Helix client and the stats API. A disabled cache is returned unwrapped so
// it never reports misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
