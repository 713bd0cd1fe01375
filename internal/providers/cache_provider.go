package providers

import (
	"coinbot/internal/structures"
	"strings"
	"unsafe"

	"github.com/coocood/freecache"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// CacheNamespace returns the part of key before the first colon, e.g. "song"
// for "song:alice". Keys without a colon share the empty namespace.
func CacheNamespace(key string) string {
	ns, _, found := strings.Cut(key, ":")
	if !found {
		return ""
	}
	return ns
}

// CacheProvider is a freecache store where each key namespace may carry its
// own TTL. Namespaces without an entry in cache.ttls use cache.ttl.
type CacheProvider struct {
	cache *freecache.Cache
	ttl   int
	ttls  map[string]int
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	ttls := make(map[string]int, len(conf.Cache.TTLs))
	for ns, ttl := range conf.Cache.TTLs {
		ttls[strings.ToLower(ns)] = max(ttl, 1)
	}
	ttl := max(conf.Cache.TTL, 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds, namespace TTLs=%v", conf.Cache.Size, ttl, ttls)

	return &CacheProvider{
		cache: freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		ttl:   ttl,
		ttls:  ttls,
	}
}

func (c *CacheProvider) ttlFor(key string) int {
	if ttl, ok := c.ttls[CacheNamespace(key)]; ok {
		return ttl
	}
	return c.ttl
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys, so the result is never written to.
func unsafeStringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(unsafeStringToBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Set(key string, value []byte) {
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttlFor(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
