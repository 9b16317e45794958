package providers

import (
	"felixrec/internal/structures"
	"strings"
	"time"
	"unsafe"

	"github.com/coocood/freecache"
)

type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

type CacheProvider struct {
	cache *freecache.Cache
	ttl   int
}

const defaultCacheTtl = time.Minute

// NewCacheProvider backs short-lived lookups such as the Control API base URL decision.
// Entries expire after api.healthCacheTtl.
func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	sizeBytes := conf.Cache.Size * 1024 * 1024
	ttlDuration := conf.Api.HealthCacheTtl
	if ttlDuration <= 0 {
		ttlDuration = defaultCacheTtl
	}
	ttl := max(int(ttlDuration.Seconds()), 1)

	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache: freecache.NewCache(sizeBytes),
		ttl:   ttl,
	}
}

// unsafeStringToBytes converts string to []byte without allocation.
// freecache copies keys internally, so the result is never modified.
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
	_ = c.cache.Set(unsafeStringToBytes(key), value, c.ttl)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}

// IsNoopCache reports whether c is the disabled cache, which never returns a stored value.
func IsNoopCache(c CacheProviderInterface) bool {
	_, ok := c.(*noopCache)
	return ok
}

// MetricsCacheProvider counts hits and misses per key namespace, the part of the key before
// the first ':' ("api" for "api:base-url").
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits(keyNamespace(key))
	} else {
		c.metrics.IncCacheMisses(keyNamespace(key))
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func keyNamespace(key string) string {
	if ns, _, found := strings.Cut(key, ":"); found && ns != "" {
		return ns
	}
	return "default"
}

// NewInstrumentedCacheProvider is NewCacheProvider with hit/miss counters.
// A disabled cache is returned unwrapped so it does not report misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if IsNoopCache(inner) {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
