package budget

import (
	"fmt"
	"hash/fnv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tokenfit/tokenfit/compress"
)

// Cache defaults.
const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultCacheCleanup = 10 * time.Minute
)

// ResultCache is a small time-boxed cache of compression results, keyed by
// input text and budget. Scoped to one session; entries expire on their own.
type ResultCache struct {
	c *gocache.Cache
}

// NewResultCache creates a ResultCache. Zero durations use the defaults.
func NewResultCache(ttl, cleanup time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCacheCleanup
	}
	return &ResultCache{c: gocache.New(ttl, cleanup)}
}

// Key derives the cache key for a text/budget pair. The text length is
// part of the key so a hash collision between different texts cannot serve
// the wrong result.
func (rc *ResultCache) Key(text string, budgetTokens int) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%x:%d:%d", h.Sum64(), len(text), budgetTokens)
}

// Get returns the cached result for key, if present and unexpired.
func (rc *ResultCache) Get(key string) (compress.Result, bool) {
	if v, ok := rc.c.Get(key); ok {
		if res, ok := v.(compress.Result); ok {
			return res, true
		}
	}
	return compress.Result{}, false
}

// Put stores a result under key with the cache's default TTL.
func (rc *ResultCache) Put(key string, res compress.Result) {
	rc.c.SetDefault(key, res)
}
