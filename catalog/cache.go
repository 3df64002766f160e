package catalog

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	body     []byte
	storedAt time.Time
}

type responseCache struct {
	entries *lru.Cache[string, cacheEntry]
	ttl     time.Duration
	clock   func() time.Time
}

func newResponseCache(maxEntries int, ttl time.Duration, clock func() time.Time) (*responseCache, error) {
	entries, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &responseCache{entries: entries, ttl: ttl, clock: clock}, nil
}

// get returns the cached body for key while it is fresh. A stale entry is
// removed.
func (c *responseCache) get(key string) ([]byte, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if c.clock().Sub(e.storedAt) >= c.ttl {
		c.entries.Remove(key)
		return nil, false
	}
	return e.body, true
}

func (c *responseCache) put(key string, body []byte) {
	c.entries.Add(key, cacheEntry{body: body, storedAt: c.clock()})
}

func (c *responseCache) purge() { c.entries.Purge() }

func (c *responseCache) len() int { return c.entries.Len() }
