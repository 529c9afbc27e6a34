package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/storm-track-ingest/internal/observability"
)

// Cached wraps a Catalog with an in-memory LRU cache. The index changes
// rarely (new storms appear a handful of times per season), so repeated
// lookups for the same storm resolve without refetching the index.
type Cached struct {
	inner   Catalog
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCached creates a cache decorator around a catalog.
func NewCached(inner Catalog, maxEntries int, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *Cached) Lookup(ctx context.Context, q Query) (Storm, error) {
	key := fmt.Sprintf("%s|%s|%d|%d", q.Name, q.Basin, q.Number, q.Year)
	if storm, ok := c.cache.get(key); ok {
		c.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return storm, nil
	}
	c.metrics.CatalogCache.WithLabelValues("miss").Inc()
	storm, err := c.inner.Lookup(ctx, q)
	if err != nil {
		// Misses are not cached: a storm absent now may appear in the
		// next index revision.
		return storm, err
	}
	c.cache.put(key, storm)
	return storm, nil
}

// lruCache is a small thread-safe LRU keyed by query string.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value Storm
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (Storm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return Storm{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value Storm) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
