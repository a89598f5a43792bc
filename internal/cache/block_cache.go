// Package cache memoizes per-block analysis results.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultMaxEntries bounds the cache when no size is configured
const DefaultMaxEntries = 1024

type entry[V any] struct {
	value    V
	lastUsed int64 // Unix nano, updated atomically on hit
}

// BlockCache maps (language, source) pairs to results. Values are shared
// between callers and must not be mutated after Put.
type BlockCache[V any] struct {
	entries    sync.Map // map[uint64]*entry[V]
	maxEntries int64

	// Atomic counters
	count     int64
	hits      int64
	misses    int64
	evictions int64

	evictMu sync.Mutex
}

// Stats is a snapshot of cache counters
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	HitRate   float64
}

// New creates a cache holding at most maxEntries results.
// A non-positive size falls back to DefaultMaxEntries.
func New[V any](maxEntries int) *BlockCache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &BlockCache[V]{maxEntries: int64(maxEntries)}
}

// Key hashes a block's language tag and source. The NUL separator keeps
// ("py", "x") and ("p", "yx") apart.
func Key(language, source string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(language)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(source)
	return d.Sum64()
}

// Get returns the cached result for the block, if present
func (c *BlockCache[V]) Get(language, source string) (V, bool) {
	if val, ok := c.entries.Load(Key(language, source)); ok {
		e := val.(*entry[V])
		atomic.StoreInt64(&e.lastUsed, time.Now().UnixNano())
		atomic.AddInt64(&c.hits, 1)
		return e.value, true
	}
	atomic.AddInt64(&c.misses, 1)
	var zero V
	return zero, false
}

// Put stores a result, evicting the least recently used entry when full
func (c *BlockCache[V]) Put(language, source string, value V) {
	e := &entry[V]{value: value, lastUsed: time.Now().UnixNano()}
	if _, loaded := c.entries.LoadOrStore(Key(language, source), e); loaded {
		return
	}
	if atomic.AddInt64(&c.count, 1) > c.maxEntries {
		c.evictOldest()
	}
}

// evictOldest removes the least recently used entry
func (c *BlockCache[V]) evictOldest() {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	if atomic.LoadInt64(&c.count) <= c.maxEntries {
		return
	}

	var oldestKey any
	oldestTime := time.Now().UnixNano() + 1
	c.entries.Range(func(key, value any) bool {
		used := atomic.LoadInt64(&value.(*entry[V]).lastUsed)
		if used < oldestTime {
			oldestTime = used
			oldestKey = key
		}
		return true
	})

	if oldestKey != nil {
		c.entries.Delete(oldestKey)
		atomic.AddInt64(&c.count, -1)
		atomic.AddInt64(&c.evictions, 1)
	}
}

// Len returns the number of cached results
func (c *BlockCache[V]) Len() int {
	return int(atomic.LoadInt64(&c.count))
}

// Stats returns the current counters
func (c *BlockCache[V]) Stats() Stats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: atomic.LoadInt64(&c.evictions),
		Entries:   c.Len(),
		HitRate:   hitRate,
	}
}

// Clear removes all entries and resets statistics
func (c *BlockCache[V]) Clear() {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.count, 0)
	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.evictions, 0)
}
