// Package cache provides a thread-safe LRU cache with optional expiry,
// used to reuse compiled results for identical requests.
package cache

import (
	"container/list"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// LRU is a thread-safe least-recently-used cache. Entries older than the
// TTL are treated as missing; a zero TTL never expires entries.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	size  int
	ttl   time.Duration
	order *list.List // front is most recent
	items map[K]*list.Element
	now   func() time.Time

	hits, misses uint64
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	created time.Time
}

// New creates an LRU holding at most size entries. A size of zero or
// less disables caching.
func New[K comparable, V any](size int, ttl time.Duration) *LRU[K, V] {
	return &LRU[K, V]{
		size:  size,
		ttl:   ttl,
		order: list.New(),
		items: make(map[K]*list.Element),
		now:   time.Now,
	}
}

// Get returns the value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		c.misses++
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if c.expiredLocked(e) {
		c.removeLocked(el)
		c.misses++
		return zero, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Set(key K, value V) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = value
		e.created = c.now()
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, created: c.now()})
	for c.order.Len() > c.size {
		c.removeLocked(c.order.Back())
	}
}

// Remove drops key from the cache.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
}

// Values returns the live values, most recently used first. It does
// not change the recency order.
func (c *LRU[K, V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		if e := el.Value.(*entry[K, V]); !c.expiredLocked(e) {
			out = append(out, e.value)
		}
	}
	return out
}

// Len returns the number of entries, expired ones included.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns the hit and miss counts.
func (c *LRU[K, V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// expiredLocked MUST be called with the lock held.
func (c *LRU[K, V]) expiredLocked(e *entry[K, V]) bool {
	return c.ttl > 0 && c.now().Sub(e.created) >= c.ttl
}

func (c *LRU[K, V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.items, e.key)
}

// Key derives a cache key from a source text and seed.
func Key(src string, seed int64) string {
	h := blake3.New()
	h.Write([]byte(strconv.FormatInt(seed, 10)))
	h.Write([]byte{0})
	h.Write([]byte(src))
	return hex.EncodeToString(h.Sum(nil))
}
