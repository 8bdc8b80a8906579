/*
Copyright 2025 The statekit authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"fmt"
	"sync"
	"time"
)

// Cache is a generic thread-safe in-memory key/value store with a bounded
// size. When the cache is full, the least recently used value is evicted
// to make room. Values can optionally expire after a cache-wide
// time-to-live. Use the New function to create a cache that is ready to
// use.
type Cache[K comparable, V any] struct {
	*store[K, V]
}

// store is the engine shared by Cache and Observable. A single mutex
// guards the index, the recency list and the subject table, so every
// operation observes and mutates them as one consistent unit.
type store[K comparable, V any] struct {
	// index holds the cache index.
	index map[K]*entry[K, V]
	// head and tail are the sentinel nodes of the recency list.
	head *entry[K, V]
	tail *entry[K, V]

	// capacity is the maximum number of entries the cache can hold.
	capacity int
	// ttl is the time-to-live applied to every entry.
	// Zero means entries never expire.
	ttl time.Duration

	// subjects tracks the per-key observation state. It is nil unless
	// the cache was created with NewObservable.
	subjects map[K]*subject[K, V]

	metrics *cacheMetrics
	janitor *janitor[K, V]
	closed  bool

	mu sync.Mutex
}

var _ Store[string, any] = &Cache[string, any]{}

// New creates a new cache with the given capacity.
// A capacity smaller than one is raised to one.
func New[K comparable, V any](capacity int, opts ...Options) (*Cache[K, V], error) {
	s, err := newStore[K, V](capacity, false, opts...)
	if err != nil {
		return nil, err
	}
	return &Cache[K, V]{store: s}, nil
}

func newStore[K comparable, V any](capacity int, observable bool, opts ...Options) (*store[K, V], error) {
	opt, err := makeOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to apply options: %w", err)
	}

	if capacity < 1 {
		capacity = 1
	}

	head := &entry[K, V]{}
	tail := &entry[K, V]{}
	head.next = tail
	tail.prev = head

	c := &store[K, V]{
		index:    make(map[K]*entry[K, V]),
		head:     head,
		tail:     tail,
		capacity: capacity,
		ttl:      opt.ttl,
	}

	if observable {
		c.subjects = make(map[K]*subject[K, V])
	}
	if opt.registerer != nil {
		c.metrics = newCacheMetrics(opt.metricsPrefix, opt.registerer)
	}
	if opt.interval > 0 {
		c.janitor = &janitor[K, V]{
			interval: opt.interval,
			stop:     make(chan struct{}),
		}
		go c.janitor.run(c)
	}

	return c, nil
}

func makeOptions(opts ...Options) (*storeOptions, error) {
	opt := storeOptions{}
	for _, o := range opts {
		if err := o(&opt); err != nil {
			return nil, err
		}
	}
	return &opt, nil
}

// Set stores a value for the given key, overwriting any previous value
// and marking it the most recently used. When the cache was created with
// a TTL, the value's expiration restarts at the full TTL. Set then purges
// expired entries and evicts least recently used entries until the cache
// fits its capacity.
func (c *store[K, V]) Set(key K, value V) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	now := time.Now()
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl)
	}
	inserted := false
	e, found := c.index[key]
	if found {
		e.value = value
		e.expiresAt = expiresAt
		c.touch(e)
	} else {
		e = &entry[K, V]{key: key, value: value, expiresAt: expiresAt}
		c.index[key] = e
		c.pushBack(e)
		inserted = true
	}
	wake := c.publishLocked(key, value, true)
	wake = append(wake, c.sweepLocked(now)...)
	wake = append(wake, c.evictLocked()...)
	c.mu.Unlock()
	if inserted {
		recordItemIncrement(c.metrics)
	}
	wakeAll(wake)
}

// Get returns the value stored for the given key and whether it was
// found, marking it the most recently used. A value past its TTL is
// removed and reported as missing.
func (c *store[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, false
	}
	e, found := c.index[key]
	if !found {
		c.mu.Unlock()
		recordEvent(c.metrics, CacheEventTypeMiss)
		return zero, false
	}
	if e.expired(time.Now()) {
		wake := c.expireLocked(e)
		c.mu.Unlock()
		wakeAll(wake)
		recordEvent(c.metrics, CacheEventTypeMiss)
		return zero, false
	}
	c.touch(e)
	value := e.value
	c.mu.Unlock()
	recordEvent(c.metrics, CacheEventTypeHit)
	return value, true
}

// Contains reports whether a live value is stored for the given key. It
// performs the same expiry check as Get, but does not mark the value as
// recently used.
func (c *store[K, V]) Contains(key K) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	e, found := c.index[key]
	if !found {
		c.mu.Unlock()
		return false
	}
	if e.expired(time.Now()) {
		wake := c.expireLocked(e)
		c.mu.Unlock()
		wakeAll(wake)
		return false
	}
	c.mu.Unlock()
	return true
}

// Delete removes the value stored for the given key. Does nothing if the
// key is not in the cache. Watches on the key are notified of its absence
// either way.
func (c *store[K, V]) Delete(key K) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	removed := false
	if e, found := c.index[key]; found {
		c.removeLocked(e)
		removed = true
	}
	var zero V
	wake := c.publishLocked(key, zero, false)
	c.mu.Unlock()
	if removed {
		recordDecrement(c.metrics)
	}
	wakeAll(wake)
}

// Clear removes all values from the cache. Every watched key is notified
// of its absence.
func (c *store[K, V]) Clear() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.index = make(map[K]*entry[K, V])
	c.head.next = c.tail
	c.tail.prev = c.head
	var wake []*Watch[K, V]
	var zero V
	for key := range c.subjects {
		wake = append(wake, c.publishLocked(key, zero, false)...)
	}
	c.mu.Unlock()
	setCachedItems(c.metrics, 0)
	wakeAll(wake)
}

// Len returns the number of values currently stored, purging expired
// entries first.
func (c *store[K, V]) Len() int {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}
	wake := c.sweepLocked(time.Now())
	n := len(c.index)
	c.mu.Unlock()
	wakeAll(wake)
	return n
}

// Keys returns the keys of all values currently stored, purging expired
// entries first. The keys are in no particular order.
func (c *store[K, V]) Keys() []K {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	wake := c.sweepLocked(time.Now())
	keys := make([]K, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	wakeAll(wake)
	return keys
}

// Items returns a snapshot of all values currently stored, purging
// expired entries first. Mutating the returned map does not affect the
// cache.
func (c *store[K, V]) Items() map[K]V {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	wake := c.sweepLocked(time.Now())
	items := make(map[K]V, len(c.index))
	for k, e := range c.index {
		items[k] = e.value
	}
	c.mu.Unlock()
	wakeAll(wake)
	return items
}

// Close empties the cache and releases the resources held by it. Active
// watches are stopped and their channels closed, discarding any updates
// not yet delivered. Operations on a closed cache are no-ops: writes are
// dropped and reads report nothing found. Close may be called multiple
// times.
func (c *store[K, V]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.index = nil
	c.head.next = c.tail
	c.tail.prev = c.head
	var stopped []*Watch[K, V]
	for _, sub := range c.subjects {
		for w := range sub.watches {
			w.stopped = true
			stopped = append(stopped, w)
		}
	}
	c.subjects = nil
	j := c.janitor
	c.janitor = nil
	c.mu.Unlock()
	for _, w := range stopped {
		close(w.done)
		recordWatchDecrement(c.metrics)
	}
	if j != nil {
		close(j.stop)
	}
	setCachedItems(c.metrics, 0)
}

// removeExpired purges all expired entries. It is called by the janitor.
func (c *store[K, V]) removeExpired() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	wake := c.sweepLocked(time.Now())
	c.mu.Unlock()
	wakeAll(wake)
}

type janitor[K comparable, V any] struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor[K, V]) run(c *store[K, V]) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-j.stop:
			return
		}
	}
}
