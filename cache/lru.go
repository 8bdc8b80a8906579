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

import "time"

// entry is a value stored in the cache, and a node in the doubly linked
// recency list at the same time. Both structures are guarded by the
// store mutex.
//
// The recency list has two sentinel nodes. The least recently used entry
// sits right after head and the most recently used entry right before
// tail. Entries move to the tail end when they are set or read, and
// eviction removes from the head end.
//
//	           ┌───────┐   ┌───────┐     ┌───────┐   ┌───────┐
//	  HEAD ◄──►│  LRU  │◄─►│       │◄───►│       │◄─►│  MRU  │◄──► TAIL
//	           └───────┘   └───────┘     └───────┘   └───────┘
type entry[K comparable, V any] struct {
	key   K
	value V
	// expiresAt is the entry's expiration time.
	// The zero time means the entry never expires.
	expiresAt time.Time
	prev      *entry[K, V]
	next      *entry[K, V]
}

// expired returns true if the entry's expiration time has passed.
func (e *entry[K, V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// pushBack inserts the entry right before the tail sentinel, making it
// the most recently used.
func (c *store[K, V]) pushBack(e *entry[K, V]) {
	prev := c.tail.prev
	prev.next = e
	e.prev = prev
	e.next = c.tail
	c.tail.prev = e
}

// unlink removes the entry from the recency list.
func (c *store[K, V]) unlink(e *entry[K, V]) {
	e.prev.next, e.next.prev = e.next, e.prev
	e.next, e.prev = nil, nil // avoid memory leaks
}

// touch moves the entry to the most recently used position.
func (c *store[K, V]) touch(e *entry[K, V]) {
	c.unlink(e)
	c.pushBack(e)
}

// removeLocked unlinks the entry and drops it from the index.
func (c *store[K, V]) removeLocked(e *entry[K, V]) {
	c.unlink(e)
	delete(c.index, e.key)
}

// expireLocked removes an entry whose time-to-live has lapsed and
// returns the watches to wake for its absence update.
func (c *store[K, V]) expireLocked(e *entry[K, V]) []*Watch[K, V] {
	c.removeLocked(e)
	recordExpiration(c.metrics)
	recordDecrement(c.metrics)
	var zero V
	return c.publishLocked(e.key, zero, false)
}

// sweepLocked removes every expired entry and returns the watches to
// wake once the lock is released.
func (c *store[K, V]) sweepLocked(now time.Time) []*Watch[K, V] {
	var wake []*Watch[K, V]
	for e := c.head.next; e != c.tail; {
		next := e.next
		if e.expired(now) {
			wake = append(wake, c.expireLocked(e)...)
		}
		e = next
	}
	return wake
}

// evictLocked removes least recently used entries until the cache fits
// its capacity, returning the watches to wake once the lock is released.
func (c *store[K, V]) evictLocked() []*Watch[K, V] {
	var wake []*Watch[K, V]
	for len(c.index) > c.capacity {
		victim := c.head.next
		if victim == c.tail {
			break
		}
		c.removeLocked(victim)
		recordEviction(c.metrics)
		recordDecrement(c.metrics)
		var zero V
		wake = append(wake, c.publishLocked(victim.key, zero, false)...)
	}
	return wake
}
