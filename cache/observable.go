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

// Observable is a Cache that additionally supports watching individual
// keys for changes. Use the NewObservable function to create an
// observable cache that is ready to use.
type Observable[K comparable, V any] struct {
	*store[K, V]
}

var _ Store[string, any] = &Observable[string, any]{}

// NewObservable creates a new observable cache with the given capacity.
// It accepts the same options as New.
func NewObservable[K comparable, V any](capacity int, opts ...Options) (*Observable[K, V], error) {
	s, err := newStore[K, V](capacity, true, opts...)
	if err != nil {
		return nil, err
	}
	return &Observable[K, V]{store: s}, nil
}

// subject tracks the last published state of a key and the watches
// attached to it. A subject exists for exactly as long as its key has at
// least one watch attached.
type subject[K comparable, V any] struct {
	state   Update[V]
	watches map[*Watch[K, V]]struct{}
}

// Watch starts observing the given key. The returned watch first
// delivers the key's current state, and then an update for every change
// to the key: a present update carrying the new value for every Set, and
// an absent update when the key is deleted, evicted, expired or cleared.
// A Delete of an already absent key is delivered too.
//
// Updates for a key are delivered in the order the changes were applied
// to the cache. A slow receiver never blocks cache operations; updates
// queue up until the watch's channel is drained. Call Stop to end the
// observation.
//
// Watching does not count as a use of the key for eviction ordering.
// On a closed cache, Watch returns a watch whose channel is already
// closed.
func (o *Observable[K, V]) Watch(key K) *Watch[K, V] {
	c := o.store
	w := &Watch[K, V]{
		store:  c,
		key:    key,
		ch:     make(chan Update[V]),
		wakeCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	c.mu.Lock()
	if c.closed {
		w.stopped = true
		c.mu.Unlock()
		close(w.done)
		close(w.ch)
		return w
	}
	// An expired entry must not leak into the initial state.
	var wake []*Watch[K, V]
	if e, found := c.index[key]; found && e.expired(time.Now()) {
		wake = c.expireLocked(e)
	}
	sub, found := c.subjects[key]
	if !found {
		sub = &subject[K, V]{watches: make(map[*Watch[K, V]]struct{})}
		if e, found := c.index[key]; found {
			sub.state = Update[V]{Value: e.value, Present: true}
		}
		c.subjects[key] = sub
	}
	sub.watches[w] = struct{}{}
	w.queue = append(w.queue, sub.state)
	c.mu.Unlock()

	wakeAll(wake)
	recordWatchIncrement(c.metrics)
	go w.run()
	w.wake()
	return w
}

// publishLocked records a new state on the key's subject, if any, and
// queues the update on every watch attached to it. It returns the
// watches whose pump must be woken once the lock is released. Queueing
// under the lock keeps the per-key update order identical to the order
// the changes were applied to the cache.
func (c *store[K, V]) publishLocked(key K, value V, present bool) []*Watch[K, V] {
	sub, found := c.subjects[key]
	if !found {
		return nil
	}
	sub.state = Update[V]{Value: value, Present: present}
	wake := make([]*Watch[K, V], 0, len(sub.watches))
	for w := range sub.watches {
		w.queue = append(w.queue, sub.state)
		wake = append(wake, w)
	}
	return wake
}
