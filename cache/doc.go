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

// Package cache provides generic thread-safe in-process key/value caches
// with a bounded size. When a cache is full, the least recently used value
// is evicted to make room for the next one. A cache can optionally be
// configured with a time-to-live applied to every value, after which the
// value is reported as missing and removed as cache operations come
// across it.
//
// Two variants share the same Store interface. Cache is the plain
// bounded store
//
//	c, err := New[string, int](10, WithTTL(time.Minute))
//
// and Observable additionally supports watching individual keys for
// changes. A watch first delivers the key's current state and then an
// update for every change, whether the key gained a value, changed it,
// or lost it
//
//	c, err := NewObservable[string, int](10)
//	w := c.Watch("replicas")
//	for update := range w.ResultChan() {
//		if update.Present {
//			// use update.Value
//		}
//	}
//	w.Stop()
//
// The cache implementations are self-instrumenting and export metrics
// about the internal operations of the cache if configured with a
// metrics registerer
//
//	c, err := New[string, int](10, WithMetricsRegisterer(reg))
package cache
