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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Store is the interface shared by the cache variants in this package.
type Store[K comparable, V any] interface {
	// Set stores a value for the given key, overwriting any previous value.
	Set(key K, value V)
	// Get returns the value stored for the given key, and whether it was
	// found.
	Get(key K) (V, bool)
	// Contains reports whether a live value is stored for the given key.
	Contains(key K) bool
	// Delete removes the value stored for the given key, if any.
	Delete(key K)
	// Clear removes all values from the cache.
	Clear()
	// Len returns the number of values currently stored.
	Len() int
	// Keys returns the keys of all values currently stored.
	Keys() []K
	// Items returns a snapshot of all values currently stored.
	Items() map[K]V
	// Close releases the resources held by the cache.
	Close()
}

type storeOptions struct {
	ttl           time.Duration
	interval      time.Duration
	registerer    prometheus.Registerer
	metricsPrefix string
}

// Options is a function that sets the store options.
type Options func(*storeOptions) error

// WithTTL sets the time-to-live applied to every value set in the cache.
// A zero or negative duration means values never expire.
func WithTTL(ttl time.Duration) Options {
	return func(o *storeOptions) error {
		if ttl < 0 {
			ttl = 0
		}
		o.ttl = ttl
		return nil
	}
}

// WithCleanupInterval sets the interval at which a background janitor
// purges expired values. Without this option no goroutine runs on behalf
// of the cache, and expired values are only purged as cache operations
// come across them.
func WithCleanupInterval(interval time.Duration) Options {
	return func(o *storeOptions) error {
		o.interval = interval
		return nil
	}
}

// WithMetricsRegisterer sets the Prometheus registerer for the cache metrics.
func WithMetricsRegisterer(r prometheus.Registerer) Options {
	return func(o *storeOptions) error {
		o.registerer = r
		return nil
	}
}

// WithMetricsPrefix sets the metrics prefix for the cache metrics.
func WithMetricsPrefix(prefix string) Options {
	return func(o *storeOptions) error {
		o.metricsPrefix = prefix
		return nil
	}
}
