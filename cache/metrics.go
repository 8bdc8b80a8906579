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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// CacheEventTypeMiss is the event type for cache misses.
	CacheEventTypeMiss = "cache_miss"
	// CacheEventTypeHit is the event type for cache hits.
	CacheEventTypeHit = "cache_hit"
)

type cacheMetrics struct {
	// cacheEventsCounter is a counter for cache events.
	cacheEventsCounter     *prometheus.CounterVec
	cacheItemsGauge        prometheus.Gauge
	cacheEvictionCounter   prometheus.Counter
	cacheExpirationCounter prometheus.Counter
	cacheWatchesGauge      prometheus.Gauge
}

// newCacheMetrics returns a new cacheMetrics, with its collectors
// registered on the given registerer.
func newCacheMetrics(prefix string, reg prometheus.Registerer) *cacheMetrics {
	return &cacheMetrics{
		cacheEventsCounter: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_events_total", prefix),
				Help: "Total number of cache retrieval events partitioned by event type.",
			},
			[]string{"event_type"},
		),
		cacheItemsGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: fmt.Sprintf("%scached_items", prefix),
				Help: "Total number of items in the cache.",
			},
		),
		cacheEvictionCounter: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_evictions_total", prefix),
				Help: "Total number of cache evictions.",
			},
		),
		cacheExpirationCounter: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%scache_expirations_total", prefix),
				Help: "Total number of cache entries removed after their time-to-live lapsed.",
			},
		),
		cacheWatchesGauge: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: fmt.Sprintf("%scache_watches", prefix),
				Help: "Number of active watches on cached keys.",
			},
		),
	}
}

// incCacheEvents increments the cache event count for the given event type.
func (m *cacheMetrics) incCacheEvents(event string) {
	m.cacheEventsCounter.WithLabelValues(event).Inc()
}

// setCachedItems sets the number of cached items.
func (m *cacheMetrics) setCachedItems(value float64) {
	m.cacheItemsGauge.Set(value)
}

// incCacheItems increments the number of cached items by 1.
func (m *cacheMetrics) incCacheItems() {
	m.cacheItemsGauge.Inc()
}

// decCacheItems decrements the number of cached items by 1.
func (m *cacheMetrics) decCacheItems() {
	m.cacheItemsGauge.Dec()
}

// incCacheEvictions increments the cache eviction count by 1.
func (m *cacheMetrics) incCacheEvictions() {
	m.cacheEvictionCounter.Inc()
}

// incCacheExpirations increments the cache expiration count by 1.
func (m *cacheMetrics) incCacheExpirations() {
	m.cacheExpirationCounter.Inc()
}

// incCacheWatches increments the active watch count by 1.
func (m *cacheMetrics) incCacheWatches() {
	m.cacheWatchesGauge.Inc()
}

// decCacheWatches decrements the active watch count by 1.
func (m *cacheMetrics) decCacheWatches() {
	m.cacheWatchesGauge.Dec()
}

func recordEvent(metrics *cacheMetrics, event string) {
	if metrics != nil {
		metrics.incCacheEvents(event)
	}
}

func recordEviction(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheEvictions()
	}
}

func recordExpiration(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheExpirations()
	}
}

func recordDecrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.decCacheItems()
	}
}

func recordItemIncrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheItems()
	}
}

func setCachedItems(metrics *cacheMetrics, value float64) {
	if metrics != nil {
		metrics.setCachedItems(value)
	}
}

func recordWatchIncrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.incCacheWatches()
	}
}

func recordWatchDecrement(metrics *cacheMetrics) {
	if metrics != nil {
		metrics.decCacheWatches()
	}
}
