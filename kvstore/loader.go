/*
Copyright 2026 The statekit authors

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

package kvstore

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/statekit/pkg/cache"
)

// LoadFunc fetches the value for a key that is not cached, typically
// from a Store or another slow source.
type LoadFunc[V any] func(ctx context.Context, key string) (V, error)

// Loader is a read-through front for a cache. A miss triggers the load
// function, and concurrent loads of the same key are collapsed into a
// single call whose result is shared by all waiters.
type Loader[V any] struct {
	cache cache.Store[string, V]
	load  LoadFunc[V]
	group singleflight.Group
}

// NewLoader creates a loader that fills the given cache with the given
// load function.
func NewLoader[V any](c cache.Store[string, V], load LoadFunc[V]) (*Loader[V], error) {
	if c == nil {
		return nil, errors.New("no cache provided")
	}
	if load == nil {
		return nil, errors.New("no load function provided")
	}
	return &Loader[V]{cache: c, load: load}, nil
}

// Get returns the cached value for the given key, loading and caching
// it on a miss.
func (l *Loader[V]) Get(ctx context.Context, key string) (V, error) {
	if value, ok := l.cache.Get(key); ok {
		return value, nil
	}

	result, err, _ := l.group.Do(key, func() (any, error) {
		// Another caller may have loaded the key while this one was
		// waiting its turn.
		if value, ok := l.cache.Get(key); ok {
			return value, nil
		}
		value, err := l.load(ctx, key)
		if err != nil {
			return nil, err
		}
		l.cache.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Forget drops the cached value for the given key, so that the next
// Get loads it again.
func (l *Loader[V]) Forget(key string) {
	l.cache.Delete(key)
	l.group.Forget(key)
}
