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
	"strings"
	"sync"

	"github.com/google/btree"
)

// kvItem is a key/value pair ordered by key.
type kvItem struct {
	key   string
	value string
}

func lessKV(a, b kvItem) bool {
	return a.key < b.key
}

// MemoryBackend is an in-memory Backend with keys kept in order, which
// makes prefix scans cheap. It is well suited for tests and for stores
// that do not need to survive a restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[kvItem]
}

var _ Backend = &MemoryBackend{}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tree: btree.NewG(2, lessKV),
	}
}

func (b *MemoryBackend) Save(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.ReplaceOrInsert(kvItem{key: key, value: value})
	return nil
}

func (b *MemoryBackend) Load(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	item, found := b.tree.Get(kvItem{key: key})
	if !found {
		return "", ErrKeyMissing
	}
	return item.value, nil
}

func (b *MemoryBackend) LoadPrefix(_ context.Context, prefix string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]string)
	b.tree.AscendGreaterOrEqual(kvItem{key: prefix}, func(item kvItem) bool {
		if !strings.HasPrefix(item.key, prefix) {
			return false
		}
		out[item.key] = item.value
		return true
	})
	return out, nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tree.Delete(kvItem{key: key})
	return nil
}

func (b *MemoryBackend) RemovePrefix(_ context.Context, prefix string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var doomed []kvItem
	b.tree.AscendGreaterOrEqual(kvItem{key: prefix}, func(item kvItem) bool {
		if !strings.HasPrefix(item.key, prefix) {
			return false
		}
		doomed = append(doomed, item)
		return true
	})
	for _, item := range doomed {
		b.tree.Delete(item)
	}
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
