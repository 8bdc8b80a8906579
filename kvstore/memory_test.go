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
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackend_SaveLoad(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "key", "value"))

	value, err := backend.Load(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value", value)

	require.NoError(t, backend.Save(ctx, "key", "value2"))
	value, err = backend.Load(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "value2", value)

	_, err = backend.Load(ctx, "nothing")
	assert.ErrorIs(t, err, ErrKeyMissing)
}

func TestMemoryBackend_LoadPrefix(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "users/alice", "a"))
	require.NoError(t, backend.Save(ctx, "users/bob", "b"))
	require.NoError(t, backend.Save(ctx, "userdata", "u"))
	require.NoError(t, backend.Save(ctx, "jobs/1", "j"))

	pairs, err := backend.LoadPrefix(ctx, "users/")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"users/alice": "a",
		"users/bob":   "b",
	}, pairs)

	// A bare prefix matches beyond any separator.
	pairs, err = backend.LoadPrefix(ctx, "user")
	require.NoError(t, err)
	assert.Len(t, pairs, 3)

	pairs, err = backend.LoadPrefix(ctx, "absent/")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestMemoryBackend_Remove(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "key", "value"))
	require.NoError(t, backend.Remove(ctx, "key"))

	_, err := backend.Load(ctx, "key")
	assert.ErrorIs(t, err, ErrKeyMissing)

	assert.NoError(t, backend.Remove(ctx, "key"))
}

func TestMemoryBackend_RemovePrefix(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	require.NoError(t, backend.Save(ctx, "users/alice", "a"))
	require.NoError(t, backend.Save(ctx, "users/bob", "b"))
	require.NoError(t, backend.Save(ctx, "jobs/1", "j"))

	require.NoError(t, backend.RemovePrefix(ctx, "users/"))

	pairs, err := backend.LoadPrefix(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"jobs/1": "j"}, pairs)
}

func TestMemoryBackend_Concurrent(t *testing.T) {
	backend := NewMemoryBackend()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("worker-%d/key-%d", n, j%10)
				_ = backend.Save(ctx, key, "value")
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = backend.LoadPrefix(ctx, fmt.Sprintf("worker-%d/", n))
			}
		}(i)
	}
	wg.Wait()

	pairs, err := backend.LoadPrefix(ctx, "")
	require.NoError(t, err)
	assert.Len(t, pairs, 100)
}
