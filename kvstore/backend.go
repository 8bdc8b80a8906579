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
)

// ErrKeyMissing is returned by a Backend when no value is stored for a
// key. The Store translates it into a StoreError with reason
// ErrValueNotFound.
var ErrKeyMissing = errors.New("key missing")

// Backend is a durable string key/value store underneath a Store.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Save stores a value for the given key, overwriting any previous
	// value.
	Save(ctx context.Context, key, value string) error
	// Load returns the value stored for the given key, or ErrKeyMissing
	// if there is none.
	Load(ctx context.Context, key string) (string, error)
	// LoadPrefix returns all stored key/value pairs whose key starts
	// with the given prefix.
	LoadPrefix(ctx context.Context, prefix string) (map[string]string, error)
	// Remove deletes the value stored for the given key. Removing an
	// absent key is not an error.
	Remove(ctx context.Context, key string) error
	// RemovePrefix deletes all values whose key starts with the given
	// prefix.
	RemovePrefix(ctx context.Context, prefix string) error
	// Close releases the resources held by the backend.
	Close() error
}
