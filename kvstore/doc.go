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

// Package kvstore provides a namespaced, typed key/value store on top of
// pluggable string key/value backends.
//
// A Store binds a namespace to a Backend. Every key is stored under the
// namespace, so multiple stores can share one backend without touching
// each other's values. Values are typed: the store offers accessors for
// strings, integers, floats, booleans and byte slices, plus JSON
// round-tripping for any other type
//
//	store, err := kvstore.NewStore(kvstore.NewMemoryBackend(), "settings")
//	err = store.SetInt(ctx, "retries", 3)
//	n, err := store.GetInt(ctx, "retries")
//
//	err = kvstore.SetJSON(ctx, store, "profile", profile)
//	profile, err = kvstore.GetJSON[Profile](ctx, store, "profile")
//
// Every stored value carries a kind tag, so reading a value back with
// the wrong type reports ErrTypeMismatch instead of garbage. The store
// errors carry the namespace and key for diagnostics and match the
// reasons ErrValueNotFound, ErrEncodeFailed, ErrDecodeFailed and
// ErrTypeMismatch under errors.Is.
//
// Three backends are included: MemoryBackend (ordered in-memory store),
// FileBackend (one file per key, atomically replaced on write) and
// RedisBackend (any go-redis client). Implementing the Backend
// interface plugs in anything else.
//
// Loader combines a Store or any other source of truth with a cache
// from this repository into a read-through cache that collapses
// concurrent loads for the same key.
package kvstore
