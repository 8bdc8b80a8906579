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
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
)

// Store is a namespaced, typed key/value store on top of a Backend.
// Every key is stored under the namespace, so stores with different
// namespaces can share a backend without touching each other's values.
// A Store is safe for concurrent use if its Backend is.
type Store struct {
	backend   Backend
	namespace string
	prefix    string
	logger    logr.Logger
}

type storeOptions struct {
	logger logr.Logger
}

// StoreOption is a function that sets the store options.
type StoreOption func(*storeOptions) error

// WithLogger sets the logger for the store. It defaults to a logger
// that discards everything.
func WithLogger(logger logr.Logger) StoreOption {
	return func(o *storeOptions) error {
		o.logger = logger
		return nil
	}
}

// NewStore creates a store for the given namespace on top of the given
// backend. The namespace may contain letters, digits, and the
// characters '.', '_' and '-'.
func NewStore(backend Backend, namespace string, opts ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("no backend provided")
	}
	if !validNamespace(namespace) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	opt := storeOptions{logger: logr.Discard()}
	for _, o := range opts {
		if err := o(&opt); err != nil {
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}

	return &Store{
		backend:   backend,
		namespace: namespace,
		prefix:    namespace + "/",
		logger:    opt.logger,
	}, nil
}

func validNamespace(namespace string) bool {
	if namespace == "" {
		return false
	}
	for _, r := range namespace {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// Namespace returns the namespace the store operates in.
func (s *Store) Namespace() string {
	return s.namespace
}

// SetString stores a string value for the given key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.save(ctx, key, kindString, []byte(value))
}

// GetString returns the string value stored for the given key.
func (s *Store) GetString(ctx context.Context, key string) (string, error) {
	return s.loadKind(ctx, key, kindString)
}

// SetInt stores an integer value for the given key.
func (s *Store) SetInt(ctx context.Context, key string, value int64) error {
	return s.save(ctx, key, kindInt, strconv.AppendInt(nil, value, 10))
}

// GetInt returns the integer value stored for the given key.
func (s *Store) GetInt(ctx context.Context, key string) (int64, error) {
	payload, err := s.loadKind(ctx, key, kindInt)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return 0, &StoreError{Reason: ErrDecodeFailed, Namespace: s.namespace, Key: key, Err: err}
	}
	return value, nil
}

// SetFloat stores a float value for the given key.
func (s *Store) SetFloat(ctx context.Context, key string, value float64) error {
	return s.save(ctx, key, kindFloat, strconv.AppendFloat(nil, value, 'g', -1, 64))
}

// GetFloat returns the float value stored for the given key.
func (s *Store) GetFloat(ctx context.Context, key string) (float64, error) {
	payload, err := s.loadKind(ctx, key, kindFloat)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return 0, &StoreError{Reason: ErrDecodeFailed, Namespace: s.namespace, Key: key, Err: err}
	}
	return value, nil
}

// SetBool stores a boolean value for the given key.
func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.save(ctx, key, kindBool, strconv.AppendBool(nil, value))
}

// GetBool returns the boolean value stored for the given key.
func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	payload, err := s.loadKind(ctx, key, kindBool)
	if err != nil {
		return false, err
	}
	value, err := strconv.ParseBool(payload)
	if err != nil {
		return false, &StoreError{Reason: ErrDecodeFailed, Namespace: s.namespace, Key: key, Err: err}
	}
	return value, nil
}

// SetBytes stores a raw byte slice for the given key.
func (s *Store) SetBytes(ctx context.Context, key string, value []byte) error {
	return s.save(ctx, key, kindBytes, value)
}

// GetBytes returns the byte slice stored for the given key.
func (s *Store) GetBytes(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.loadKind(ctx, key, kindBytes)
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// SetJSON stores any JSON-encodable value for the given key.
func SetJSON[T any](ctx context.Context, s *Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &StoreError{Reason: ErrEncodeFailed, Namespace: s.namespace, Key: key, Err: err}
	}
	return s.save(ctx, key, kindJSON, data)
}

// GetJSON returns the value stored for the given key, decoded from
// JSON into T.
func GetJSON[T any](ctx context.Context, s *Store, key string) (T, error) {
	var value T
	payload, err := s.loadKind(ctx, key, kindJSON)
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		var zero T
		return zero, &StoreError{Reason: ErrDecodeFailed, Namespace: s.namespace, Key: key, Err: err}
	}
	return value, nil
}

// Contains reports whether a value is stored for the given key,
// regardless of its type.
func (s *Store) Contains(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if _, err := s.backend.Load(ctx, s.prefix+key); err != nil {
		if errors.Is(err, ErrKeyMissing) {
			return false, nil
		}
		return false, &StoreError{Namespace: s.namespace, Key: key, Err: err}
	}
	return true, nil
}

// Delete removes the value stored for the given key. Deleting an
// absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.backend.Remove(ctx, s.prefix+key); err != nil {
		return &StoreError{Namespace: s.namespace, Key: key, Err: err}
	}
	s.logger.V(1).Info("deleted value", "namespace", s.namespace, "key", key)
	return nil
}

// Clear removes every value stored in the namespace.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.RemovePrefix(ctx, s.prefix); err != nil {
		return &StoreError{Namespace: s.namespace, Err: err}
	}
	s.logger.V(1).Info("cleared namespace", "namespace", s.namespace)
	return nil
}

// Keys returns the keys of all values stored in the namespace, sorted.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	pairs, err := s.backend.LoadPrefix(ctx, s.prefix)
	if err != nil {
		return nil, &StoreError{Namespace: s.namespace, Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for key := range pairs {
		keys = append(keys, strings.TrimPrefix(key, s.prefix))
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *Store) save(ctx context.Context, key string, kind byte, payload []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.backend.Save(ctx, s.prefix+key, encode(kind, payload)); err != nil {
		return &StoreError{Namespace: s.namespace, Key: key, Err: err}
	}
	s.logger.V(1).Info("saved value",
		"namespace", s.namespace, "key", key, "kind", kindName(kind))
	return nil
}

func (s *Store) loadKind(ctx context.Context, key string, want byte) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	raw, err := s.backend.Load(ctx, s.prefix+key)
	if err != nil {
		if errors.Is(err, ErrKeyMissing) {
			return "", &StoreError{Reason: ErrValueNotFound, Namespace: s.namespace, Key: key, Err: err}
		}
		return "", &StoreError{Namespace: s.namespace, Key: key, Err: err}
	}
	payload, err := decode(raw, want)
	if err != nil {
		reason := ErrDecodeFailed
		var mismatch *kindMismatchError
		if errors.As(err, &mismatch) {
			reason = ErrTypeMismatch
		}
		return "", &StoreError{Reason: reason, Namespace: s.namespace, Key: key, Err: err}
	}
	return payload, nil
}
