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
	"errors"
	"fmt"
)

// ErrEmptyKey is returned when an empty key is passed to a Store
// operation.
var ErrEmptyKey = errors.New("empty key")

// StoreErrorReason is a type that represents the reason for a store error.
type StoreErrorReason struct {
	reason string
	msg    string
}

// Error gives a human-readable description of the error.
func (e StoreErrorReason) Error() string {
	return e.msg
}

// StoreError is an error returned by a Store. It carries the namespace
// and key the failing operation addressed.
type StoreError struct {
	Reason    StoreErrorReason
	Namespace string
	Key       string
	Err       error
}

// Error returns Err as a string, prefixed with the namespace, key and
// Reason to provide context.
func (e *StoreError) Error() string {
	loc := e.Namespace
	if e.Key != "" {
		loc += "/" + e.Key
	}
	if e.Reason.Error() == "" {
		return fmt.Sprintf("%s: %s", loc, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Reason.Error(), e.Err.Error())
}

// Is returns true if the Reason or Err equals target.
// It can be used to programmatically place an arbitrary Err in the
// context of the Store:
//
//	err := &StoreError{Reason: ErrDecodeFailed, Err: errors.New("arbitrary parse error")}
//	errors.Is(err, ErrDecodeFailed)
func (e *StoreError) Is(target error) bool {
	if e.Reason == target {
		return true
	}
	return errors.Is(e.Err, target)
}

// Unwrap returns the underlying Err.
func (e *StoreError) Unwrap() error {
	return e.Err
}

var (
	// ErrValueNotFound is the reason for reads of a key that holds no value.
	ErrValueNotFound = StoreErrorReason{"ValueNotFound", "value not found"}
	// ErrEncodeFailed is the reason for values that cannot be encoded for
	// storage.
	ErrEncodeFailed = StoreErrorReason{"EncodeFailed", "failed to encode value"}
	// ErrDecodeFailed is the reason for stored values that cannot be
	// decoded back.
	ErrDecodeFailed = StoreErrorReason{"DecodeFailed", "failed to decode stored value"}
	// ErrTypeMismatch is the reason for reads of a value stored with a
	// different type than the one requested.
	ErrTypeMismatch = StoreErrorReason{"TypeMismatch", "stored value has a different type"}
)
