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

// Stored values carry a one-byte kind tag in front of the payload. The
// tag pins the type a value was written with, so a read with the wrong
// accessor is detected instead of silently misparsed. Strings, numbers
// and booleans use compact text payloads; everything else goes through
// JSON.
const (
	kindString byte = 's'
	kindInt    byte = 'i'
	kindFloat  byte = 'f'
	kindBool   byte = 'b'
	kindBytes  byte = 'y'
	kindJSON   byte = 'j'
)

func kindName(kind byte) string {
	switch kind {
	case kindString:
		return "string"
	case kindInt:
		return "int"
	case kindFloat:
		return "float"
	case kindBool:
		return "bool"
	case kindBytes:
		return "bytes"
	case kindJSON:
		return "json"
	}
	return fmt.Sprintf("0x%02x", kind)
}

// encode prefixes the payload with its kind tag.
func encode(kind byte, payload []byte) string {
	b := make([]byte, 0, len(payload)+1)
	b = append(b, kind)
	b = append(b, payload...)
	return string(b)
}

// decode strips the kind tag off a stored value, checking it against
// the requested kind.
func decode(raw string, want byte) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("stored value has no kind tag")
	}
	if got := raw[0]; got != want {
		return "", &kindMismatchError{want: want, got: got}
	}
	return raw[1:], nil
}

// kindMismatchError reports a stored value whose kind tag differs from
// the requested one.
type kindMismatchError struct {
	want byte
	got  byte
}

func (e *kindMismatchError) Error() string {
	return fmt.Sprintf("requested %s but stored value is %s", kindName(e.want), kindName(e.got))
}
