// Package patch provides a presence-tracking wrapper for JSON partial
// updates. A plain pointer field cannot tell "key absent" apart from
// "key set to null", and a value field cannot tell "key absent" apart
// from "key set to its zero value"; Field tracks all three states.
package patch

import "encoding/json"

// Field wraps an optional JSON value. The zero Field means the key was
// not present in the request body.
type Field[T any] struct {
	present bool
	value   *T
}

// UnmarshalJSON is only invoked by encoding/json when the key exists,
// so decoding into a Field marks it present even for null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.value = &v
	return nil
}

// Present reports whether the key appeared in the body at all.
func (f Field[T]) Present() bool { return f.present }

// Null reports whether the key was explicitly set to null.
func (f Field[T]) Null() bool { return f.present && f.value == nil }

// Get returns the decoded value and whether a non-null value was given.
func (f Field[T]) Get() (T, bool) {
	if f.value == nil {
		var zero T
		return zero, false
	}
	return *f.value, true
}

// Set builds a present Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, value: &v}
}

// Null builds a present Field holding an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{present: true}
}
