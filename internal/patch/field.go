package patch

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state JSON value for partial updates: absent (Set=false),
// explicit null (Set=true, Null=true) or a value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Value[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Ptr resolves the field against the current value: unchanged when absent,
// nil when null, otherwise a pointer to the new value.
func (f Field[T]) Ptr(current *T) *T {
	if !f.Set {
		return current
	}
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}
