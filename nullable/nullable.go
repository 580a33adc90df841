// Package nullable holds column values that may be SQL NULL.
// They scan from rows, bind as statement args and encode null in JSON.
package nullable

import (
	"database/sql"
	"time"

	"github.com/goccy/go-json"
)

// Value implements sql.Scanner and driver.Valuer by embedding sql.Null[T],
// and json.Marshaler and json.Unmarshaler.
type Value[T any] struct {
	sql.Null[T]
}

type (
	Int    = Value[int64]
	String = Value[string]
	Time   = Value[time.Time]
)

// Of returns a non-null Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{Null: sql.Null[T]{V: v, Valid: true}}
}

func (n Value[T]) MarshalJSON() ([]byte, error) {
	if n.Valid {
		return json.Marshal(n.V)
	}
	return []byte("null"), nil
}

func (n *Value[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Value[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Of(v)
	return nil
}

// ForceValue returns the zero T for NULL.
func (n Value[T]) ForceValue() T {
	if !n.Valid {
		var zero T
		return zero
	}
	return n.V
}

func (n Value[T]) IsNil() bool {
	return !n.Valid
}

// Ptr returns nil for NULL.
func (n Value[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}
