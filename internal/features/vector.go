package features

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Field is a single named feature value.
type Field struct {
	Name  string
	Value any
}

// Vector is an insertion-ordered set of features. Values are ints or strings.
// The zero value is an empty vector; vectors are never modified after construction.
type Vector struct {
	keys   []string
	values map[string]any
}

// NewVector builds a vector from fields in order. A repeated name keeps its
// first position and its last value.
func NewVector(fields ...Field) Vector {
	v := Vector{values: make(map[string]any, len(fields))}
	for _, f := range fields {
		v.set(f.Name, f.Value)
	}
	return v
}

func (v *Vector) set(name string, value any) {
	if v.values == nil {
		v.values = make(map[string]any)
	}
	if _, ok := v.values[name]; !ok {
		v.keys = append(v.keys, name)
	}
	v.values[name] = value
}

// With returns a copy of v with name set to value.
func (v Vector) With(name string, value any) Vector {
	out := Vector{
		keys:   slices.Clone(v.keys),
		values: maps.Clone(v.values),
	}
	out.set(name, value)
	return out
}

func (v Vector) Len() int {
	return len(v.keys)
}

func (v Vector) Keys() []string {
	return slices.Clone(v.keys)
}

func (v Vector) Get(name string) (any, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Float returns the numeric value of name. Strings and missing keys report false.
func (v Vector) Float(name string) (float64, bool) {
	switch value := v.values[name].(type) {
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case float64:
		return value, true
	case bool:
		if value {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func (v Vector) Int(name string) int {
	f, _ := v.Float(name)
	return int(f)
}

// Text returns the string value of name, or "" when absent or not a string.
func (v Vector) Text(name string) string {
	s, _ := v.values[name].(string)
	return s
}

// MarshalJSON encodes the vector as an object that preserves key order.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.values[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode feature %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
