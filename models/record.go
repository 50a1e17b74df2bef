package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrWrongType is returned when a present field does not hold the expected kind.
var ErrWrongType = errors.New("models: field has unexpected type")

// Record is one decoded JSON object. Accessors treat an absent key and an
// explicit null identically: both report ok == false.
type Record map[string]any

// Has reports whether name is present with a non-null value.
func (r Record) Has(name string) bool {
	v, ok := r[name]
	return ok && v != nil
}

// Str returns the scalar at name rendered as text. Strings are returned as-is;
// json.Number keeps its source digits; booleans render as true/false.
func (r Record) Str(name string) (string, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return fmt.Sprintf("%v", t), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// Sub returns the nested object at name.
func (r Record) Sub(name string) (Record, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]any:
		return Record(t), true
	case Record:
		return t, true
	default:
		return nil, false
	}
}

// List returns the array at name.
func (r Record) List(name string) ([]any, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// Records returns the array at name as objects. Non-object elements are
// reported through ErrWrongType along with their index.
func (r Record) Records(name string) ([]Record, error) {
	l, ok := r.List(name)
	if !ok {
		return nil, nil
	}
	out := make([]Record, 0, len(l))
	for i, el := range l {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, ErrWrongType)
		}
		out = append(out, Record(m))
	}
	return out, nil
}

// Strings returns the array at name as text scalars, skipping null elements.
func (r Record) Strings(name string) ([]string, error) {
	l, ok := r.List(name)
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(l))
	for i, el := range l {
		if el == nil {
			continue
		}
		s, ok := Record{"v": el}.Str("v")
		if !ok {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, ErrWrongType)
		}
		out = append(out, s)
	}
	return out, nil
}
