package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ValueKind tags the shape of an extracted category value.
type ValueKind int

const (
	// KindList is a list of items, the expected shape.
	KindList ValueKind = iota
	// KindScalar is a bare string the model returned in place of a list.
	KindScalar
)

// Value is a category value as returned by the model: either a list of
// strings or a single string.
type Value struct {
	Kind   ValueKind
	List   []string
	Scalar string
}

// ListValue builds a list-shaped value.
func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: items}
}

// ScalarValue builds a scalar-shaped value.
func ScalarValue(item string) Value {
	return Value{Kind: KindScalar, Scalar: item}
}

// IsScalar reports whether the value was a bare string.
func (v Value) IsScalar() bool {
	return v.Kind == KindScalar
}

// Items normalizes the value to a list. A scalar becomes a one-element list.
func (v Value) Items() []string {
	if v.Kind == KindScalar {
		return []string{v.Scalar}
	}
	out := make([]string, len(v.List))
	copy(out, v.List)
	return out
}

// MarshalJSON writes scalars as strings and lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindScalar {
		return json.Marshal(v.Scalar)
	}
	if v.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.List)
}

// UnmarshalJSON accepts a string, an array of strings, or null (an empty list).
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*v = ListValue()
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = ScalarValue(s)
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var raw []any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for i, elem := range raw {
			s, ok := elem.(string)
			if !ok {
				return fmt.Errorf("item %d is %T, expected string", i, elem)
			}
			items = append(items, s)
		}
		*v = ListValue(items...)
		return nil
	default:
		return fmt.Errorf("expected string or list of strings, got %s", string(trimmed))
	}
}

// ExtractionField is one category entry of a parsed extraction.
type ExtractionField struct {
	Label string
	Value Value
}

// Extraction is a parsed model output: category labels mapped to values,
// in the order the model emitted them.
type Extraction []ExtractionField

// Get returns the value stored under label.
func (e Extraction) Get(label string) (Value, bool) {
	for _, f := range e {
		if f.Label == label {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Labels returns the labels in document order.
func (e Extraction) Labels() []string {
	labels := make([]string, len(e))
	for i, f := range e {
		labels[i] = f.Label
	}
	return labels
}

// UnmarshalJSON decodes a JSON object in document order. A repeated key
// keeps its first position and takes the last value.
func (e *Extraction) UnmarshalJSON(data []byte) error {
	out := Extraction{}
	err := decodeOrderedObject(data, func(key string, raw json.RawMessage) error {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("category %q: %w", key, err)
		}
		for i := range out {
			if out[i].Label == key {
				out[i].Value = v
				return nil
			}
		}
		out = append(out, ExtractionField{Label: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}

// MarshalJSON writes the extraction as a JSON object in field order.
func (e Extraction) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Label)
		if err != nil {
			return nil, err
		}
		value, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeOrderedObject walks the top-level keys of a JSON object in order.
func decodeOrderedObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
