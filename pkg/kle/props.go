package kle

import (
	"bytes"
	"encoding/json"
)

// Prop is a single attribute of a property mapping.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered property mapping. [Serialize] emits Props so that the
// encoded form lists attributes in a stable order; [Deserialize] accepts
// Props anywhere it accepts a map[string]any.
type Props []Prop

// Get returns the value stored under key.
func (p Props) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, even with a nil value.
func (p Props) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Set replaces the value under key in place, or appends it.
func (p Props) Set(key string, value any) Props {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Prop{Key: key, Value: value})
}

// Keys returns the attribute names in order.
func (p Props) Keys() []string {
	keys := make([]string, len(p))
	for i, kv := range p {
		keys[i] = kv.Key
	}
	return keys
}

// Map returns an unordered copy.
func (p Props) Map() map[string]any {
	m := make(map[string]any, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

// MarshalJSON encodes the mapping as a JSON object preserving order.
func (p Props) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(kv.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(kv.Value); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
