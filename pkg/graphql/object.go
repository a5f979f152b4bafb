package graphql

import (
	"bytes"
	"encoding/json"
)

// Object is a response object. It keeps fields in the order they were
// selected and serializes them in that order.
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject creates an empty Object with room for n fields.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make(map[string]interface{}, n),
	}
}

// Set stores value under key. A new key is appended after existing ones.
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the field names in selection order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the fields in selection order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain converts Objects inside v, at any depth, to map[string]interface{}.
// Other values are returned unchanged.
func Plain(v interface{}) interface{} {
	switch val := v.(type) {
	case *Object:
		if val == nil {
			return nil
		}
		out := make(map[string]interface{}, len(val.keys))
		for _, key := range val.keys {
			out[key] = Plain(val.values[key])
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}
