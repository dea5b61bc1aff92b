package items

import (
	"bytes"
	"encoding/json"
	"slices"
)

// ParamDict is an insertion-ordered mapping where a key set more than once
// turns its value into a sequence and appends to it, instead of keeping
// only the last value.
type ParamDict struct {
	keys   []string
	values map[string]any
}

func NewParamDict() *ParamDict {
	return &ParamDict{values: make(map[string]any)}
}

// Set stores value under key. For a repeated key the existing value is
// converted into a []any, unless it already is one, and value is appended.
func (d *ParamDict) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	cur, ok := d.values[key]
	if !ok {
		d.keys = append(d.keys, key)
		d.values[key] = value
		return
	}
	seq, isSeq := cur.([]any)
	if !isSeq {
		seq = []any{cur}
	}
	d.values[key] = append(slices.Clip(seq), value)
}

// Get returns the value stored under key.
func (d *ParamDict) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Values returns the value stored under key as a sequence: the elements of
// a []any, or the single value.
func (d *ParamDict) Values(key string) []any {
	v, ok := d.values[key]
	if !ok {
		return nil
	}
	if seq, isSeq := v.([]any); isSeq {
		return slices.Clone(seq)
	}
	return []any{v}
}

func (d *ParamDict) Keys() []string {
	return slices.Clone(d.keys)
}

func (d *ParamDict) Len() int {
	return len(d.keys)
}

// Each calls fn for every key in insertion order with its value.
func (d *ParamDict) Each(fn func(key string, value any)) {
	for _, k := range d.keys {
		fn(k, d.values[k])
	}
}

// MarshalJSON encodes the dict as a JSON object preserving key order.
func (d *ParamDict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := marshalValue(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
