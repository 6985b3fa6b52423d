package sparkbuffer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KV is one key/value pair of an OrderedObject.
type KV struct {
	Key   string
	Value any
}

// OrderedObject is a JSON object that preserves insertion order across
// marshaling, required because bean field order and map iteration order
// are both meaningful output (spec.md §4.8: "object key order must match
// field declaration order / map entry order, not be alphabetized").
// encoding/json sorts map[string]any keys, so this type implements its own
// MarshalJSON instead of relying on the standard map-based encoder.
type OrderedObject []KV

// MarshalJSON writes the pairs in their original order.
func (o OrderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, fmt.Errorf("marshaling key %q: %w", kv.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(kv.Value)
		if err != nil {
			return nil, fmt.Errorf("marshaling value for key %q: %w", kv.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeToJSON runs Decode and marshals the result, indenting with two
// spaces for readability (spec.md §6: output files are ".json").
func DecodeToJSON(data []byte) ([]byte, error) {
	d := NewDecoder(data)
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshaling decoded value: %w", err)
	}
	return buf.Bytes(), nil
}
