package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldValue is one variant-specific entry of a Payload.
type FieldValue struct {
	Name  Field
	Value int
}

// Payload is the outbound configuration: url, simulate and only the fields
// the variant declares. It is derived from a Builder and never edited.
type Payload struct {
	URL      string
	Simulate Variant
	Fields   []FieldValue
}

// Keys lists the JSON keys in encoding order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, 2+len(p.Fields))
	keys = append(keys, string(FieldURL), "simulate")
	for _, fv := range p.Fields {
		keys = append(keys, string(fv.Name))
	}
	return keys
}

// Get returns the value of a variant field carried by the payload.
func (p Payload) Get(f Field) (int, bool) {
	for _, fv := range p.Fields {
		if fv.Name == f {
			return fv.Value, true
		}
	}
	return 0, false
}

// MarshalJSON writes url, simulate, then the variant fields in registry order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := write(string(FieldURL), p.URL); err != nil {
		return nil, err
	}
	if err := write("simulate", string(p.Simulate)); err != nil {
		return nil, err
	}
	for _, fv := range p.Fields {
		if err := write(string(fv.Name), fv.Value); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
