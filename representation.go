package graceful

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Rep is an insertion-ordered string-keyed mapping. Serializers and
// self-description produce Rep values so that representation key order is
// deterministic and follows field declaration order, which is part of the
// wire contract.
type Rep struct {
	keys   []string
	values map[string]any
}

// NewRep returns an empty ordered mapping.
func NewRep() *Rep {
	return &Rep{values: make(map[string]any)}
}

// Set stores a value under key. Setting an existing key overwrites the value
// but keeps the key's original position.
func (r *Rep) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Rep) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (r *Rep) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of keys.
func (r *Rep) Len() int { return len(r.keys) }

// Map returns a plain unordered copy of the mapping. Nested Rep values are
// not converted.
func (r *Rep) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON writes the mapping as a JSON object with keys in insertion
// order.
func (r *Rep) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving its key order.
func (r *Rep) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}

	r.keys = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.Set(key, value)
	}

	// Consume closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalYAML writes the mapping as a YAML map with keys in insertion order.
func (r *Rep) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.keys {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(r.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// MarshalCBOR writes the mapping as a CBOR map. CBOR maps carry no key order
// semantics, so the plain map form is used.
func (r *Rep) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(r.Map())
}
