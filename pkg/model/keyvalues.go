package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeyValue is a single query parameter.
type KeyValue struct {
	Key   string
	Value string
}

// KeyValues is an ordered list of key/value pairs. It is encoded as a JSON
// object, but decoding keeps the document order and duplicate keys, which a
// Go map cannot.
type KeyValues []KeyValue

// Add appends a pair, keeping any earlier pair with the same key.
func (kv *KeyValues) Add(key, value string) {
	*kv = append(*kv, KeyValue{Key: key, Value: value})
}

// Get returns the first value stored under key.
func (kv KeyValues) Get(key string) (string, bool) {
	for _, p := range kv {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that shares no backing array with kv.
func (kv KeyValues) Clone() KeyValues {
	if kv == nil {
		return nil
	}
	out := make(KeyValues, len(kv))
	copy(out, kv)
	return out
}

// MarshalJSON writes the pairs as a JSON object in order. A nil list is null.
func (kv KeyValues) MarshalJSON() ([]byte, error) {
	if kv == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range kv {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Value)
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

// UnmarshalJSON reads a JSON object of string values in document order.
func (kv *KeyValues) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*kv = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("key/value list must be a JSON object")
	}

	out := KeyValues{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		out = append(out, KeyValue{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*kv = out
	return nil
}
