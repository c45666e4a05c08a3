package reference

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownID is returned when an update names an id missing from the
// document.
var ErrUnknownID = errors.New("unknown reference id")

// Updates maps base ids to the fields to overwrite.
type Updates map[string]map[string]any

// Merge applies updates to a reference document field by field and
// returns the re-encoded document. Ids and fields keep their document
// order, new fields are appended in name order, and fields not named in an
// update are kept as they are, including ones this package does not
// model. Nothing is written if any id is unknown.
func Merge(doc []byte, updates Updates) ([]byte, error) {
	root, err := parseObject(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing reference: %w", err)
	}

	ids := make([]string, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		raw, ok := root.values[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownID, id)
		}
		entry, err := parseObject(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing entry %s: %w", id, err)
		}

		fields := make([]string, 0, len(updates[id]))
		for k := range updates[id] {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		for _, k := range fields {
			v, err := marshal(updates[id][k])
			if err != nil {
				return nil, fmt.Errorf("encoding %s.%s: %w", id, k, err)
			}
			entry.set(k, v)
		}

		merged, err := entry.MarshalJSON()
		if err != nil {
			return nil, err
		}
		root.set(id, merged)
	}
	return Encode(root)
}

// Encode writes v as two-space indented JSON with a trailing newline and
// without HTML or non-ASCII escaping.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding reference: %w", err)
	}
	return buf.Bytes(), nil
}

func marshal(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// object is a JSON object that remembers its key order. Values stay raw.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

// parseObject reads a JSON object; null yields an empty one.
func parseObject(data []byte) (*object, error) {
	o := &object{values: make(map[string]json.RawMessage)}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return o, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		o.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return o, nil
}

// set replaces the value of key, appending the key when it is new.
func (o *object) set(key string, v json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// MarshalJSON writes the keys in order.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(o.values[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
