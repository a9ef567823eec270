package labelgraph

import (
	"bytes"
	"encoding/json"
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNotObject is returned by [Decode] when the top-level JSON value is not an object.
var ErrNotObject = errors.New("document must be a JSON object")

// Document is a decoded label document. Labels keep the order in which they
// appear in the source, which fixes the order of the generated nodes.
type Document struct {
	labels *orderedmap.OrderedMap[string, json.RawMessage]
}

// Decode parses a label document. It fails only when data is not valid JSON
// or its top level is not an object; everything below the top level is
// interpreted leniently by [Build].
func Decode(data []byte) (*Document, error) {
	if shape(data) != '{' {
		if !json.Valid(data) {
			var v any
			return nil, json.Unmarshal(data, &v)
		}
		return nil, ErrNotObject
	}
	labels, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	return &Document{labels: labels}, nil
}

// Labels returns the label names in document order.
func (d *Document) Labels() []string {
	names := make([]string, 0, d.labels.Len())
	for pair := d.labels.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of labels.
func (d *Document) Len() int { return d.labels.Len() }

func decodeObject(data []byte) (*orderedmap.OrderedMap[string, json.RawMessage], error) {
	m := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// shape returns the first significant byte of a JSON value: '{' for objects,
// '[' for arrays, or 0 for an empty value.
func shape(data []byte) byte {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// record decodes a JSON object into its fields. Anything else yields an empty record.
func record(data json.RawMessage) map[string]json.RawMessage {
	if shape(data) != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

// list decodes a JSON array into its elements. Anything else yields nil.
func list(data json.RawMessage) []json.RawMessage {
	if shape(data) != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}

// text returns a name-like field as a string. Strings are used as-is;
// non-zero numbers and true pass through by their literal text. Missing,
// null, false, zero, empty and compound values yield "".
func text(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil && f != 0 {
			return v.String()
		}
	case bool:
		if v {
			return "true"
		}
	}
	return ""
}

// identifier returns an ID-like field as a string. Strings are used as-is and
// numbers by their literal text; null, empty strings and other types are
// reported as missing.
func identifier(m map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}
