// Package tzip16 builds and encodes TZIP-16 contract metadata: ordered
// JSON documents, their on-chain two-entry big-map form, and off-chain
// view descriptors.
package tzip16

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Document is an insertion-ordered JSON object over a closed value
// set: string, bool, int, int64, float64, nil, nested *Document,
// []any lists of the same set, and pre-encoded json.RawMessage blobs.
// Anything else fails serialization with *EncodingError.
type Document struct {
	keys []string
	vals map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{vals: make(map[string]any)}
}

// Set stores a value under key, keeping first-insertion order. It
// returns the document for chaining.
func (d *Document) Set(key string, value any) *Document {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = value
	return d
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// EncodingError reports a document value that cannot be serialized.
type EncodingError struct {
	Key string
	Msg string
}

func (e *EncodingError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("tzip16: encode document: %s", e.Msg)
	}
	return fmt.Sprintf("tzip16: encode %q: %s", e.Key, e.Msg)
}

// MarshalJSON renders the document compactly, keys in insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	return d.marshal(false)
}

// MarshalIndent renders the document with two-space indentation and a
// space after each key, the layout the published metadata uses.
func (d *Document) MarshalIndent() ([]byte, error) {
	return d.marshal(true)
}

func (d *Document) marshal(indent bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDoc(&buf, d, indent, 0, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDoc(buf *bytes.Buffer, d *Document, indent bool, depth int, path string) error {
	if d.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if indent {
			writeNewline(buf, depth+1)
		}
		writeQuoted(buf, k)
		buf.WriteByte(':')
		if indent {
			buf.WriteByte(' ')
		}
		if err := writeValue(buf, d.vals[k], indent, depth+1, joinKey(path, k)); err != nil {
			return err
		}
	}
	if indent {
		writeNewline(buf, depth)
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, value any, indent bool, depth int, path string) error {
	switch v := value.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		writeQuoted(buf, v)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int:
		buf.WriteString(strconv.Itoa(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b, err := json.Marshal(v)
		if err != nil {
			return &EncodingError{Key: path, Msg: err.Error()}
		}
		buf.Write(b)
	case *Document:
		return writeDoc(buf, v, indent, depth, path)
	case []any:
		return writeArray(buf, v, indent, depth, path)
	case json.RawMessage:
		return writeRaw(buf, v, indent, depth, path)
	default:
		return &EncodingError{Key: path, Msg: fmt.Sprintf("unsupported value type %T", value)}
	}
	return nil
}

func writeArray(buf *bytes.Buffer, items []any, indent bool, depth int, path string) error {
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if indent {
			writeNewline(buf, depth+1)
		}
		if err := writeValue(buf, item, indent, depth+1, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	if indent {
		writeNewline(buf, depth)
	}
	buf.WriteByte(']')
	return nil
}

func writeRaw(buf *bytes.Buffer, raw json.RawMessage, indent bool, depth int, path string) error {
	var err error
	if indent {
		err = json.Indent(buf, raw, strings.Repeat("  ", depth), "  ")
	} else {
		err = json.Compact(buf, raw)
	}
	if err != nil {
		return &EncodingError{Key: path, Msg: fmt.Sprintf("invalid raw value: %v", err)}
	}
	return nil
}

func writeNewline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

// writeQuoted emits a JSON string without HTML escaping, matching the
// serializer the metadata was originally published with.
func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			buf.WriteString(`\"`)
		case c == '\\':
			buf.WriteString(`\\`)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c < 0x20:
			fmt.Fprintf(buf, `\u%04x`, c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('"')
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// UnmarshalJSON parses a JSON object, preserving its key order.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("tzip16: document must be a JSON object")
	}
	parsed, err := parseObject(dec)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

func parseObject(dec *json.Decoder) (*Document, error) {
	d := NewDocument()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("tzip16: object key is not a string")
		}
		v, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		d.Set(key, v)
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return nil, err
	}
	return d, nil
}

func parseArray(dec *json.Decoder) ([]any, error) {
	items := []any{}
	for dec.More() {
		v, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil { // closing bracket
		return nil, err
	}
	return items, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("tzip16: unexpected delimiter %v", t)
		}
	case string:
		return t, nil
	case bool:
		return t, nil
	case json.Number:
		if n, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("tzip16: invalid number %q", t.String())
		}
		return f, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("tzip16: unexpected token %v", tok)
	}
}
