package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Field is one name/value pair used to build documents.
type Field struct {
	Name  string
	Value Value
}

// Document is an ordered mapping from field name to Value. Field order is the
// order of first insertion and survives JSON round trips. The zero Document is
// empty and ready to use.
//
// Documents hold a map internally: copy with Clone (or use With) before handing
// one to code that may Set on it.
type Document struct {
	keys   []string
	fields map[string]Value
}

// NewDocument builds a document from fields in order. A repeated name keeps
// its first position and the last value.
func NewDocument(fields ...Field) Document {
	var d Document
	for _, f := range fields {
		d.Set(f.Name, f.Value)
	}
	return d
}

// DocumentFromMap converts a Go map. Keys are sorted since maps are unordered.
func DocumentFromMap(m map[string]any) (Document, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var d Document
	for _, k := range keys {
		v, err := FromAny(m[k])
		if err != nil {
			return Document{}, fmt.Errorf("field %q: %w", k, err)
		}
		d.Set(k, v)
	}
	return d, nil
}

func (d Document) Len() int { return len(d.keys) }

// Keys returns field names in order.
func (d Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Get returns the value stored under name.
func (d Document) Get(name string) (Value, bool) {
	v, ok := d.fields[name]
	if !ok {
		return Value{}, false
	}
	return v.Clone(), true
}

func (d Document) Has(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// GetString returns the field as a string when present and a string.
func (d Document) GetString(name string) (string, bool) {
	v, ok := d.fields[name]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Set stores v under name, keeping the original position when the name exists.
func (d *Document) Set(name string, v Value) {
	if d.fields == nil {
		d.fields = make(map[string]Value)
	}
	if _, ok := d.fields[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.fields[name] = v.Clone()
}

// With returns an augmented copy carrying name=v. d is left untouched.
func (d Document) With(name string, v Value) Document {
	c := d.Clone()
	c.Set(name, v)
	return c
}

// Without returns a copy of d lacking name. d is left untouched.
func (d Document) Without(name string) Document {
	var out Document
	d.Range(func(k string, v Value) bool {
		if k != name {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// First returns the first field in order.
func (d Document) First() (string, Value, bool) {
	if len(d.keys) == 0 {
		return "", Value{}, false
	}
	name := d.keys[0]
	return name, d.fields[name].Clone(), true
}

// Range calls fn for each field in order until fn returns false.
func (d Document) Range(fn func(name string, v Value) bool) {
	for _, k := range d.keys {
		if !fn(k, d.fields[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if len(d.keys) == 0 {
		return Document{}
	}
	c := Document{
		keys:   append([]string(nil), d.keys...),
		fields: make(map[string]Value, len(d.fields)),
	}
	for k, v := range d.fields {
		c.fields[k] = v.Clone()
	}
	return c
}

// Equal compares documents as mappings.
func (d Document) Equal(o Document) bool {
	if len(d.keys) != len(o.keys) {
		return false
	}
	for k, v := range d.fields {
		ov, ok := o.fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Map converts the document to a plain Go map.
func (d Document) Map() map[string]any {
	m := make(map[string]any, len(d.keys))
	for k, v := range d.fields {
		m[k] = v.Interface()
	}
	return m
}

func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d Document) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(name)
		buf.WriteByte(':')
		if err := d.fields[k].encode(buf); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = Document{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}
	out, err := decodeDocumentBody(dec)
	if err != nil {
		return err
	}
	*d = out
	return nil
}

// decodeDocumentBody reads fields up to and including the closing brace.
func decodeDocumentBody(dec *json.Decoder) (Document, error) {
	var d Document
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Document{}, err
		}
		name, ok := tok.(string)
		if !ok {
			return Document{}, fmt.Errorf("expected field name, got %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Document{}, fmt.Errorf("field %q: %w", name, err)
		}
		d.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return Document{}, err
	}
	return d, nil
}
