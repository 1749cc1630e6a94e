package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Entry is a single key/value pair of a color option map or inline style.
type Entry struct {
	Key   string
	Value string
}

// Entries is an ordered key/value map as supplied by a caller. Duplicate
// keys are allowed; consumers apply last-write-wins.
type Entries []Entry

// EntriesFromMap converts m into Entries sorted by key. Go maps carry no
// order, so callers that care about overwrite order should build Entries
// directly.
func EntriesFromMap(m map[string]string) Entries {
	out := make(Entries, 0, len(m))
	for k, v := range m {
		out = append(out, Entry{Key: k, Value: v})
	}
	sortEntries(out)
	return out
}

func sortEntries(e Entries) {
	sort.SliceStable(e, func(i, j int) bool {
		return e[i].Key < e[j].Key
	})
}

// UnmarshalJSON decodes a JSON object keeping its key order.
func (e *Entries) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*e = nil
		return nil
	}
	var out Entries
	err := decodeObject(trimmed, func(key string, value json.RawMessage) error {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("value for %q must be a string", key)
		}
		out = append(out, Entry{Key: key, Value: s})
		return nil
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}

// MarshalJSON encodes e as a JSON object in slice order.
func (e Entries) MarshalJSON() ([]byte, error) {
	return encodeObject(len(e), func(i int) (string, string) {
		return e[i].Key, e[i].Value
	})
}

// Vars is an ordered map of CSS custom properties to values. Setting an
// existing key replaces its value but keeps its original position.
type Vars struct {
	keys   []string
	values map[string]string
}

// NewVars returns an empty Vars.
func NewVars() *Vars {
	return &Vars{values: make(map[string]string)}
}

// Set stores value under key.
func (v *Vars) Set(key, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, ok := v.values[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.values[key] = value
}

// SetDefault stores value only when key is absent and reports whether it did.
func (v *Vars) SetDefault(key, value string) bool {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, ok := v.values[key]; ok {
		return false
	}
	v.keys = append(v.keys, key)
	v.values[key] = value
	return true
}

// Get returns the value stored under key.
func (v *Vars) Get(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	val, ok := v.values[key]
	return val, ok
}

// Has reports whether key is present.
func (v *Vars) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of keys.
func (v *Vars) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Keys returns the keys in insertion order.
func (v *Vars) Keys() []string {
	if v == nil {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Entries returns the contents in insertion order.
func (v *Vars) Entries() Entries {
	if v == nil {
		return nil
	}
	out := make(Entries, 0, len(v.keys))
	for _, k := range v.keys {
		out = append(out, Entry{Key: k, Value: v.values[k]})
	}
	return out
}

// Map returns an unordered copy, handy for style attribute maps.
func (v *Vars) Map() map[string]string {
	out := make(map[string]string, v.Len())
	if v == nil {
		return out
	}
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// CSS renders the declarations as "key: value;" pairs separated by spaces,
// suitable for a style attribute.
func (v *Vars) CSS() string {
	var b strings.Builder
	for i, k := range v.Keys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v.values[k])
		b.WriteByte(';')
	}
	return b.String()
}

// Stylesheet wraps the declarations in a rule for selector, one per line.
// An empty selector means ":root".
func (v *Vars) Stylesheet(selector string) string {
	if strings.TrimSpace(selector) == "" {
		selector = ":root"
	}
	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {\n")
	for _, k := range v.Keys() {
		b.WriteString("  ")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v.values[k])
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// MarshalJSON encodes v as a JSON object in insertion order.
func (v *Vars) MarshalJSON() ([]byte, error) {
	keys := v.Keys()
	return encodeObject(len(keys), func(i int) (string, string) {
		return keys[i], v.values[keys[i]]
	})
}

// UnmarshalJSON decodes a JSON object keeping its key order.
func (v *Vars) UnmarshalJSON(data []byte) error {
	var entries Entries
	if err := entries.UnmarshalJSON(data); err != nil {
		return err
	}
	*v = Vars{values: make(map[string]string, len(entries))}
	for _, e := range entries {
		v.Set(e.Key, e.Value)
	}
	return nil
}

func encodeObject(n int, at func(i int) (string, string)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		k, val := at(i)
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var errNotObject = errors.New("expected a JSON object")

// decodeObject walks the members of a JSON object in document order.
func decodeObject(data []byte, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errNotObject
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
