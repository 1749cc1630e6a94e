package theme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OptionKind identifies which shape an Option was given in.
type OptionKind int

const (
	OptionNone OptionKind = iota
	OptionString
	OptionList
	OptionFlags
)

func (k OptionKind) String() string {
	switch k {
	case OptionNone:
		return "none"
	case OptionString:
		return "string"
	case OptionList:
		return "list"
	case OptionFlags:
		return "flags"
	default:
		return fmt.Sprintf("OptionKind(%d)", int(k))
	}
}

// Flag is one entry of a token→enabled mapping.
type Flag struct {
	Token   string
	Enabled bool
}

// Option is a theme option value in one of the accepted shapes: a single
// (possibly space separated) string, a list of strings, or an ordered set of
// token flags. The zero value is OptionNone.
type Option struct {
	kind  OptionKind
	str   string
	list  []string
	flags []Flag
}

// Use returns a string option. Whitespace separates multiple tokens.
func Use(s string) Option {
	return Option{kind: OptionString, str: s}
}

// UseList returns a list option.
func UseList(items ...string) Option {
	return Option{kind: OptionList, list: append([]string(nil), items...)}
}

// UseFlags returns a mapping option. Flags are evaluated in the given order.
func UseFlags(flags ...Flag) Option {
	return Option{kind: OptionFlags, flags: append([]Flag(nil), flags...)}
}

// Kind reports the shape of o.
func (o Option) Kind() OptionKind {
	return o.kind
}

// Parse flattens o into bare theme tokens. The result never contains empty
// strings or duplicates and keeps the order in which tokens were first seen.
func Parse(o Option) []string {
	p := tokenSet{seen: make(map[string]struct{})}
	switch o.kind {
	case OptionString:
		p.addString(o.str)
	case OptionList:
		for _, item := range o.list {
			p.addString(item)
		}
	case OptionFlags:
		for _, f := range o.flags {
			if f.Enabled {
				p.addString(f.Token)
			}
		}
	}
	return p.out
}

type tokenSet struct {
	seen map[string]struct{}
	out  []string
}

func (p *tokenSet) addString(s string) {
	for _, tok := range strings.Fields(s) {
		if _, dup := p.seen[tok]; dup {
			continue
		}
		p.seen[tok] = struct{}{}
		p.out = append(p.out, tok)
	}
}

// ClassPrefix is the default prefix for class names built from tokens.
const ClassPrefix = "mdc-theme--"

// ClassNames prefixes every token and joins them into a class attribute
// value. An empty prefix falls back to ClassPrefix.
func ClassNames(tokens []string, prefix string) string {
	if prefix == "" {
		prefix = ClassPrefix
	}
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(prefix)
		b.WriteString(tok)
	}
	return b.String()
}

// UnmarshalJSON picks the variant from the JSON shape: null, string, array
// of strings, or an object of token flags. Object values follow JavaScript
// truthiness: true, non-zero numbers and non-empty strings enable a token.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = Option{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode option string: %w", err)
		}
		*o = Use(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode option list: %w", err)
		}
		items := make([]string, 0, len(raw))
		for i, item := range raw {
			if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
				continue
			}
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return fmt.Errorf("decode option list item %d: %w", i, err)
			}
			items = append(items, s)
		}
		*o = Option{kind: OptionList, list: items}
	case '{':
		var flags []Flag
		err := decodeObject(trimmed, func(key string, value json.RawMessage) error {
			flags = append(flags, Flag{Token: key, Enabled: truthy(value)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("decode option flags: %w", err)
		}
		*o = Option{kind: OptionFlags, flags: flags}
	default:
		return fmt.Errorf("decode option: unsupported JSON value %q", truncate(string(trimmed), 32))
	}
	return nil
}

// MarshalJSON writes o back in the shape it was built from.
func (o Option) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case OptionString:
		return json.Marshal(o.str)
	case OptionList:
		if o.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.list)
	case OptionFlags:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range o.flags {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Token)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if f.Enabled {
				buf.WriteString("true")
			} else {
				buf.WriteString("false")
			}
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

func truthy(value json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		// arrays and objects are truthy in JavaScript
		return true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
