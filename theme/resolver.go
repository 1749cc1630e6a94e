package theme

import (
	"strconv"
	"strings"
)

// Memo stores derived color maps keyed by their serialized input.
// Implementations must be safe for concurrent use.
type Memo interface {
	Get(key string) (*Vars, bool)
	Put(key string, vars *Vars)
}

// Resolver is the entry point used by renderers. A call resolves either
// class tokens or a color map, never both.
type Resolver struct {
	classPrefix string
	derive      []DeriveOption
	memo        Memo
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClassPrefix overrides ClassPrefix for ClassName.
func WithClassPrefix(prefix string) ResolverOption {
	return func(r *Resolver) {
		r.classPrefix = prefix
	}
}

// WithDerive sets options applied to every ResolveColors call.
func WithDerive(opts ...DeriveOption) ResolverOption {
	return func(r *Resolver) {
		r.derive = append(r.derive, opts...)
	}
}

// WithMemo routes ResolveColors through m.
func WithMemo(m Memo) ResolverOption {
	return func(r *Resolver) {
		r.memo = m
	}
}

// NewResolver builds a Resolver.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{classPrefix: ClassPrefix}
	for _, opt := range opts {
		opt(r)
	}
	if r.classPrefix == "" {
		r.classPrefix = ClassPrefix
	}
	return r
}

// ResolveOptions returns the bare tokens of use.
func (r *Resolver) ResolveOptions(use Option) []string {
	return Parse(use)
}

// ClassName returns the prefixed class attribute value for use.
func (r *Resolver) ClassName(use Option) string {
	return ClassNames(Parse(use), r.classPrefix)
}

// ResolveColors normalizes options and derives on-colors. extra options are
// applied after the resolver defaults.
func (r *Resolver) ResolveColors(options Entries, extra ...DeriveOption) *Vars {
	opts := r.derive
	if len(extra) > 0 {
		opts = append(append([]DeriveOption(nil), r.derive...), extra...)
	}
	if r.memo == nil {
		return Derive(options, opts...)
	}

	key := memoKey(options, opts)
	if cached, ok := r.memo.Get(key); ok {
		return cached.Clone()
	}
	vars := Derive(options, opts...)
	r.memo.Put(key, vars.Clone())
	return vars
}

// ResolveStyle derives colors from options and merges them over style.
func (r *Resolver) ResolveStyle(options, style Entries, extra ...DeriveOption) *Vars {
	return MergeStyle(style, r.ResolveColors(options, extra...))
}

// MergeStyle combines an inline style with derived theme colors. Style
// entries keep their order and come first; on a key collision the theme
// color wins. Style keys are used verbatim.
func MergeStyle(style Entries, colors *Vars) *Vars {
	out := NewVars()
	for _, e := range style {
		out.Set(e.Key, e.Value)
	}
	for _, e := range colors.Entries() {
		out.Set(e.Key, e.Value)
	}
	return out
}

// Clone returns an independent copy of v.
func (v *Vars) Clone() *Vars {
	out := NewVars()
	for _, e := range v.Entries() {
		out.Set(e.Key, e.Value)
	}
	return out
}

// memoKey serializes the derivation input without loss: every field is
// length-prefixed raw bytes, so distinct inputs never share a key.
func memoKey(options Entries, opts []DeriveOption) string {
	var cfg deriveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var b strings.Builder
	if cfg.textTones {
		b.WriteString("t1;")
	} else {
		b.WriteString("t0;")
	}
	b.WriteString(strconv.Itoa(len(options)))
	b.WriteByte(';')
	for _, e := range options {
		writeField(&b, e.Key)
		writeField(&b, e.Value)
	}
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
