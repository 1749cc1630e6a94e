package theme

import "strings"

// Foreground values placed on derived on-color slots.
const (
	OnLight = "rgba(0, 0, 0, 0.87)"
	OnDark  = "white"
)

// textTone is a Material text emphasis level with its value on light and
// dark surfaces.
type textTone struct {
	name  string
	light string
	dark  string
}

var textTones = [...]textTone{
	{name: "primary", light: "rgba(0, 0, 0, 0.87)", dark: "white"},
	{name: "secondary", light: "rgba(0, 0, 0, 0.54)", dark: "rgba(255, 255, 255, 0.7)"},
	{name: "hint", light: "rgba(0, 0, 0, 0.38)", dark: "rgba(255, 255, 255, 0.5)"},
	{name: "disabled", light: "rgba(0, 0, 0, 0.38)", dark: "rgba(255, 255, 255, 0.5)"},
	{name: "icon", light: "rgba(0, 0, 0, 0.38)", dark: "rgba(255, 255, 255, 0.5)"},
}

type deriveConfig struct {
	textTones bool
}

// DeriveOption tunes Derive.
type DeriveOption func(*deriveConfig)

// WithTextTones also emits --…-text-{primary,secondary,hint,disabled,icon}-on-X
// slots for every surface that gets an on-color.
func WithTextTones() DeriveOption {
	return func(c *deriveConfig) {
		c.textTones = true
	}
}

// Derive normalizes the keys of options and adds an on-color companion for
// every value that parses as a color. Later duplicates overwrite earlier
// values. Companions never replace a key the caller supplied.
func Derive(options Entries, opts ...DeriveOption) *Vars {
	var cfg deriveConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	out := NewVars()
	for _, e := range options {
		out.Set(Normalize(e.Key), e.Value)
	}

	for _, key := range out.Keys() {
		prefix, slot, ok := surfaceSlot(key)
		if !ok {
			continue
		}
		c, ok := ParseColor(out.values[key])
		if !ok {
			continue
		}

		light := IsLight(c)
		out.SetDefault(prefix+"on-"+slot, foreground(light))

		if cfg.textTones {
			for _, tone := range textTones {
				value := tone.dark
				if light {
					value = tone.light
				}
				out.SetDefault(prefix+"text-"+tone.name+"-on-"+slot, value)
			}
		}
	}
	return out
}

// OnKey returns the on-color variable paired with key, or false when key is
// itself a foreground slot or not a custom property.
func OnKey(key string) (string, bool) {
	prefix, slot, ok := surfaceSlot(key)
	if !ok {
		return "", false
	}
	return prefix + "on-" + slot, true
}

func surfaceSlot(key string) (prefix, slot string, ok bool) {
	switch {
	case strings.HasPrefix(key, VarPrefix):
		prefix = VarPrefix
	case strings.HasPrefix(key, "--"):
		prefix = "--"
	default:
		return "", "", false
	}
	slot = key[len(prefix):]
	if slot == "" || strings.HasPrefix(slot, "on-") || isToneSlot(slot) {
		return "", "", false
	}
	return prefix, slot, true
}

// isToneSlot reports whether slot is a text-<tone>-on-X slot. Other text-*
// names, such as text-field-bg, are ordinary surfaces.
func isToneSlot(slot string) bool {
	for _, tone := range textTones {
		if strings.HasPrefix(slot, "text-"+tone.name+"-on-") {
			return true
		}
	}
	return false
}

func foreground(light bool) string {
	if light {
		return OnLight
	}
	return OnDark
}
