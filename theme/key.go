package theme

import (
	"strings"
	"unicode"
)

// VarPrefix is prepended to every normalized theme key. Stylesheets read
// the resulting --mdc-theme-* custom properties, so the spelling is fixed.
const VarPrefix = "--mdc-theme-"

// Normalize converts key into a CSS custom-property name.
// Keys already starting with "--" are returned untouched; anything else is
// dash-cased and prefixed with VarPrefix.
func Normalize(key string) string {
	if strings.HasPrefix(key, "--") {
		return key
	}
	return VarPrefix + DashCase(key)
}

// DashCase lowercases s and separates words with single dashes.
// A word boundary is an uppercase letter following a lowercase letter or
// digit, or any run of non-alphanumeric characters.
func DashCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var prev rune
	pendingDash := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = b.Len() > 0
			prev = r
			continue
		}
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			pendingDash = b.Len() > 0
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}
