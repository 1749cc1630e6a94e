// Package attrs adapts resolved themes to templ attributes and components.
package attrs

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"themeplane/theme"
)

// Class returns a class attribute for the tokens in use. Empty input yields
// no attribute at all.
func Class(r *theme.Resolver, use theme.Option) templ.Attributes {
	out := templ.Attributes{}
	if name := r.ClassName(use); name != "" {
		out["class"] = name
	}
	return out
}

// Style returns a style attribute holding the custom properties in vars.
func Style(vars *theme.Vars) templ.Attributes {
	out := templ.Attributes{}
	if css := vars.CSS(); css != "" {
		out["style"] = css
	}
	return out
}

// Themed resolves both paths at once: class tokens from use, and style
// from options merged over the caller's inline style.
func Themed(r *theme.Resolver, use theme.Option, options, style theme.Entries, opts ...theme.DeriveOption) templ.Attributes {
	out := Class(r, use)
	for k, v := range Style(r.ResolveStyle(options, style, opts...)) {
		out[k] = v
	}
	return out
}

// Stylesheet renders vars as a <style> element with a single rule for
// selector (":root" when empty).
func Stylesheet(selector string, vars *theme.Vars) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := strings.ReplaceAll(vars.Stylesheet(selector), "</", `<\/`)
		if _, err := io.WriteString(w, "<style>\n"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</style>")
		return err
	})
}
