package attrs

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"themeplane/theme"
)

func TestClass(t *testing.T) {
	t.Parallel()

	r := theme.NewResolver()
	got := Class(r, theme.UseList("primary", "primary", "dark"))
	if got["class"] != "mdc-theme--primary mdc-theme--dark" {
		t.Fatalf("class = %v", got["class"])
	}
	if empty := Class(r, theme.Option{}); len(empty) != 0 {
		t.Fatalf("empty option produced %v", empty)
	}

	custom := Class(theme.NewResolver(theme.WithClassPrefix("x-")), theme.Use("a"))
	if custom["class"] != "x-a" {
		t.Fatalf("class with prefix = %v", custom["class"])
	}
}

func TestStyle(t *testing.T) {
	t.Parallel()

	vars := theme.Derive(theme.Entries{{Key: "primary", Value: "#000000"}})
	got := Style(vars)
	want := "--mdc-theme-primary: #000000; --mdc-theme-on-primary: white;"
	if got["style"] != want {
		t.Fatalf("style = %v, want %q", got["style"], want)
	}
	if empty := Style(theme.NewVars()); len(empty) != 0 {
		t.Fatalf("empty vars produced %v", empty)
	}
}

func TestThemed(t *testing.T) {
	t.Parallel()

	r := theme.NewResolver()
	got := Themed(r,
		theme.Use("surface"),
		theme.Entries{{Key: "surface", Value: "white"}},
		theme.Entries{{Key: "padding", Value: "4px"}},
	)
	if got["class"] != "mdc-theme--surface" {
		t.Fatalf("class = %v", got["class"])
	}
	want := "padding: 4px; --mdc-theme-surface: white; --mdc-theme-on-surface: rgba(0, 0, 0, 0.87);"
	if got["style"] != want {
		t.Fatalf("style = %v, want %q", got["style"], want)
	}
}

func TestStylesheet(t *testing.T) {
	t.Parallel()

	vars := theme.NewVars()
	vars.Set("--x", "url(</style><script>)")

	var buf bytes.Buffer
	if err := Stylesheet(".dark", vars).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<style>\n.dark {\n") || !strings.HasSuffix(out, "}\n</style>") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Count(out, "</style>") != 1 {
		t.Fatalf("closing tag leaked from value: %q", out)
	}
}
