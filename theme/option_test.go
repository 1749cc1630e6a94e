package theme

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Option
		want []string
	}{
		{name: "none", in: Option{}, want: nil},
		{name: "single token", in: Use("primary"), want: []string{"primary"}},
		{name: "blank string", in: Use("   "), want: nil},
		{name: "empty string", in: Use(""), want: nil},
		{name: "space separated dedup", in: Use("primary primary accent"), want: []string{"primary", "accent"}},
		{name: "mixed whitespace", in: Use("\tprimary\n on-primary  "), want: []string{"primary", "on-primary"}},
		{name: "list dedup", in: UseList("a", "b", "a"), want: []string{"a", "b"}},
		{name: "list flattens strings", in: UseList("a b", "", "c a"), want: []string{"a", "b", "c"}},
		{name: "empty list", in: UseList(), want: nil},
		{
			name: "flags",
			in:   UseFlags(Flag{Token: "a", Enabled: true}, Flag{Token: "b"}, Flag{Token: "c", Enabled: true}),
			want: []string{"a", "c"},
		},
		{
			name: "flags skip blank and duplicate",
			in:   UseFlags(Flag{Token: " ", Enabled: true}, Flag{Token: "a", Enabled: true}, Flag{Token: "a", Enabled: true}),
			want: []string{"a"},
		},
		{name: "flags all false", in: UseFlags(Flag{Token: "a"}), want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []Option{
		Use("primary primary accent"),
		UseList("a", "b c", "a"),
		UseFlags(Flag{Token: "x y", Enabled: true}, Flag{Token: "z"}),
		{},
	}
	for _, in := range inputs {
		first := Parse(in)
		second := Parse(UseList(first...))
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Parse not idempotent for %s input: %v then %v", in.Kind(), first, second)
		}
	}
}

func TestParseNeverEmptyTokens(t *testing.T) {
	t.Parallel()

	for _, tok := range Parse(UseList(" ", "\t", "a  b", "")) {
		if tok == "" {
			t.Fatalf("Parse returned an empty token")
		}
	}
}

func TestOptionUnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantKind OptionKind
		want     []string
	}{
		{name: "null", data: `null`, wantKind: OptionNone, want: nil},
		{name: "string", data: `"primary accent"`, wantKind: OptionString, want: []string{"primary", "accent"}},
		{name: "array", data: `["a","b","a"]`, wantKind: OptionList, want: []string{"a", "b"}},
		{name: "array with null", data: `["a",null,"b"]`, wantKind: OptionList, want: []string{"a", "b"}},
		{name: "object", data: `{"a":true,"b":false,"c":true}`, wantKind: OptionFlags, want: []string{"a", "c"}},
		{name: "object keeps order", data: `{"z":1,"a":"yes","m":0,"q":""}`, wantKind: OptionFlags, want: []string{"z", "a"}},
		{name: "object nested values truthy", data: `{"a":{},"b":[],"c":null}`, wantKind: OptionFlags, want: []string{"a", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var o Option
			if err := json.Unmarshal([]byte(tt.data), &o); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.data, err)
			}
			if o.Kind() != tt.wantKind {
				t.Fatalf("Kind() = %s, want %s", o.Kind(), tt.wantKind)
			}
			if got := Parse(o); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestOptionUnmarshalJSONRejects(t *testing.T) {
	t.Parallel()

	for _, data := range []string{`42`, `true`, `[1,2]`} {
		var o Option
		if err := json.Unmarshal([]byte(data), &o); err == nil {
			t.Fatalf("Unmarshal(%s) expected error", data)
		}
	}
}

func TestOptionMarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Option
		want string
	}{
		{in: Option{}, want: `null`},
		{in: Use("a b"), want: `"a b"`},
		{in: UseList(), want: `[]`},
		{in: UseList("a", "b"), want: `["a","b"]`},
		{in: UseFlags(Flag{Token: "b", Enabled: true}, Flag{Token: "a"}), want: `{"b":true,"a":false}`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		if string(got) != tt.want {
			t.Fatalf("Marshal(%s) = %s, want %s", tt.in.Kind(), got, tt.want)
		}
	}
}

func TestClassNames(t *testing.T) {
	t.Parallel()

	if got := ClassNames([]string{"primary", "on-surface"}, ""); got != "mdc-theme--primary mdc-theme--on-surface" {
		t.Fatalf("ClassNames default prefix = %q", got)
	}
	if got := ClassNames([]string{"a"}, "x-"); got != "x-a" {
		t.Fatalf("ClassNames custom prefix = %q", got)
	}
	if got := ClassNames(nil, ""); got != "" {
		t.Fatalf("ClassNames(nil) = %q, want empty", got)
	}
}
