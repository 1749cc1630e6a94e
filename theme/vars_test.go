package theme

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEntriesUnmarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	var e Entries
	data := `{"surface":"#fff","primary":"#000","surface":"#eee"}`
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Entries{
		{Key: "surface", Value: "#fff"},
		{Key: "primary", Value: "#000"},
		{Key: "surface", Value: "#eee"},
	}
	if !reflect.DeepEqual(e, want) {
		t.Fatalf("Entries = %v, want %v", e, want)
	}
}

func TestEntriesUnmarshalErrors(t *testing.T) {
	t.Parallel()

	for _, data := range []string{`[]`, `{"a":1}`, `"x"`, `{"a":"b"`} {
		var e Entries
		if err := json.Unmarshal([]byte(data), &e); err == nil {
			t.Fatalf("Unmarshal(%s) expected error", data)
		}
	}
}

func TestVarsJSONRoundTripOrder(t *testing.T) {
	t.Parallel()

	v := NewVars()
	v.Set("--z", "1")
	v.Set("--a", "2")
	v.Set("--z", "3")

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"--z":"3","--a":"2"}` {
		t.Fatalf("Marshal = %s", b)
	}

	var back Vars
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.Keys(), []string{"--z", "--a"}) {
		t.Fatalf("Keys after round trip = %v", back.Keys())
	}
}

func TestVarsSetDefault(t *testing.T) {
	t.Parallel()

	var v Vars
	if !v.SetDefault("--a", "1") {
		t.Fatalf("SetDefault on empty Vars returned false")
	}
	if v.SetDefault("--a", "2") {
		t.Fatalf("SetDefault overwrote an existing key")
	}
	if got, _ := v.Get("--a"); got != "1" {
		t.Fatalf("--a = %q", got)
	}
}

func TestVarsRendering(t *testing.T) {
	t.Parallel()

	v := Derive(Entries{{Key: "primary", Value: "#000"}})
	if got := v.CSS(); got != "--mdc-theme-primary: #000; --mdc-theme-on-primary: white;" {
		t.Fatalf("CSS() = %q", got)
	}

	want := ":root {\n  --mdc-theme-primary: #000;\n  --mdc-theme-on-primary: white;\n}\n"
	if got := v.Stylesheet(""); got != want {
		t.Fatalf("Stylesheet() = %q, want %q", got, want)
	}
	if got := v.Stylesheet(`[data-theme="night"]`); got[:20] != `[data-theme="night"]` {
		t.Fatalf("Stylesheet(selector) = %q", got)
	}
}

func TestNilVars(t *testing.T) {
	t.Parallel()

	var v *Vars
	if v.Len() != 0 || v.Keys() != nil || v.Entries() != nil || v.CSS() != "" {
		t.Fatalf("nil Vars should behave as empty")
	}
	if len(v.Map()) != 0 {
		t.Fatalf("nil Vars Map() not empty")
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) != "null" {
		t.Fatalf("Marshal(nil) = %s, %v", b, err)
	}
}

func TestEntriesFromMap(t *testing.T) {
	t.Parallel()

	got := EntriesFromMap(map[string]string{"b": "2", "a": "1"})
	want := Entries{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("EntriesFromMap = %v, want %v", got, want)
	}
}
