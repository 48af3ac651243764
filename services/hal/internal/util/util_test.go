package util

import (
	"testing"
)

func TestDecode(t *testing.T) {
	type P struct {
		A int    `yaml:"a"`
		B string `yaml:"b"`
	}

	for name, in := range map[string]any{
		"bytes":  []byte(`{"a":1,"b":"x"}`),
		"string": "a: 1\nb: x\n",
		"map":    map[string]any{"a": 1, "b": "x"},
	} {
		var p P
		if err := Decode(in, &p); err != nil {
			t.Fatalf("%s: decode failed: %v", name, err)
		}
		if p.A != 1 || p.B != "x" {
			t.Fatalf("%s: unexpected result: %+v", name, p)
		}
	}
}

func TestDecodeTypeMismatch(t *testing.T) {
	var p struct {
		A int `yaml:"a"`
	}
	if err := Decode(map[string]any{"a": "not-a-number"}, &p); err == nil {
		t.Fatal("expected an error for a string in an int field")
	}
}
