package factory

import "testing"

type sample struct{ A int }

type sampleConf struct {
	A int    `json:"a"`
	B string `json:"b"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
	if !reg.Has("s") || reg.Has("t") {
		t.Fatalf("unexpected Has result")
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("y", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"greedy", "exhaustive", "lp-band"} {
		if err := reg.Register(n, func(map[string]any) (int, error) { return 0, nil }); err != nil {
			t.Fatalf("register %s: %v", n, err)
		}
	}
	got := reg.Names()
	want := []string{"exhaustive", "greedy", "lp-band"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names = %v, want %v", got, want)
		}
	}
}

func TestDecodeOverlaysAndConvertsStrings(t *testing.T) {
	c := sampleConf{A: 1, B: "keep"}
	if err := Decode(map[string]any{"a": "42"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.A != 42 || c.B != "keep" {
		t.Fatalf("unexpected result %+v", c)
	}
	if err := Decode(map[string]any{"nope": 1}, &c); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
