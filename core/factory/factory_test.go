package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct{ A int }

type sampleConf struct {
	A int `json:"a"`
}

func decodeSample(conf map[string]any) (*sample, error) {
	var c sampleConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sample{A: c.A}, nil
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", decodeSample); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
}

// Environment overrides deliver numbers as strings.
func TestDecode_WeakStrings(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"a": "42"}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	assert.Equal(t, 42, c.A)
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", nil); err == nil {
		t.Fatal("expected duplicate error")
	}
	_, err := reg.Create(ModuleConfig{Type: "y"})
	if err == nil {
		t.Fatal("expected unknown type error")
	}
	assert.Contains(t, err.Error(), "x")
	assert.Equal(t, []string{"x"}, reg.Names())
}
