package cache

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
)

// canonArg is a test argument type providing its own content encoding.
type canonArg struct {
	id      string
	content []float64
}

func (c canonArg) CanonicalBytes() []byte {
	// Content only: id is identity, not value.
	buf := make([]byte, 0, 8*len(c.content))
	for _, x := range c.content {
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(x))
	}
	return buf
}

func TestFingerprintKeyer_Determinism(t *testing.T) {
	keyer := NewFingerprintKeyer()

	tests := []struct {
		name string
		args []any
	}{
		{"no args", nil},
		{"scalars", []any{true, 1, 2.5, "solve"}},
		{"float vector", []any{[]float64{1, 2, 3}}},
		{"nested list", []any{[]any{1, "a", []float64{0.5}}}},
		{"map", []any{map[string]any{"rtol": 1e-6, "maxiter": 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := keyer.Key(42, "solve", tt.args...)
			if err != nil {
				t.Fatalf("Key() = %v", err)
			}
			b, err := keyer.Key(42, "solve", tt.args...)
			if err != nil {
				t.Fatalf("Key() = %v", err)
			}
			if a != b {
				t.Errorf("repeated derivation differs: %s vs %s", a, b)
			}
		})
	}
}

func TestFingerprintKeyer_MapOrderIndependence(t *testing.T) {
	keyer := NewFingerprintKeyer()

	// Build the logically identical map many times; Go map iteration
	// order varies, the key must not.
	var first Key
	for i := 0; i < 50; i++ {
		m := map[string]any{"rtol": 1e-6, "atol": 1e-12, "maxiter": 200, "restart": 30}
		key, err := keyer.Key(1, "solve", m)
		if err != nil {
			t.Fatal(err)
		}
		if i == 0 {
			first = key
			continue
		}
		if key != first {
			t.Fatalf("map iteration order leaked into key: %s vs %s", key, first)
		}
	}
}

func TestFingerprintKeyer_Discrimination(t *testing.T) {
	keyer := NewFingerprintKeyer()

	base, _ := keyer.Key(1, "solve", 0.5)

	variants := []struct {
		name   string
		state  uint64
		method string
		args   []any
	}{
		{"different state", 2, "solve", []any{0.5}},
		{"different method", 1, "output", []any{0.5}},
		{"different value", 1, "solve", []any{0.75}},
		{"int not float", 1, "solve", []any{1}},
		{"string not number", 1, "solve", []any{"0.5"}},
		{"extra arg", 1, "solve", []any{0.5, true}},
	}

	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			key, err := keyer.Key(tt.state, tt.method, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if key == base {
				t.Errorf("variant collides with base key %s", base)
			}
		})
	}
}

func TestFingerprintKeyer_CanonicalizerByContent(t *testing.T) {
	keyer := NewFingerprintKeyer()

	a, err := keyer.Key(7, "solve", canonArg{id: "first", content: []float64{0.5}})
	if err != nil {
		t.Fatal(err)
	}
	b, err := keyer.Key(7, "solve", canonArg{id: "second", content: []float64{0.5}})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("distinct objects with equal content derived different keys")
	}

	c, err := keyer.Key(7, "solve", canonArg{id: "first", content: []float64{0.75}})
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Error("differing content collided")
	}
}

func TestFingerprintKeyer_NonComparableArg(t *testing.T) {
	keyer := NewFingerprintKeyer()

	for _, arg := range []any{
		func() {},
		make(chan int),
		struct{ f *float64 }{},
	} {
		if _, err := keyer.Key(1, "solve", arg); !errors.Is(err, ErrCaching) {
			t.Errorf("Key(%T) = %v, want ErrCaching", arg, err)
		}
	}
}

func TestFingerprintKeyer_SpecialFloats(t *testing.T) {
	keyer := NewFingerprintKeyer()

	nan1, _ := keyer.Key(1, "solve", math.NaN())
	nan2, _ := keyer.Key(1, "solve", math.NaN())
	if nan1 != nan2 {
		t.Error("NaN arguments with identical bit patterns derived different keys")
	}

	pos, _ := keyer.Key(1, "solve", 0.0)
	neg, _ := keyer.Key(1, "solve", math.Copysign(0, -1))
	if pos == neg {
		t.Error("+0 and -0 must derive distinct keys")
	}
}

func TestFingerprintKeyer_KeyLayout(t *testing.T) {
	keyer := NewFingerprintKeyer()

	key, err := keyer.Key(0xdeadbeef, "solve", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(string(key), ":")
	if len(parts) != 4 || parts[0] != "parmem" || parts[2] != "solve" {
		t.Errorf("unexpected key layout: %s", key)
	}
	if parts[1] != "00000000deadbeef" {
		t.Errorf("state fingerprint segment = %s", parts[1])
	}
	if len(parts[3]) != 16 {
		t.Errorf("digest segment length = %d, want 16", len(parts[3]))
	}
}
