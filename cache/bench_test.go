package cache

import (
	"context"
	"fmt"
	"testing"
)

func BenchmarkFingerprintKeyer(b *testing.B) {
	keyer := NewFingerprintKeyer()
	args := []any{[]float64{0.5, 1.5, 2.5}, true, map[string]any{"rtol": 1e-6}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := keyer.Key(42, "solve", args...); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMemoryRegion_Get(b *testing.B) {
	ctx := context.Background()
	region := NewMemoryRegion(0)
	for i := 0; i < 1000; i++ {
		region.Set(ctx, Key(fmt.Sprintf("k%d", i)), []float64{float64(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		region.Get(ctx, Key(fmt.Sprintf("k%d", i%1000)))
	}
}

func BenchmarkDispatcher_Hit(b *testing.B) {
	ctx := context.Background()
	reg := NewRegistry()
	reg.Define("solves", Config{Kind: KindMemory})
	d := NewDispatcher(reg)
	s := &solver{region: "solves", state: 1}

	compute := func(ctx context.Context) (any, error) {
		return []float64{3.14}, nil
	}
	if _, err := d.Call(ctx, s, "solve", compute, 0.5); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Call(ctx, s, "solve", compute, 0.5); err != nil {
			b.Fatal(err)
		}
	}
}
