package params

import (
	"errors"
	"testing"
)

// TestNewSpec_Validation tests spec construction rules.
func TestNewSpec_Validation(t *testing.T) {
	tests := []struct {
		name    string
		dims    map[string]int
		wantErr bool
	}{
		{"empty spec", nil, false},
		{"single parameter", map[string]int{"diffusion": 1}, false},
		{"zero dimension allowed", map[string]int{"flag": 0}, false},
		{"multiple parameters", map[string]int{"diffusion": 2, "advection": 3}, false},
		{"negative dimension", map[string]int{"diffusion": -1}, true},
		{"empty name", map[string]int{"": 1}, true},
		{"blank name", map[string]int{"  ": 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpec(tt.dims)
			if tt.wantErr {
				if !errors.Is(err, ErrParameter) {
					t.Errorf("NewSpec(%v) = %v, want ErrParameter", tt.dims, err)
				}
			} else if err != nil {
				t.Errorf("NewSpec(%v) = %v, want nil", tt.dims, err)
			}
		})
	}
}

func TestSpec_Accessors(t *testing.T) {
	s := MustSpec(map[string]int{"diffusion": 2, "advection": 3, "reaction": 1})

	if got := s.TotalDim(); got != 6 {
		t.Errorf("TotalDim() = %d, want 6", got)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
	if s.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty spec")
	}

	// Names must come back sorted, independent of map iteration order.
	want := []string{"advection", "diffusion", "reaction"}
	names := s.Names()
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	if dim, ok := s.Dim("advection"); !ok || dim != 3 {
		t.Errorf("Dim(advection) = %d, %v, want 3, true", dim, ok)
	}
	if _, ok := s.Dim("missing"); ok {
		t.Error("Dim(missing) reported present")
	}
}

func TestSpec_Merge(t *testing.T) {
	tests := []struct {
		name    string
		a, b    map[string]int
		want    map[string]int
		wantErr bool
	}{
		{
			name: "disjoint",
			a:    map[string]int{"diffusion": 1},
			b:    map[string]int{"advection": 2},
			want: map[string]int{"diffusion": 1, "advection": 2},
		},
		{
			name: "shared name agreeing dimension",
			a:    map[string]int{"diffusion": 1, "advection": 2},
			b:    map[string]int{"diffusion": 1},
			want: map[string]int{"diffusion": 1, "advection": 2},
		},
		{
			name: "empty left",
			a:    nil,
			b:    map[string]int{"diffusion": 1},
			want: map[string]int{"diffusion": 1},
		},
		{
			name: "empty right",
			a:    map[string]int{"diffusion": 1},
			b:    nil,
			want: map[string]int{"diffusion": 1},
		},
		{
			name:    "conflicting dimension",
			a:       map[string]int{"diffusion": 1},
			b:       map[string]int{"diffusion": 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustSpec(tt.a).Merge(MustSpec(tt.b))
			if tt.wantErr {
				if !errors.Is(err, ErrParameter) {
					t.Fatalf("Merge() = %v, want ErrParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Merge() = %v, want nil", err)
			}
			if !got.Equal(MustSpec(tt.want)) {
				t.Errorf("Merge() = %s, want %s", got, MustSpec(tt.want))
			}
		})
	}
}

func TestSpec_Equal(t *testing.T) {
	a := MustSpec(map[string]int{"diffusion": 1, "advection": 2})
	b := MustSpec(map[string]int{"advection": 2, "diffusion": 1})
	c := MustSpec(map[string]int{"diffusion": 2, "advection": 2})

	if !a.Equal(b) {
		t.Error("specs with identical declarations compare unequal")
	}
	if a.Equal(c) {
		t.Error("specs with differing dimensions compare equal")
	}
	if !(Spec{}).Equal(Spec{}) {
		t.Error("empty specs compare unequal")
	}
}
