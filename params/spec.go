package params

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Spec is an immutable mapping from parameter name to a nonnegative
// vector dimension. The zero value is the empty spec.
//
// Contract:
// - Immutability: a Spec never changes after construction; Merge returns
//   a new Spec.
// - Order: Names returns names in sorted order; this is the declared
//   order used for positional (flat vector) parsing.
type Spec struct {
	dims  map[string]int
	names []string
	total int
}

// NewSpec creates a Spec from a name→dimension map. It fails with
// ErrParameter if a name is empty or a dimension is negative.
func NewSpec(dims map[string]int) (Spec, error) {
	if len(dims) == 0 {
		return Spec{}, nil
	}

	s := Spec{
		dims:  make(map[string]int, len(dims)),
		names: make([]string, 0, len(dims)),
	}
	for name, dim := range dims {
		if strings.TrimSpace(name) == "" {
			return Spec{}, fmt.Errorf("%w: empty parameter name", ErrParameter)
		}
		if dim < 0 {
			return Spec{}, fmt.Errorf("%w: negative dimension %d for %q", ErrParameter, dim, name)
		}
		s.dims[name] = dim
		s.names = append(s.names, name)
		s.total += dim
	}
	sort.Strings(s.names)
	return s, nil
}

// MustSpec is like NewSpec but panics on invalid input. Intended for
// statically known specs in tests and examples.
func MustSpec(dims map[string]int) Spec {
	s, err := NewSpec(dims)
	if err != nil {
		panic(err)
	}
	return s
}

// Dim returns the declared dimension for name.
func (s Spec) Dim(name string) (int, bool) {
	dim, ok := s.dims[name]
	return dim, ok
}

// Names returns the declared parameter names in sorted order.
func (s Spec) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// TotalDim returns the sum of all declared dimensions.
func (s Spec) TotalDim() int {
	return s.total
}

// Len returns the number of declared parameters.
func (s Spec) Len() int {
	return len(s.names)
}

// IsEmpty reports whether the spec declares no parameters.
func (s Spec) IsEmpty() bool {
	return len(s.names) == 0
}

// Equal reports whether two specs declare the same names with the same
// dimensions.
func (s Spec) Equal(other Spec) bool {
	if len(s.dims) != len(other.dims) {
		return false
	}
	for name, dim := range s.dims {
		if od, ok := other.dims[name]; !ok || od != dim {
			return false
		}
	}
	return true
}

// Merge returns the union of two specs. Merging fails with ErrParameter
// if a name shared by both specs disagrees on dimension.
func (s Spec) Merge(other Spec) (Spec, error) {
	if other.IsEmpty() {
		return s, nil
	}
	if s.IsEmpty() {
		return other, nil
	}

	merged := make(map[string]int, len(s.dims)+len(other.dims))
	for name, dim := range s.dims {
		merged[name] = dim
	}
	for name, dim := range other.dims {
		if prev, ok := merged[name]; ok && prev != dim {
			return Spec{}, fmt.Errorf("%w: inconsistent dimension for %q (%d vs %d)",
				ErrParameter, name, prev, dim)
		}
		merged[name] = dim
	}
	return NewSpec(merged)
}

// CanonicalBytes returns a deterministic encoding of the declarations:
// names in sorted order, each as (uvarint length, name bytes, uvarint
// dimension). Two specs produce the same encoding iff they are Equal.
func (s Spec) CanonicalBytes() []byte {
	buf := make([]byte, 0, 16*len(s.names))
	for _, name := range s.names {
		buf = binary.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
		buf = binary.AppendUvarint(buf, uint64(s.dims[name]))
	}
	return buf
}

// String renders the spec as {name: dim, ...} with sorted names.
func (s Spec) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %d", name, s.dims[name])
	}
	b.WriteByte('}')
	return b.String()
}
