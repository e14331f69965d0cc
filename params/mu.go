package params

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Mu is an immutable assignment of numeric vectors to parameter names.
// It is created only through Parse and never mutates afterwards.
//
// Contract:
// - Value semantics: Equal and Fingerprint depend only on content, never
//   on object identity, so Mu is safe to use as a cache-key component.
// - Isolation: accessors copy; callers can never alias internal storage.
type Mu struct {
	values map[string][]float64
	names  []string
}

// newMu builds a Mu from values, copying every vector. Callers own the
// validation; this only canonicalizes storage.
func newMu(values map[string][]float64) Mu {
	if len(values) == 0 {
		return Mu{}
	}
	mu := Mu{
		values: make(map[string][]float64, len(values)),
		names:  make([]string, 0, len(values)),
	}
	for name, vec := range values {
		v := make([]float64, len(vec))
		copy(v, vec)
		mu.values[name] = v
		mu.names = append(mu.names, name)
	}
	sort.Strings(mu.names)
	return mu
}

// Get returns a copy of the vector assigned to name.
func (mu Mu) Get(name string) ([]float64, bool) {
	vec, ok := mu.values[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(vec))
	copy(out, vec)
	return out, true
}

// Names returns the assigned parameter names in sorted order.
func (mu Mu) Names() []string {
	out := make([]string, len(mu.names))
	copy(out, mu.names)
	return out
}

// Len returns the number of assigned parameters.
func (mu Mu) Len() int {
	return len(mu.names)
}

// IsEmpty reports whether no parameters are assigned.
func (mu Mu) IsEmpty() bool {
	return len(mu.names) == 0
}

// Equal reports content equality: same names, same vectors. Float
// comparison is by IEEE-754 bit pattern, so NaN equals NaN and
// -0 differs from +0, matching CanonicalBytes.
func (mu Mu) Equal(other Mu) bool {
	if len(mu.values) != len(other.values) {
		return false
	}
	for name, vec := range mu.values {
		ovec, ok := other.values[name]
		if !ok || len(ovec) != len(vec) {
			return false
		}
		for i := range vec {
			if math.Float64bits(vec[i]) != math.Float64bits(ovec[i]) {
				return false
			}
		}
	}
	return true
}

// CanonicalBytes returns a deterministic encoding of the assignment:
// names in sorted order, each as (uvarint length, name bytes, uvarint
// vector length, big-endian IEEE-754 bits per component). Two Mu values
// produce the same encoding iff they are Equal.
func (mu Mu) CanonicalBytes() []byte {
	buf := make([]byte, 0, 16+24*len(mu.names))
	for _, name := range mu.names {
		buf = binary.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
		vec := mu.values[name]
		buf = binary.AppendUvarint(buf, uint64(len(vec)))
		for _, x := range vec {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(x))
		}
	}
	return buf
}

// Fingerprint returns a 64-bit content hash of the assignment.
func (mu Mu) Fingerprint() uint64 {
	return xxhash.Sum64(mu.CanonicalBytes())
}

// String renders the assignment as {name: [v...], ...} with sorted names.
func (mu Mu) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range mu.names {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", name, mu.values[name])
	}
	b.WriteByte('}')
	return b.String()
}
