package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
)

// Key indexes a stored result within a Region. Keys are deterministic:
// two logically equivalent calls always derive equal keys regardless of
// argument object identity.
type Key string

// Canonicalizer is implemented by argument types that provide their own
// deterministic content encoding (params.Mu does). The encoding must
// depend only on value, never on identity.
type Canonicalizer interface {
	CanonicalBytes() []byte
}

// Keyer derives cache keys from an object's value-state fingerprint, a
// method identifier, and the call's argument tuple.
//
// Contract:
// - Determinism: equal inputs must produce equal keys, regardless of map
//   iteration order or argument identity.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives the cache key. It fails with ErrCaching when an
	// argument is not value-comparable.
	Key(state uint64, method string, args ...any) (Key, error)
}

// FingerprintKeyer derives SHA-256 based keys over a tagged binary
// canonical encoding of the argument tuple.
type FingerprintKeyer struct{}

// NewFingerprintKeyer creates a new fingerprint keyer.
func NewFingerprintKeyer() *FingerprintKeyer {
	return &FingerprintKeyer{}
}

// Key derives a deterministic cache key.
// Format: parmem:<state-hex>:<method>:<digest>
// where digest is the first 16 hex characters of SHA-256 over the
// canonical argument encoding.
func (k *FingerprintKeyer) Key(state uint64, method string, args ...any) (Key, error) {
	buf := make([]byte, 0, 64)
	var err error
	for i, arg := range args {
		buf, err = appendCanonical(buf, arg)
		if err != nil {
			return "", fmt.Errorf("%w: argument %d of %q: %v", ErrCaching, i, method, err)
		}
	}

	digest := sha256.Sum256(buf)
	return Key(fmt.Sprintf("parmem:%016x:%s:%s", state, method, hex.EncodeToString(digest[:8]))), nil
}

// CanonicalBytes returns the canonical encoding of a single value, for
// callers that fold argument content into their own fingerprints. It
// fails with ErrCaching when v has no canonical encoding.
func CanonicalBytes(v any) ([]byte, error) {
	buf, err := appendCanonical(nil, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaching, err)
	}
	return buf, nil
}

// Type tags for the canonical encoding. Every encoded value is prefixed
// with its tag so values of different types can never collide.
const (
	tagNil byte = iota
	tagFalse
	tagTrue
	tagInt
	tagUint
	tagFloat
	tagString
	tagFloats
	tagList
	tagMap
	tagCanonical
)

// appendCanonical appends a deterministic encoding of v. Floats are
// encoded by IEEE-754 bit pattern so NaN and -0 are stable; maps are
// encoded in sorted key order.
func appendCanonical(buf []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return append(buf, tagNil), nil

	case bool:
		if x {
			return append(buf, tagTrue), nil
		}
		return append(buf, tagFalse), nil

	case int:
		return binary.AppendVarint(append(buf, tagInt), int64(x)), nil
	case int8:
		return binary.AppendVarint(append(buf, tagInt), int64(x)), nil
	case int16:
		return binary.AppendVarint(append(buf, tagInt), int64(x)), nil
	case int32:
		return binary.AppendVarint(append(buf, tagInt), int64(x)), nil
	case int64:
		return binary.AppendVarint(append(buf, tagInt), x), nil

	case uint:
		return binary.AppendUvarint(append(buf, tagUint), uint64(x)), nil
	case uint8:
		return binary.AppendUvarint(append(buf, tagUint), uint64(x)), nil
	case uint16:
		return binary.AppendUvarint(append(buf, tagUint), uint64(x)), nil
	case uint32:
		return binary.AppendUvarint(append(buf, tagUint), uint64(x)), nil
	case uint64:
		return binary.AppendUvarint(append(buf, tagUint), x), nil

	case float32:
		return binary.BigEndian.AppendUint64(append(buf, tagFloat), math.Float64bits(float64(x))), nil
	case float64:
		return binary.BigEndian.AppendUint64(append(buf, tagFloat), math.Float64bits(x)), nil

	case string:
		buf = binary.AppendUvarint(append(buf, tagString), uint64(len(x)))
		return append(buf, x...), nil

	case []float64:
		buf = binary.AppendUvarint(append(buf, tagFloats), uint64(len(x)))
		for _, f := range x {
			buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
		}
		return buf, nil

	case []any:
		buf = binary.AppendUvarint(append(buf, tagList), uint64(len(x)))
		var err error
		for _, elem := range x {
			buf, err = appendCanonical(buf, elem)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf = binary.AppendUvarint(append(buf, tagMap), uint64(len(keys)))
		var err error
		for _, k := range keys {
			buf = binary.AppendUvarint(buf, uint64(len(k)))
			buf = append(buf, k...)
			buf, err = appendCanonical(buf, x[k])
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	default:
		if c, ok := v.(Canonicalizer); ok {
			content := c.CanonicalBytes()
			buf = binary.AppendUvarint(append(buf, tagCanonical), uint64(len(content)))
			return append(buf, content...), nil
		}
		return nil, fmt.Errorf("type %T has no canonical encoding", v)
	}
}

// Ensure FingerprintKeyer implements Keyer
var _ Keyer = (*FingerprintKeyer)(nil)
