package params

import "fmt"

// Parse normalizes loose parameter input into a canonical Mu for spec.
//
// Accepted inputs:
//   - nil: valid only when spec is empty.
//   - Mu: returned unchanged when compatible with spec.
//   - map[string][]float64 or map[string]float64: named assignment; every
//     declared name must be present with the declared dimension.
//   - []float64: flat vector assigned positionally over spec.Names()
//     order; total length must equal spec.TotalDim().
//   - float64 or int: shorthand for a one-element flat vector.
//
// All failures wrap ErrParameter: unknown name, missing name, named
// vector length disagreeing with its declared dimension, flat vector
// total length disagreeing with the spec's total dimension, or an
// unsupported input type.
func Parse(input any, spec Spec) (Mu, error) {
	switch v := input.(type) {
	case nil:
		if !spec.IsEmpty() {
			return Mu{}, fmt.Errorf("%w: no values given for non-empty spec %s", ErrParameter, spec)
		}
		return Mu{}, nil

	case Mu:
		if err := AssertCompatible(v, spec); err != nil {
			return Mu{}, err
		}
		return v, nil

	case map[string][]float64:
		return parseNamed(v, spec)

	case map[string]float64:
		named := make(map[string][]float64, len(v))
		for name, x := range v {
			named[name] = []float64{x}
		}
		return parseNamed(named, spec)

	case []float64:
		return parseFlat(v, spec)

	case float64:
		return parseFlat([]float64{v}, spec)

	case int:
		return parseFlat([]float64{float64(v)}, spec)

	default:
		return Mu{}, fmt.Errorf("%w: unsupported input type %T", ErrParameter, input)
	}
}

func parseNamed(values map[string][]float64, spec Spec) (Mu, error) {
	for name, vec := range values {
		dim, ok := spec.Dim(name)
		if !ok {
			return Mu{}, fmt.Errorf("%w: unknown parameter %q", ErrParameter, name)
		}
		if len(vec) != dim {
			return Mu{}, fmt.Errorf("%w: parameter %q has length %d, expected %d",
				ErrParameter, name, len(vec), dim)
		}
	}
	for _, name := range spec.Names() {
		if _, ok := values[name]; !ok {
			return Mu{}, fmt.Errorf("%w: missing parameter %q", ErrParameter, name)
		}
	}
	return newMu(values), nil
}

func parseFlat(flat []float64, spec Spec) (Mu, error) {
	if len(flat) != spec.TotalDim() {
		return Mu{}, fmt.Errorf("%w: flat vector has length %d, spec %s requires %d",
			ErrParameter, len(flat), spec, spec.TotalDim())
	}
	values := make(map[string][]float64, spec.Len())
	offset := 0
	for _, name := range spec.Names() {
		dim, _ := spec.Dim(name)
		values[name] = flat[offset : offset+dim]
		offset += dim
	}
	return newMu(values), nil
}

// AssertCompatible fails with ErrParameter unless every name declared in
// spec is present in mu with matching dimension. It is called before any
// computation so incompatible input fails fast, with no partial work.
func AssertCompatible(mu Mu, spec Spec) error {
	for _, name := range spec.Names() {
		dim, _ := spec.Dim(name)
		vec, ok := mu.values[name]
		if !ok {
			return fmt.Errorf("%w: values missing parameter %q declared in spec %s",
				ErrParameter, name, spec)
		}
		if len(vec) != dim {
			return fmt.Errorf("%w: parameter %q has length %d, expected %d",
				ErrParameter, name, len(vec), dim)
		}
	}
	return nil
}
