package params

import (
	"fmt"
	"sync"
)

// Parametric is the capability interface for objects carrying parameter
// declarations. An object exposes its own directly declared spec plus an
// explicit, ordered list of child objects to aggregate from. Children
// are declared at construction time; changing the child graph after the
// signature has been computed is unsupported.
type Parametric interface {
	// OwnParameters returns the parameters declared directly on the
	// object, not including any children.
	OwnParameters() Spec

	// ParametricChildren returns the ordered child objects whose
	// parameters contribute to the aggregated signature. Nil entries
	// are skipped.
	ParametricChildren() []Parametric
}

// Signature aggregates the union spec of p and its declared children by
// a deterministic depth-first traversal. Shared children are visited
// once. It fails with ErrParameter when a name collides across the graph
// with inconsistent dimensions, or when the child graph contains a
// cycle — a valid object graph built during initialization cannot.
func Signature(p Parametric) (Spec, error) {
	if p == nil {
		return Spec{}, nil
	}

	inStack := make(map[Parametric]bool)
	done := make(map[Parametric]Spec)

	var walk func(p Parametric) (Spec, error)
	walk = func(p Parametric) (Spec, error) {
		if spec, ok := done[p]; ok {
			return spec, nil
		}
		if inStack[p] {
			return Spec{}, fmt.Errorf("%w: cycle in parametric child graph at %v", ErrParameter, p)
		}
		inStack[p] = true

		agg := p.OwnParameters()
		for _, child := range p.ParametricChildren() {
			if child == nil {
				continue
			}
			childSpec, err := walk(child)
			if err != nil {
				return Spec{}, err
			}
			agg, err = agg.Merge(childSpec)
			if err != nil {
				return Spec{}, err
			}
		}

		delete(inStack, p)
		done[p] = agg
		return agg, nil
	}

	return walk(p)
}

// SignatureCache computes an object's aggregated signature once, lazily,
// and freezes the result (including a failure) for the object's
// lifetime. Safe for concurrent use. The zero value is ready to use;
// embed one per parametric object.
type SignatureCache struct {
	once sync.Once
	spec Spec
	err  error
}

// Signature returns the cached aggregate of p, computing it on first
// call. Subsequent calls return the frozen result regardless of any
// later changes to p's child graph.
func (c *SignatureCache) Signature(p Parametric) (Spec, error) {
	c.once.Do(func() {
		c.spec, c.err = Signature(p)
	})
	return c.spec, c.err
}
