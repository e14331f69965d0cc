package model

import (
	"context"
	"encoding/gob"

	"github.com/parmem/parmem/params"
)

func init() {
	gob.Register(Solution{})
}

// Solution is the primary result of solving a model for given parameter
// values. Output is the secondary, typically lower-dimensional quantity
// computed alongside it; it is populated only when requested.
type Solution struct {
	U      []float64
	Output []float64
}

// SolveOptions carries the output request and any solver-specific
// options. Everything in here participates in the cache key.
type SolveOptions struct {
	// ReturnOutput requests the secondary output quantity alongside
	// the solution.
	ReturnOutput bool

	// Extra holds solver-specific options by name. Values must be
	// value-comparable for key derivation.
	Extra map[string]any
}

// SolveFunc is the external numeric solve contract.
//
// Contract:
// - Determinism: a pure function of mu and opts; equal inputs produce
//   value-equal results.
// - No mutation: must not mutate the model it solves for.
// - Output: populated iff opts.ReturnOutput is set.
type SolveFunc func(ctx context.Context, mu params.Mu, opts SolveOptions) (Solution, error)

// ErrorEstimator estimates the error of a computed solution.
type ErrorEstimator interface {
	EstimateError(ctx context.Context, u []float64, mu params.Mu, m *Model) (float64, error)
}

// Visualizer renders a computed solution.
type Visualizer interface {
	Visualize(ctx context.Context, u []float64, m *Model, opts map[string]any) error
}

// SolveOption adjusts a single solve call.
type SolveOption func(*SolveOptions)

// WithOutput requests the model output alongside the solution.
func WithOutput() SolveOption {
	return func(o *SolveOptions) {
		o.ReturnOutput = true
	}
}

// WithSolverOption passes a named solver-specific option. The value
// must be value-comparable; it becomes part of the cache key.
func WithSolverOption(name string, value any) SolveOption {
	return func(o *SolveOptions) {
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[name] = value
	}
}

func buildSolveOptions(opts []SolveOption) SolveOptions {
	var options SolveOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
