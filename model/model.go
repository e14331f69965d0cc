package model

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/parmem/parmem/cache"
	"github.com/parmem/parmem/params"
)

// Model is a parametrized numerical problem whose solves are memoized.
// It aggregates its parameter signature from declared sub-objects and
// derives its cache identity from its value-state: name, signature, and
// any registered cache-relevant attributes.
//
// A Model is immutable after New; all methods are safe for concurrent
// use.
type Model struct {
	name     string
	own      params.Spec
	children []params.Parametric
	sig      params.SignatureCache

	region     string
	dispatcher *cache.Dispatcher

	solveFn    SolveFunc
	estimator  ErrorEstimator
	visualizer Visualizer

	attrs  map[string]any
	fpOnce sync.Once
	fp     uint64
	fpErr  error

	logger         *zap.Logger
	estimateNotice sync.Once
}

// Option configures a Model.
type Option func(*Model)

// WithOwnParameters declares parameters directly on the model, merged
// with the children's specs into the aggregated signature.
func WithOwnParameters(spec params.Spec) Option {
	return func(m *Model) {
		m.own = spec
	}
}

// WithChildren declares the ordered sub-objects whose parameter specs
// contribute to the model's signature. The child graph is fixed at
// construction time.
func WithChildren(children ...params.Parametric) Option {
	return func(m *Model) {
		m.children = children
	}
}

// WithCaching selects the region storing this model's memoized results
// and the dispatcher resolving them. Without this option caching is
// disabled and every solve computes.
func WithCaching(dispatcher *cache.Dispatcher, region string) Option {
	return func(m *Model) {
		m.dispatcher = dispatcher
		m.region = region
	}
}

// WithErrorEstimator configures the optional error-estimation
// collaborator.
func WithErrorEstimator(estimator ErrorEstimator) Option {
	return func(m *Model) {
		m.estimator = estimator
	}
}

// WithVisualizer configures the optional visualization collaborator.
func WithVisualizer(visualizer Visualizer) Option {
	return func(m *Model) {
		m.visualizer = visualizer
	}
}

// WithCacheAttribute registers an extra cache-relevant attribute folded
// into the model's value-state fingerprint. Use it for configuration
// that changes solve results but is not part of the parameter
// signature, such as a discretization level.
func WithCacheAttribute(name string, value any) Option {
	return func(m *Model) {
		if m.attrs == nil {
			m.attrs = make(map[string]any)
		}
		m.attrs[name] = value
	}
}

// WithModelLogger sets the model's logger. Defaults to no-op.
func WithModelLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a model around the external solve function.
func New(name string, solve SolveFunc, opts ...Option) (*Model, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty model name", params.ErrParameter)
	}
	if solve == nil {
		return nil, fmt.Errorf("model %q: nil solve function", name)
	}

	m := &Model{
		name:    name,
		solveFn: solve,
		region:  cache.RegionDisabled,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.dispatcher == nil {
		// Caching stays disabled; a dispatcher over an empty registry
		// satisfies the call path without ever resolving a region.
		m.dispatcher = cache.NewDispatcher(cache.NewRegistry())
		m.region = cache.RegionDisabled
	}
	return m, nil
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// OwnParameters returns the parameters declared directly on the model.
func (m *Model) OwnParameters() params.Spec { return m.own }

// ParametricChildren returns the declared sub-objects.
func (m *Model) ParametricChildren() []params.Parametric { return m.children }

// Parameters returns the model's aggregated parameter signature,
// computed on first access and frozen.
func (m *Model) Parameters() (params.Spec, error) {
	return m.sig.Signature(m)
}

// CacheRegion returns the model's region selector.
func (m *Model) CacheRegion() string { return m.region }

// StateFingerprint returns the model's value-state fingerprint. Valid
// only after fingerprint() has succeeded; the solve path guarantees
// that ordering.
func (m *Model) StateFingerprint() uint64 { return m.fp }

// fingerprint digests name, aggregated signature, and registered
// cache-relevant attributes. Computed once, then frozen.
func (m *Model) fingerprint() (uint64, error) {
	m.fpOnce.Do(func() {
		spec, err := m.sig.Signature(m)
		if err != nil {
			m.fpErr = err
			return
		}

		h := xxhash.New()
		h.WriteString(m.name)
		h.Write(spec.CanonicalBytes())

		names := make([]string, 0, len(m.attrs))
		for name := range m.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			content, err := cache.CanonicalBytes(m.attrs[name])
			if err != nil {
				m.fpErr = fmt.Errorf("cache attribute %q: %w", name, err)
				return
			}
			h.WriteString(name)
			h.Write(content)
		}
		m.fp = h.Sum64()
	})
	return m.fp, m.fpErr
}

// Solve solves the model for the given parameter values.
//
// mu accepts every shape params.Parse does: nil, a Mu, a named mapping,
// a flat vector, or a bare scalar. Input is normalized and checked
// against the model's signature before any cache lookup or computation;
// incompatible input fails fast with params.ErrParameter.
//
// When caching is enabled, the result is memoized under the model's
// value-state, the normalized parameter values, and the solve options.
// Callers must not depend on side effects of the solve function
// occurring on a cache hit.
func (m *Model) Solve(ctx context.Context, mu any, opts ...SolveOption) (Solution, error) {
	normalized, options, err := m.prepare(mu, opts)
	if err != nil {
		return Solution{}, err
	}

	if _, err := m.fingerprint(); err != nil {
		return Solution{}, err
	}

	value, err := m.dispatcher.Call(ctx, m, "solve", func(ctx context.Context) (any, error) {
		solution, err := m.solveFn(ctx, normalized, options)
		if err != nil {
			return nil, err
		}
		return solution, nil
	}, normalized, options.ReturnOutput, options.Extra)
	if err != nil {
		return Solution{}, err
	}
	return value.(Solution), nil
}

// Output returns the model output for the given parameter values. It is
// sugar for a solve requesting the output quantity.
func (m *Model) Output(ctx context.Context, mu any, opts ...SolveOption) ([]float64, error) {
	withOutput := make([]SolveOption, 0, len(opts)+1)
	withOutput = append(withOutput, opts...)
	withOutput = append(withOutput, WithOutput())

	solution, err := m.Solve(ctx, mu, withOutput...)
	if err != nil {
		return nil, err
	}
	return solution.Output, nil
}

// EstimateError estimates the error of solution u at the given
// parameter values. It fails with ErrCapability when no estimator is
// configured.
func (m *Model) EstimateError(ctx context.Context, u []float64, mu any) (float64, error) {
	if m.estimator == nil {
		return 0, fmt.Errorf("%w: model %q has no error estimator", ErrCapability, m.name)
	}
	normalized, _, err := m.prepare(mu, nil)
	if err != nil {
		return 0, err
	}
	return m.estimator.EstimateError(ctx, u, normalized, m)
}

// Estimate forwards to EstimateError and emits a one-time notice.
//
// Deprecated: Use EstimateError.
func (m *Model) Estimate(ctx context.Context, u []float64, mu any) (float64, error) {
	m.estimateNotice.Do(func() {
		m.logger.Warn("Estimate is deprecated, use EstimateError",
			zap.String("model", m.name))
	})
	return m.EstimateError(ctx, u, mu)
}

// Visualize renders solution u through the configured visualizer. It
// fails with ErrCapability when none is configured.
func (m *Model) Visualize(ctx context.Context, u []float64, opts map[string]any) error {
	if m.visualizer == nil {
		return fmt.Errorf("%w: model %q has no visualizer", ErrCapability, m.name)
	}
	return m.visualizer.Visualize(ctx, u, m, opts)
}

// prepare normalizes loose parameter input against the model's
// signature and materializes the solve options.
func (m *Model) prepare(mu any, opts []SolveOption) (params.Mu, SolveOptions, error) {
	spec, err := m.Parameters()
	if err != nil {
		return params.Mu{}, SolveOptions{}, err
	}
	normalized, err := params.Parse(mu, spec)
	if err != nil {
		return params.Mu{}, SolveOptions{}, err
	}
	if err := params.AssertCompatible(normalized, spec); err != nil {
		return params.Mu{}, SolveOptions{}, err
	}
	return normalized, buildSolveOptions(opts), nil
}

// Ensure Model satisfies the capability interfaces it is built on.
var (
	_ params.Parametric = (*Model)(nil)
	_ cache.Cacheable   = (*Model)(nil)
)
