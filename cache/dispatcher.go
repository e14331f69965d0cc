package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/parmem/parmem/observe"
)

// RegionDisabled is the region selector that disables caching for an
// object: every call invokes the computation directly and nothing is
// stored.
const RegionDisabled = ""

// Cacheable is any object whose method results can be memoized.
//
// Contract:
// - CacheRegion returns the name of the region storing the object's
//   results, or RegionDisabled.
// - StateFingerprint is a 64-bit digest of the object's cache-relevant
//   value-state; objects with equal fingerprints are interchangeable for
//   caching purposes.
type Cacheable interface {
	CacheRegion() string
	StateFingerprint() uint64
}

// Func is a deterministic computation dispatched through the cache.
type Func func(ctx context.Context) (any, error)

// Dispatcher resolves memoized calls against a Registry: equivalent
// prior calls are answered from the selected region, misses invoke the
// computation exactly once per distinct key and store the result on
// success.
type Dispatcher struct {
	registry         *Registry
	keyer            Keyer
	group            singleflight.Group
	uncachedFallback bool
	logger           *zap.Logger
	metrics          observe.CallMetrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithKeyer replaces the default fingerprint keyer.
func WithKeyer(k Keyer) DispatcherOption {
	return func(d *Dispatcher) {
		if k != nil {
			d.keyer = k
		}
	}
}

// WithUncachedFallback makes the dispatcher call the computation
// directly, uncached, when key derivation fails, instead of returning
// ErrCaching. The fallback applies only to key derivation; failures of
// the computation itself always propagate.
func WithUncachedFallback() DispatcherOption {
	return func(d *Dispatcher) {
		d.uncachedFallback = true
	}
}

// WithDispatcherLogger sets the dispatcher's logger. Defaults to no-op.
func WithDispatcherLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithCallMetrics sets the metrics sink for dispatched calls. Defaults
// to no-op.
func WithCallMetrics(m observe.CallMetrics) DispatcherOption {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// NewDispatcher creates a dispatcher resolving regions from registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		keyer:    NewFingerprintKeyer(),
		logger:   zap.NewNop(),
		metrics:  observe.NopCallMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call returns a previously stored result for an equivalent prior call
// of method on obj, else computes, stores, and returns.
//
// The key combines obj's value-state fingerprint, the method
// identifier, and the canonical encoding of args; any Canonicalizer
// argument (such as params.Mu) contributes by content, not identity.
// Arguments that are not value-comparable fail with ErrCaching unless
// the uncached fallback is enabled.
//
// Concurrent callers racing on the same key are serialized: exactly one
// authoritative computation runs, and every waiter observes its result
// or its unchanged error. A failed computation is never stored, so an
// identical retry computes again. Callers must not depend on side
// effects of the computation occurring on a hit.
func (d *Dispatcher) Call(ctx context.Context, obj Cacheable, method string, compute Func, args ...any) (any, error) {
	start := time.Now()

	if obj.CacheRegion() == RegionDisabled {
		value, err := compute(ctx)
		d.metrics.RecordCall(ctx, method, observe.OutcomeUncached, time.Since(start), err)
		return value, err
	}

	key, err := d.keyer.Key(obj.StateFingerprint(), method, args...)
	if err != nil {
		if !d.uncachedFallback {
			return nil, err
		}
		d.logger.Warn("cache key derivation failed, calling uncached",
			zap.String("method", method), zap.Error(err))
		value, err := compute(ctx)
		d.metrics.RecordCall(ctx, method, observe.OutcomeUncached, time.Since(start), err)
		return value, err
	}

	region, err := d.registry.Region(obj.CacheRegion())
	if err != nil {
		return nil, err
	}

	if value, ok := region.Get(ctx, key); ok {
		d.metrics.RecordCall(ctx, method, observe.OutcomeHit, time.Since(start), nil)
		return value, nil
	}

	value, err, _ := d.group.Do(string(key), func() (any, error) {
		// A concurrent flight may have stored the result between our
		// miss and entering the flight.
		if value, ok := region.Get(ctx, key); ok {
			return value, nil
		}

		value, err := compute(ctx)
		if err != nil {
			// Never stored: no poisoning of the cache with a failed
			// attempt.
			return nil, err
		}

		if serr := region.Set(ctx, key, value); serr != nil {
			// The computed result is still valid; losing the store is
			// logged, not fatal.
			d.logger.Warn("failed to store computed result",
				zap.String("key", string(key)), zap.Error(serr))
		}
		return value, nil
	})

	d.metrics.RecordCall(ctx, method, observe.OutcomeMiss, time.Since(start), err)
	return value, err
}
