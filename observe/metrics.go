package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies a memoized call for metric attribution.
type Outcome string

const (
	// OutcomeHit means a stored result was returned without invoking
	// the computation.
	OutcomeHit Outcome = "hit"

	// OutcomeMiss means the computation was invoked and its result
	// stored.
	OutcomeMiss Outcome = "miss"

	// OutcomeUncached means the call bypassed the cache (caching
	// disabled, or explicit fallback after a key-derivation failure).
	OutcomeUncached Outcome = "uncached"
)

// CallMetrics records memoized-call metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type CallMetrics interface {
	// RecordCall records one dispatched call with its outcome, total
	// duration, and error status.
	RecordCall(ctx context.Context, method string, outcome Outcome, duration time.Duration, err error)
}

// callMetrics is the OpenTelemetry-backed implementation of CallMetrics.
type callMetrics struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewCallMetrics creates a CallMetrics recording through the given
// meter.
func NewCallMetrics(meter metric.Meter) (CallMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"memo.call.total",
		metric.WithDescription("Total number of memoized calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"memo.call.errors",
		metric.WithDescription("Total number of failed memoized calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"memo.call.duration_ms",
		metric.WithDescription("Memoized call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &callMetrics{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordCall records metrics for one dispatched call.
func (m *callMetrics) RecordCall(ctx context.Context, method string, outcome Outcome, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("memo.method", method),
		attribute.String("memo.outcome", string(outcome)),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// NopCallMetrics returns a CallMetrics that records nothing.
func NopCallMetrics() CallMetrics {
	return nopCallMetrics{}
}

type nopCallMetrics struct{}

func (nopCallMetrics) RecordCall(context.Context, string, Outcome, time.Duration, error) {}
