// Package observe provides the ambient observability used by the
// memoization engine: zap logger constructors and OpenTelemetry metric
// instruments for memoized-call accounting.
//
// No exporter is wired here; hosts install their own MeterProvider and
// logger sinks.
package observe
