// Package cache provides deterministic memoization of expensive
// computations keyed by object value-state and normalized arguments.
//
// It provides a Region interface with memory (LRU) and persistent
// (SQLite) backends, SHA-256-based key derivation over canonical
// argument encodings, an explicit injectable region registry, and a
// dispatcher that serializes concurrent computations per key.
package cache
