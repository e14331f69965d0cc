package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrCaching is the category error for caching failures: key
	// derivation over a non-value-comparable argument, or persistent
	// region I/O. All such failures wrap ErrCaching.
	ErrCaching = errors.New("cache: caching failure")

	// ErrRegionNotDefined is returned when a region name is resolved
	// without a prior Define for it.
	ErrRegionNotDefined = errors.New("cache: region not defined")

	// ErrRegionInUse is returned when Define targets a region that has
	// already been instantiated.
	ErrRegionInUse = errors.New("cache: region already instantiated")
)
