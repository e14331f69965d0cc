// Package params declares named numeric parameter slots and normalizes
// loose parameter input into immutable, value-comparable assignments.
//
// It provides Spec (name to dimension declarations), Mu (canonical
// parameter values suitable for cache keying), and signature aggregation
// over graphs of parametric objects.
package params
