// Package model wires parameter normalization and the memoized
// dispatcher around an external numeric solve function.
//
// A Model aggregates its parameter signature from declared sub-objects,
// validates loose parameter input before any expensive work, and
// resolves solves through a cache region so equivalent calls are
// answered without recomputation. Error estimation and visualization
// are optional collaborator capabilities.
package model
