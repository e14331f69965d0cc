package model

import "errors"

// ErrCapability is returned when an optional capability (error
// estimation, visualization) is invoked on a model with no collaborator
// configured for it. Distinct from parameter and caching failures so
// callers can branch on it.
var ErrCapability = errors.New("model: optional capability not configured")
