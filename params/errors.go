package params

import "errors"

// ErrParameter is the category error for malformed or incompatible
// parameter input: unknown names, wrong vector lengths, inconsistent
// dimensions across aggregated specs, or a cycle in a parametric child
// graph. All failures returned by this package wrap ErrParameter and can
// be matched with errors.Is.
var ErrParameter = errors.New("params: invalid parameter input")
