package types

import "errors"

// ErrUpstreamUnavailable marks failures of external collaborators (geocoder, request
// store, cache) so callers can tell them apart from domain errors.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")
