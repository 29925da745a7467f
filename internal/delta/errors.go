package delta

import "errors"

// ErrMalformedDelta is returned when a delta instruction stream violates
// the instruction encoding (e.g. a zero-length insert).
var ErrMalformedDelta = errors.New("malformed delta instruction stream")
