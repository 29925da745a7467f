package objects

import "errors"

// Sentinel errors matching the taxonomy in the object model design:
// SliceLength for fixed-width conversions, Parse for malformed on-disk or
// wire framing.
var (
	// ErrSliceLength is returned when a byte slice of the wrong fixed
	// length is converted to an ObjectID.
	ErrSliceLength = errors.New("slice has wrong length")

	// ErrMalformedObject is returned when a raw object buffer's header or
	// size declaration cannot be parsed.
	ErrMalformedObject = errors.New("malformed object")
)
