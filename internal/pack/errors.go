package pack

import "errors"

var (
	// ErrPackDecode is returned when a pack-file's binary framing cannot be
	// parsed (bad header, truncated object, corrupt zlib stream).
	ErrPackDecode = errors.New("pack decode error")

	// ErrDeltaUnresolved is returned when one or more ref-delta entries in
	// a pack could never find their base object, even after the
	// fixpoint resolution loop stops making progress.
	ErrDeltaUnresolved = errors.New("unresolved delta")
)
