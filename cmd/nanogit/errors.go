package main

import (
	"errors"

	"github.com/fenilsonani/nanogit/internal/fetch"
	"github.com/fenilsonani/nanogit/internal/objects"
	"github.com/fenilsonani/nanogit/internal/pack"
)

// ErrInvalidArgs is returned when a command's flags or positional arguments
// are well-formed cobra-wise but violate a command-specific precondition
// (e.g. cat-file with none of -t/-s/-e/-p, commit-tree with no message).
var ErrInvalidArgs = errors.New("invalid arguments")

// errorKind classifies err against the package-level sentinel taxonomy so
// main can print "<kind>: <message>" instead of cobra's generic "Error:"
// prefix. Falls through to "error" for anything that doesn't match a known
// sentinel.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidArgs):
		return "invalid-args"
	case errors.Is(err, objects.ErrMalformedObject), errors.Is(err, objects.ErrSliceLength):
		return "parse-error"
	case errors.Is(err, fetch.ErrHTTP):
		return "http-error"
	case errors.Is(err, pack.ErrPackDecode):
		return "pack-decode-error"
	case errors.Is(err, pack.ErrDeltaUnresolved):
		return "delta-unresolved"
	default:
		return "error"
	}
}
