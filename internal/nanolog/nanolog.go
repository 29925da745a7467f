// Package nanolog is the ambient operational logger for nanogit: fetch
// negotiation, pack decode progress, and delta-resolution rounds. It never
// writes to stdout, since several commands (cat-file -p, hash-object -w,
// write-tree, commit-tree) have exact-byte stdout contracts.
package nanolog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger, analogous to logrus's own package-level
// functions used throughout distribution/distribution.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	return l
}

// SetLevel adjusts verbosity, e.g. from a --verbose CLI flag.
func SetLevel(level logrus.Level) {
	Log.SetLevel(level)
}
