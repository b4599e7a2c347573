// Package telemetry is the package-level structured-logging shim every
// other package writes through: a single zerolog.Logger, overridable by a
// host application via SetLogger.
package telemetry

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is the logger every package in this module writes through. The
// default writes human-readable console output at info level; call
// SetLogger to redirect into a host application's own logging pipeline.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel).With().Timestamp().Logger()

// SetLogger replaces Logger, e.g. to switch to JSON output or route through
// a host application's own sink.
func SetLogger(l zerolog.Logger) {
	Logger = l
}

// Stage returns a logger with a "stage" field set, used to tag log lines
// with which of the five compile layers (build, lower, plan, ...) emitted
// them.
func Stage(name string) zerolog.Logger {
	return Logger.With().Str("stage", name).Logger()
}
