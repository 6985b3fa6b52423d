// Package logging provides the narrow logging capability shared by every
// core package. Callers depend on the Logger interface only; nothing in
// this module imports zerolog directly outside of this package.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the capability set core packages are allowed to depend on:
// an info line for user-visible progress, a verbose line for diagnostic
// detail, and an error line that always carries the underlying error.
//
// A nil Logger is never passed between core packages; use Nop() instead.
type Logger interface {
	Info(msg string, kv ...any)
	Verbose(msg string, kv ...any)
	Error(err error, msg string, kv ...any)
}

// zlogger adapts a zerolog.Logger to the Logger interface.
type zlogger struct {
	l       zerolog.Logger
	verbose bool
}

// New returns a Logger that writes to w. Verbose lines are suppressed
// unless verbose is true, matching the CLI's --verbose flag (spec §6).
func New(w io.Writer, verbose bool) Logger {
	return &zlogger{
		l:       zerolog.New(w).With().Timestamp().Logger(),
		verbose: verbose,
	}
}

func (z *zlogger) Info(msg string, kv ...any) {
	withFields(z.l.Info(), kv).Msg(msg)
}

func (z *zlogger) Verbose(msg string, kv ...any) {
	if !z.verbose {
		return
	}
	withFields(z.l.Debug(), kv).Msg(msg)
}

func (z *zlogger) Error(err error, msg string, kv ...any) {
	withFields(z.l.Error().Err(err), kv).Msg(msg)
}

// withFields applies a flat key/value list (key0, val0, key1, val1, ...)
// to an in-progress zerolog event. Malformed (odd-length) lists drop their
// trailing key.
func withFields(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}

// nopLogger discards everything. Used by tests and by any caller that
// doesn't want progress output.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)          {}
func (nopLogger) Verbose(string, ...any)       {}
func (nopLogger) Error(error, string, ...any)  {}

// Nop returns a Logger that discards all output.
func Nop() Logger { return nopLogger{} }
