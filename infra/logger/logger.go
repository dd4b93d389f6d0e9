// Package logger provides the zerolog-backed implementation of the core
// logging interface.
package logger

import corelogger "github.com/kilianp07/loadplan/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component writing to stderr, so plan
// output on stdout stays machine readable. APP_ENV=dev switches to console
// output and LOG_LEVEL sets the minimum level.
func New(component string) Logger {
	return NewZerologLogger(component)
}
