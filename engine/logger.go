package engine

import "log"

// Logger is spec.md §9's "pass a logging sink through the dispatcher
// context" re-architecture of a global logger: INFO for auto-selected
// explain columns, DEBUG for each dispatched query body, which is logged by
// its numeric body type only; the query text itself is not logged. No library in the
// retrieved corpus is imported directly for structured logging — see
// DESIGN.md — so the default sink wraps stdlib log, the grounded choice.
type Logger interface {
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type stdLogger struct{}

// NewStdLogger returns the default Logger, backed by the standard library's
// log package.
func NewStdLogger() Logger { return stdLogger{} }

func (stdLogger) Infof(format string, args ...interface{}) {
	log.Printf("INFO "+format, args...)
}

func (stdLogger) Debugf(format string, args ...interface{}) {
	log.Printf("DEBUG "+format, args...)
}

// nopLogger discards everything; used by tests that don't want log output.
type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Debugf(format string, args ...interface{}) {}
