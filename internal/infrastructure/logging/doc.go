// Package logging provides structured logging for the bridge.
//
// It wraps log/slog with a level parsed from system.logLevel and
// default service/version fields. Records go to stderr so that the
// --list listing on stdout stays machine-readable.
//
// Components receive an explicit *Logger (or a small Logger interface
// they declare themselves); there is no process-wide singleton beyond
// the instance created in main.
package logging
