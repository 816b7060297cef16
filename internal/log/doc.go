// Package log provides the structured logging setup for trainfetch.
//
// TrimHandler wraps any slog.Handler to mask credential-bearing attributes
// and truncate oversized string values (page sources, extracted text)
// before they reach the log output.
package log
