// Package database persists run history in SQLite.
//
// Every completed run is stored with its per-link outcomes, enabling the
// history command and cross-run queries such as repeated link failures.
// The driver is modernc.org/sqlite, a pure-Go build that keeps the binary
// free of cgo.
package database
