package fetcher

import "errors"

// Fetch errors shared across retrieval strategies.
//
// Design decision: package-level sentinel errors so the chain and its
// callers can use errors.Is() to distinguish "this strategy can never
// work" from "this attempt failed" without string matching.
var (
	// ErrStrategyUnavailable signals that a strategy cannot serve any
	// link in this run, not just the current one. The chain disables the
	// strategy permanently instead of retrying it. The browser strategy
	// returns this when no browser can be launched.
	ErrStrategyUnavailable = errors.New("fetch strategy unavailable")

	// ErrNoContent is returned when every strategy and retry round was
	// exhausted without producing page content.
	ErrNoContent = errors.New("no content retrieved")

	// ErrListUnavailable is returned when the links list itself cannot be
	// downloaded. Unlike a single page failure, this aborts the whole run.
	ErrListUnavailable = errors.New("links list unavailable")
)
