package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: package-level sentinel errors rather than fresh error
// instances in Validate(), so callers can use errors.Is() for programmatic
// handling while still getting human-readable messages.
var (
	// ErrNoLinksURL is returned when no links-list URL is configured.
	// The run has nothing to process without one.
	ErrNoLinksURL = errors.New("no links URL specified: provide --url or set links_url in .trainfetch")

	// ErrNoOutputPath is returned when the dataset output path is empty.
	ErrNoOutputPath = errors.New("no output path specified: provide --output")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	// A zero or negative timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry round count is not
	// positive. At least one pass over the fetch strategies is required.
	ErrInvalidRetries = errors.New("invalid retry rounds: must be positive")

	// ErrInvalidDelay is returned when a delay setting is negative.
	// Use 0 for no delay.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxChars is returned when the per-page text cap is
	// negative. Use 0 to disable the cap.
	ErrInvalidMaxChars = errors.New("invalid max chars: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidRecycleAfter is returned when the browser recycle cadence
	// is not positive.
	ErrInvalidRecycleAfter = errors.New("invalid recycle cadence: must be positive")

	// ErrInvalidRevealIterations is returned when the reveal iteration cap
	// is negative. Use 0 to disable the reveal pass.
	ErrInvalidRevealIterations = errors.New("invalid reveal iterations: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one summary format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
