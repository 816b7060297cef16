package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The timing values are chosen around typical public-web characteristics:
// plain HTTP fetches resolve quickly, while rendered fetches need headroom
// for JavaScript-heavy pages to finish loading.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "trainfetch"

	// DefaultHTTPTimeout bounds each plain HTTP request, including the
	// links-list download and every CORS-proxied or direct page fetch.
	// 10 seconds is generous for static content; pages that need longer
	// are almost always JavaScript-rendered and handled by the browser path.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultRetryRounds is how many full passes the HTTP fetcher makes
	// over its proxy chain before declaring a link unreachable.
	DefaultRetryRounds = 3

	// DefaultRetryDelay is the pause between retry rounds for the same
	// link. This is a politeness setting toward both the target site and
	// the public CORS proxies, which rate-limit aggressive clients.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultPageLoadTimeout bounds a single rendered page load in the
	// browser. Rendered fetches are slower than plain HTTP because the
	// page's scripts must execute, so this is double the HTTP timeout.
	DefaultPageLoadTimeout = 20 * time.Second

	// DefaultRevealIterations caps how many reveal passes run on a
	// rendered page. Each pass forces hidden elements visible, clicks
	// expanders, and scrolls for lazy content. Most pages stabilize after
	// one pass; three covers nested accordions without unbounded loops.
	DefaultRevealIterations = 3

	// DefaultSettleDelay is how long the renderer waits after a reveal
	// pass for newly triggered content to arrive before re-reading the DOM.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultRecycleAfter is the number of rendered pages processed before
	// the browser session is torn down and relaunched. Long-lived browser
	// processes accumulate memory across many page loads; periodic
	// recycling keeps the footprint flat on large link lists.
	DefaultRecycleAfter = 25

	// DefaultMaxChars caps the stored text per page, counted in runes.
	// A value of 0 disables the cap entirely.
	DefaultMaxChars = 5000

	// DefaultMaxBodySize limits the response body size read from plain
	// HTTP fetches. 5MB is sufficient for most HTML pages while preventing
	// memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies trainfetch in HTTP requests so site
	// operators can recognize the traffic in their logs.
	DefaultUserAgent = "trainfetch/1.0 (+https://github.com/trainfetch/trainfetch)"

	// DefaultOutputFile is the dataset file written in the current
	// directory when no output path is given.
	DefaultOutputFile = "training_data.json"
)

// Config holds all configuration options for trainfetch.
// This struct is populated from CLI flags, the optional config file, and
// the environment, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: a single flat struct instead of nested sub-structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// LinksURL is the remote newline-delimited list of page URLs to
	// process. Required; the run cannot start without it.
	LinksURL string

	// OutputPath is where the generated dataset file is written.
	OutputPath string

	// HTTPTimeout is the per-request timeout for plain HTTP fetches,
	// including the links-list download.
	HTTPTimeout time.Duration

	// RetryRounds is the number of full passes over the HTTP proxy chain
	// before a link is declared unreachable by the HTTP path.
	RetryRounds int

	// RetryDelay is the pause between retry rounds for the same link.
	RetryDelay time.Duration

	// PageLoadTimeout bounds a single rendered page load in the browser.
	PageLoadTimeout time.Duration

	// RevealIterations caps reveal passes per rendered page.
	// 0 disables the reveal pass; the page is read as initially loaded.
	RevealIterations int

	// SettleDelay is the wait after each reveal pass before re-reading
	// the page content.
	SettleDelay time.Duration

	// RecycleAfter is the number of rendered pages processed before the
	// browser session is relaunched.
	RecycleAfter int

	// MaxChars caps the stored text per page, in runes. 0 means unbounded.
	MaxChars int

	// MaxBodySize is the maximum response body size in bytes to read from
	// plain HTTP fetches. Set to 0 to use the default (5MB).
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with plain HTTP requests.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// NoBrowser disables the rendered-fetch path entirely. Every link is
	// fetched over plain HTTP only. Useful in environments without a
	// browser install and for debugging the HTTP fallback path.
	NoBrowser bool

	// JSONReport enables JSON run-summary output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown run-summary output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run summary.
	// When set, the summary is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .trainfetch in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory path for storing the SQLite run history.
	// When empty, run results are not persisted.
	// Defaults to the XDG data directory (~/.local/share/trainfetch on Linux).
	DBDir string

	// SaveHistory indicates whether to record the run in the history
	// database. Automatically set to true when DBDir is configured.
	SaveHistory bool

	// Publish holds the object-storage destination for the dataset.
	// When Endpoint or Bucket is empty, publishing is a no-op.
	Publish PublishConfig

	// NoPublish disables the publish step regardless of Publish settings.
	NoPublish bool
}

// PublishConfig is the object-storage destination for generated datasets.
// Credentials are never read from the config file; they come from the
// environment (see LoadCredentialsFromEnv) so they cannot leak through a
// committed .trainfetch file.
type PublishConfig struct {
	// Endpoint is the S3-compatible endpoint in "host:port" form.
	Endpoint string

	// Bucket is the destination bucket. Created on first publish if absent.
	Bucket string

	// ObjectKey is the remote object name. Defaults to the base name of
	// the output path when empty.
	ObjectKey string

	// AccessKey and SecretKey authenticate against the endpoint.
	AccessKey string
	SecretKey string

	// UseSSL selects https for the endpoint connection.
	UseSSL bool
}

// Configured reports whether a publish destination is set.
func (p PublishConfig) Configured() bool {
	return p.Endpoint != "" && p.Bucket != ""
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults; callers override specific
// values from flags, the config file, and the environment after creation.
//
// Design decision: a constructor instead of relying on zero values, because
// most defaults are non-zero. It also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		OutputPath:       DefaultOutputFile,
		HTTPTimeout:      DefaultHTTPTimeout,
		RetryRounds:      DefaultRetryRounds,
		RetryDelay:       DefaultRetryDelay,
		PageLoadTimeout:  DefaultPageLoadTimeout,
		RevealIterations: DefaultRevealIterations,
		SettleDelay:      DefaultSettleDelay,
		RecycleAfter:     DefaultRecycleAfter,
		MaxChars:         DefaultMaxChars,
		MaxBodySize:      DefaultMaxBodySize,
		UserAgent:        DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for trainfetch.
// On Linux: ~/.local/share/trainfetch
// On macOS: ~/Library/Application Support/trainfetch
// On Windows: %LOCALAPPDATA%\trainfetch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trainfetch.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific sentinel error describing what is invalid, so
// callers can use errors.Is for programmatic handling.
//
// Validation happens once after flag/file/env merging, before any network
// activity, so a misconfigured run fails fast with a clear message.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.LinksURL == "" {
		return ErrNoLinksURL
	}

	if c.OutputPath == "" {
		return ErrNoOutputPath
	}

	// Zero or negative timeouts would cause immediate failures
	if c.HTTPTimeout <= 0 || c.PageLoadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// At least one pass over the proxy chain is required
	if c.RetryRounds <= 0 {
		return ErrInvalidRetries
	}

	// Negative delay is invalid; 0 means no pause between rounds
	if c.RetryDelay < 0 || c.SettleDelay < 0 {
		return ErrInvalidDelay
	}

	// 0 disables the cap; negative makes no sense
	if c.MaxChars < 0 {
		return ErrInvalidMaxChars
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// Recycling after zero pages would relaunch the browser per page
	if c.RecycleAfter <= 0 {
		return ErrInvalidRecycleAfter
	}

	// 0 disables the reveal pass; negative makes no sense
	if c.RevealIterations < 0 {
		return ErrInvalidRevealIterations
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
