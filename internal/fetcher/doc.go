// Package fetcher retrieves remote content for the preprocessing run.
//
// It provides the links-list download (ListFetcher), the plain-HTTP page
// strategy with its CORS-proxy chain (HTTPStrategy), and the Chain that
// orders strategies, retries them over multiple rounds, and permanently
// disables strategies that report themselves unavailable.
//
// A failed page fetch is never fatal to the run; a failed list fetch is.
package fetcher
