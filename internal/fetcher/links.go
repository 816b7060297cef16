package fetcher

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ListFetcher downloads and parses the newline-delimited links list that
// seeds a run.
//
// Unlike page fetches, a list failure is fatal: without the list there is
// nothing to process, and writing an empty dataset over a previous good
// one would silently destroy data downstream.
type ListFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// ListOption configures a ListFetcher.
type ListOption func(*ListFetcher)

// WithListUserAgent sets the User-Agent header for the list request.
func WithListUserAgent(ua string) ListOption {
	return func(f *ListFetcher) {
		f.userAgent = ua
	}
}

// WithListMaxBodySize limits how many bytes of the list are read.
func WithListMaxBodySize(size int64) ListOption {
	return func(f *ListFetcher) {
		f.maxBodySize = size
	}
}

// NewListFetcher creates a ListFetcher using the given HTTP client.
func NewListFetcher(client *http.Client, opts ...ListOption) *ListFetcher {
	f := &ListFetcher{
		client:      client,
		userAgent:   "trainfetch/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the list at listURL and returns its links in file order.
// Lines are whitespace-trimmed; blank lines are dropped. Duplicate lines
// are kept, matching the source list exactly.
func (f *ListFetcher) Fetch(ctx context.Context, listURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s",
			ErrListUnavailable, resp.StatusCode, listURL)
	}

	return parseLinks(io.LimitReader(resp.Body, f.maxBodySize))
}

// parseLinks reads newline-delimited links, trimming whitespace and
// skipping blank lines.
func parseLinks(r io.Reader) ([]string, error) {
	links := make([]string, 0)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		links = append(links, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read links list: %w", err)
	}
	return links, nil
}
