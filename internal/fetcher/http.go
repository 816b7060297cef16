package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Public CORS proxies tried before a direct request.
//
// The proxies exist for pages that reject requests without browser-like
// origins or that sit behind anti-bot rules a relay happens to clear.
// Direct comes last: when a proxy mangles or caches a page the relayed
// copy is still usually better than nothing, and a page that only direct
// can serve is reached on the final leg of the same pass.
var defaultProxyPrefixes = []string{
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"", // direct request, no proxy
}

// HTTPStrategy fetches a page over plain HTTP, trying each CORS proxy
// prefix in order and falling back to a direct request.
//
// This is the fallback path for pages the rendered strategy cannot serve.
// It sees only the initial HTML, so JavaScript-rendered content is
// invisible to it.
//
// Design decision: the http.Client is injected rather than constructed
// here so tests can point the strategy at an httptest server and share
// connection pooling with the list fetcher.
type HTTPStrategy struct {
	client      *http.Client
	proxies     []string
	userAgent   string
	maxBodySize int64
}

// HTTPOption configures an HTTPStrategy.
type HTTPOption func(*HTTPStrategy)

// WithProxyPrefixes overrides the CORS proxy chain. An empty string entry
// means a direct request.
func WithProxyPrefixes(prefixes []string) HTTPOption {
	return func(s *HTTPStrategy) {
		s.proxies = prefixes
	}
}

// WithUserAgent sets the User-Agent header for page requests.
func WithUserAgent(ua string) HTTPOption {
	return func(s *HTTPStrategy) {
		s.userAgent = ua
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
func WithMaxBodySize(size int64) HTTPOption {
	return func(s *HTTPStrategy) {
		s.maxBodySize = size
	}
}

// NewHTTPStrategy creates the plain-HTTP fetch strategy.
func NewHTTPStrategy(client *http.Client, opts ...HTTPOption) *HTTPStrategy {
	s := &HTTPStrategy{
		client:      client,
		proxies:     defaultProxyPrefixes,
		userAgent:   "trainfetch/1.0",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Strategy.
func (s *HTTPStrategy) Name() string {
	return "direct"
}

// Fetch tries each proxy prefix in order and returns the first non-empty
// 2xx body. One call makes at most one attempt per proxy; retrying across
// attempts is the chain's job.
func (s *HTTPStrategy) Fetch(ctx context.Context, link string) (string, error) {
	var lastErr error
	for _, prefix := range s.proxies {
		target := link
		if prefix != "" {
			target = prefix + url.QueryEscape(link)
		}

		body, err := s.get(ctx, target)
		if err != nil {
			lastErr = err
			continue
		}
		if body != "" {
			return body, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %s", ErrNoContent, link)
}

// get performs one GET and returns the body, limited to maxBodySize.
func (s *HTTPStrategy) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}

// NewHTTPClient builds the shared HTTP client used by the list fetcher and
// the plain-HTTP strategy.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
