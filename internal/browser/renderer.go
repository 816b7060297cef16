package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/trainfetch/trainfetch/internal/fetcher"
)

// Renderer is the rendered-fetch strategy: it loads a page in headless
// Chromium, runs the reveal passes, and returns the post-JavaScript DOM.
//
// This is the preferred strategy in the fetch chain because it sees
// client-rendered and initially hidden content that plain HTTP never
// receives. When the browser cannot launch at all, Fetch reports
// fetcher.ErrStrategyUnavailable and the chain degrades the run to
// HTTP-only.
type Renderer struct {
	session  *Session
	revealer *Revealer
	timeout  time.Duration
	logger   *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithPageLoadTimeout bounds a single page load.
func WithPageLoadTimeout(d time.Duration) RendererOption {
	return func(r *Renderer) {
		r.timeout = d
	}
}

// WithRevealer sets the reveal pass runner.
func WithRevealer(rev *Revealer) RendererOption {
	return func(r *Renderer) {
		r.revealer = rev
	}
}

// WithRendererLogger sets the structured logger.
func WithRendererLogger(logger *slog.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer over the given browser session.
func NewRenderer(session *Session, opts ...RendererOption) *Renderer {
	r := &Renderer{
		session:  session,
		revealer: NewRevealer(),
		timeout:  20 * time.Second,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements fetcher.Strategy.
func (r *Renderer) Name() string {
	return "rendered"
}

// Fetch loads link in the browser and returns the revealed page source.
//
// A dead browser is recycled before returning, so the chain's next round
// gets a fresh instance. A failed launch is reported as strategy
// unavailability, which disables rendered fetching for the rest of the run.
func (r *Renderer) Fetch(ctx context.Context, link string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := r.session.Page()
	if err != nil {
		if errors.Is(err, ErrLaunch) {
			return "", fmt.Errorf("%w: %v", fetcher.ErrStrategyUnavailable, err)
		}
		return "", err
	}
	defer func() {
		if err := page.Close(); err != nil {
			r.logger.Debug("failed to close page", "error", err)
		}
	}()

	// domcontentloaded instead of load: waiting for every subresource
	// stalls on ad-heavy pages, and the reveal passes pick up whatever
	// arrives late anyway.
	if _, err := page.Goto(link, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(r.timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		if isSessionError(err) {
			r.session.Recycle()
		}
		return "", fmt.Errorf("failed to load %s: %w", link, err)
	}

	r.revealer.Reveal(page)

	content, err := page.Content()
	if err != nil {
		if isSessionError(err) {
			r.session.Recycle()
		}
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}
