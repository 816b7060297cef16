package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ErrLaunch is returned when no browser can be started at all, typically
// because Playwright or its Chromium build is not installed. Callers treat
// this as "rendered fetching is off for this run" rather than a per-page
// failure.
var ErrLaunch = errors.New("browser launch failed")

// Session owns one headless Chromium instance and hands out pages from it.
//
// The browser is launched lazily on the first Page call and relaunched
// after recycleAfter pages. Chromium accumulates memory across many page
// loads in a long run; recycling keeps the footprint flat at the cost of
// one launch per cadence.
//
// Session is not safe for concurrent use. Links are processed one at a
// time, so a single caller is the only access pattern.
type Session struct {
	logger       *slog.Logger
	recycleAfter int
	userAgent    string

	pw          *playwright.Playwright
	browser     playwright.Browser
	browserCtx  playwright.BrowserContext
	pagesServed int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRecycleAfter sets how many pages are served before the browser is
// relaunched.
func WithRecycleAfter(n int) SessionOption {
	return func(s *Session) {
		s.recycleAfter = n
	}
}

// WithSessionLogger sets the structured logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithSessionUserAgent sets the browser context User-Agent.
func WithSessionUserAgent(ua string) SessionOption {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// NewSession creates a Session. No browser is launched until the first
// Page call, so constructing a Session is free even when every link ends
// up served by the HTTP fallback.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		logger:       slog.Default(),
		recycleAfter: 25,
		// Chromium's own UA with the word "Headless" stripped trips
		// fewer bot heuristics than a custom string.
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page returns a fresh page, launching or recycling the browser as needed.
// The caller must Close the page when done with it.
func (s *Session) Page() (playwright.Page, error) {
	if s.browser != nil && s.pagesServed >= s.recycleAfter {
		s.logger.Debug("recycling browser session", "pages_served", s.pagesServed)
		s.Recycle()
	}

	if err := s.ensure(); err != nil {
		return nil, err
	}

	page, err := s.browserCtx.NewPage()
	if err != nil {
		// A dead browser context means the whole instance is gone.
		// Relaunch once before giving up on this page.
		if !isSessionError(err) {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		s.Recycle()
		if err := s.ensure(); err != nil {
			return nil, err
		}
		page, err = s.browserCtx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
	}

	s.pagesServed++
	return page, nil
}

// ensure launches Playwright and Chromium if they are not running.
func (s *Session) ensure() error {
	if s.browserCtx != nil {
		return nil
	}

	if s.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLaunch, err)
		}
		s.pw = pw
	}

	browser, err := s.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(s.userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		browser.Close()
		return fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	s.browser = browser
	s.browserCtx = browserCtx
	s.pagesServed = 0
	s.logger.Debug("browser session started")
	return nil
}

// Recycle tears down the browser but keeps the Playwright driver, so the
// next Page call relaunches quickly.
func (s *Session) Recycle() {
	if s.browserCtx != nil {
		if err := s.browserCtx.Close(); err != nil {
			s.logger.Debug("failed to close browser context", "error", err)
		}
		s.browserCtx = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Debug("failed to close browser", "error", err)
		}
		s.browser = nil
	}
	s.pagesServed = 0
}

// Close shuts down the browser and the Playwright driver.
func (s *Session) Close() error {
	s.Recycle()
	if s.pw != nil {
		err := s.pw.Stop()
		s.pw = nil
		return err
	}
	return nil
}

// Error fragments that indicate the browser process or its connection is
// gone, as opposed to a problem with the page being loaded.
var sessionErrorFragments = []string{
	"target closed",
	"browser has been closed",
	"context or browser has been closed",
	"connection closed",
	"websocket",
	"browser closed",
}

// isSessionError reports whether err means the browser itself died.
// Such errors are recovered by recycling the session; page-level errors
// (timeouts, bad URLs) are not.
func isSessionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range sessionErrorFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
