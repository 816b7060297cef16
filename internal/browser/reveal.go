package browser

import (
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// forceShowScript makes hidden elements visible in place: it clears inline
// display/visibility hiding, drops hidden and aria-hidden attributes, and
// opens collapsed <details>. Returns the number of elements changed.
// Elements are marked so repeat passes do not recount them.
const forceShowScript = `() => {
	let changed = 0;
	for (const el of document.querySelectorAll('[hidden], [aria-hidden="true"], details:not([open])')) {
		if (el.dataset.tfRevealed) continue;
		el.dataset.tfRevealed = '1';
		el.removeAttribute('hidden');
		if (el.getAttribute('aria-hidden') === 'true') el.setAttribute('aria-hidden', 'false');
		if (el.tagName === 'DETAILS') el.open = true;
		changed++;
	}
	for (const el of document.querySelectorAll('[style]')) {
		if (el.dataset.tfShown) continue;
		const s = el.style;
		if (s.display === 'none' || s.visibility === 'hidden' || s.opacity === '0') {
			el.dataset.tfShown = '1';
			s.display = '';
			s.visibility = 'visible';
			s.opacity = '1';
			changed++;
		}
	}
	return changed;
}`

// clickExpandersScript clicks controls that look like content expanders:
// buttons or links whose visible text suggests "show more", plus anything
// with aria-expanded="false". Each control is clicked once per page,
// tracked with a data attribute, so toggles cannot flap open and closed
// across passes. Returns the number of clicks performed.
const clickExpandersScript = `() => {
	const pattern = /\b(more|show|expand|read|view all|see all|continue|load)\b/i;
	let clicked = 0;
	for (const el of document.querySelectorAll('button, a, [role="button"], [aria-expanded="false"]')) {
		if (el.dataset.tfClicked) continue;
		const label = (el.innerText || '') + ' ' + (el.getAttribute('aria-label') || '');
		const expander = el.getAttribute('aria-expanded') === 'false' || pattern.test(label);
		if (!expander) continue;
		const href = el.getAttribute('href');
		if (href && href !== '#' && !href.startsWith('javascript:')) continue;
		el.dataset.tfClicked = '1';
		try { el.click(); clicked++; } catch (e) {}
	}
	return clicked;
}`

// scrollScript scrolls to the bottom of the document to trigger lazy
// loading and returns the document height after scrolling, so the caller
// can tell whether new content arrived.
const scrollScript = `() => {
	window.scrollTo(0, document.body.scrollHeight);
	return document.body.scrollHeight;
}`

// Revealer runs the hidden-content passes on a rendered page.
//
// Each pass forces hidden elements visible, clicks expander controls, and
// scrolls for lazy content, then waits for triggered content to settle.
// Passes repeat until a pass causes no activity or the iteration cap is
// reached, so a static page settles once and stops while nested accordions
// get progressively opened.
type Revealer struct {
	iterations int
	settle     time.Duration
	logger     *slog.Logger
}

// RevealerOption configures a Revealer.
type RevealerOption func(*Revealer)

// WithIterations caps reveal passes per page. 0 disables revealing.
func WithIterations(n int) RevealerOption {
	return func(r *Revealer) {
		r.iterations = n
	}
}

// WithSettleDelay sets the wait after each pass for triggered content.
func WithSettleDelay(d time.Duration) RevealerOption {
	return func(r *Revealer) {
		r.settle = d
	}
}

// WithRevealerLogger sets the structured logger.
func WithRevealerLogger(logger *slog.Logger) RevealerOption {
	return func(r *Revealer) {
		r.logger = logger
	}
}

// NewRevealer creates a Revealer with default pass settings.
func NewRevealer(opts ...RevealerOption) *Revealer {
	r := &Revealer{
		iterations: 3,
		settle:     500 * time.Millisecond,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reveal runs the reveal passes on page. Script failures are logged and
// swallowed: a page that blocks injected JavaScript still yields its
// initially rendered text, which is better than nothing.
func (r *Revealer) Reveal(page playwright.Page) {
	lastHeight := 0
	for pass := 0; pass < r.iterations; pass++ {
		shown := r.eval(page, forceShowScript)
		clicked := r.eval(page, clickExpandersScript)

		// The first scroll always counts as activity: content it triggers
		// arrives asynchronously, so growth is only observable on the next
		// pass, after the settle wait.
		height := r.eval(page, scrollScript)
		grew := pass == 0 || height > lastHeight
		lastHeight = height

		r.logger.Debug("reveal pass finished",
			"pass", pass+1, "shown", shown, "clicked", clicked, "height", height)

		if shown == 0 && clicked == 0 && !grew {
			return
		}
		page.WaitForTimeout(float64(r.settle.Milliseconds()))
	}
}

// eval runs a script and coerces its numeric result.
func (r *Revealer) eval(page playwright.Page, script string) int {
	result, err := page.Evaluate(script)
	if err != nil {
		r.logger.Debug("reveal script failed", "error", err)
		return 0
	}
	return toCount(result)
}

// toCount converts an Evaluate result to an int. The driver decodes page
// numbers as int or float64 depending on the value; anything else counts
// as zero activity.
func toCount(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
