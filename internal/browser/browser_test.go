package browser

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

// fakePage stubs the two Page calls the reveal pass makes. Scrolling
// requests lazy content, but the new height only becomes visible after a
// settle wait, as on a real page.
type fakePage struct {
	playwright.Page

	height  int
	pending int
	scrolls int
	waits   int
}

func (p *fakePage) Evaluate(script string, _ ...any) (any, error) {
	if strings.Contains(script, "scrollTo") {
		p.scrolls++
		return p.height, nil
	}
	return 0, nil
}

func (p *fakePage) WaitForTimeout(float64) {
	p.waits++
	p.height += p.pending
	p.pending = 0
}

func TestIsSessionError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"target closed", errors.New("playwright: Target closed"), true},
		{"browser closed", errors.New("Browser has been closed"), true},
		{"context closed", errors.New("context or browser has been closed"), true},
		{"websocket failure", errors.New("could not send message: websocket: close 1006"), true},
		{"navigation timeout", errors.New("Timeout 20000ms exceeded"), false},
		{"dns failure", errors.New("net::ERR_NAME_NOT_RESOLVED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isSessionError(tt.err); got != tt.want {
				t.Errorf("isSessionError(%v): expected %v, got %v", tt.err, tt.want, got)
			}
		})
	}
}

func TestToCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  int
	}{
		{"float64 from page", float64(7), 7},
		{"int from driver", 3, 3},
		{"zero", float64(0), 0},
		{"nil result", nil, 0},
		{"unexpected type", "many", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := toCount(tt.input); got != tt.want {
				t.Errorf("toCount(%v): expected %d, got %d", tt.input, tt.want, got)
			}
		})
	}
}

func TestRevealerReveal(t *testing.T) {
	t.Parallel()

	newRevealer := func(iterations int) *Revealer {
		return NewRevealer(WithIterations(iterations), WithSettleDelay(time.Millisecond))
	}

	t.Run("waits for scroll-triggered lazy content", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{height: 1000, pending: 500}
		newRevealer(3).Reveal(page)

		if page.waits == 0 {
			t.Error("expected a settle wait after the first scroll")
		}
		if page.height != 1500 {
			t.Errorf("expected lazy content to load before returning, height %d", page.height)
		}
	})

	t.Run("static page stops after one settle", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{height: 1000}
		newRevealer(3).Reveal(page)

		if page.scrolls != 2 {
			t.Errorf("expected 2 scroll passes, got %d", page.scrolls)
		}
		if page.waits != 1 {
			t.Errorf("expected 1 settle wait, got %d", page.waits)
		}
	})

	t.Run("zero iterations does nothing", func(t *testing.T) {
		t.Parallel()

		page := &fakePage{height: 1000}
		newRevealer(0).Reveal(page)

		if page.scrolls != 0 || page.waits != 0 {
			t.Errorf("expected no activity, got %d scrolls and %d waits", page.scrolls, page.waits)
		}
	})
}

func TestSessionDefaults(t *testing.T) {
	t.Parallel()

	s := NewSession(WithRecycleAfter(10))
	if s.recycleAfter != 10 {
		t.Errorf("expected recycle cadence 10, got %d", s.recycleAfter)
	}
	if s.pw != nil || s.browser != nil {
		t.Error("session must not launch anything before first Page call")
	}
	// Closing a never-launched session is a no-op
	if err := s.Close(); err != nil {
		t.Errorf("unexpected error closing idle session: %v", err)
	}
}

func TestRendererName(t *testing.T) {
	t.Parallel()

	if got := NewRenderer(NewSession()).Name(); got != "rendered" {
		t.Errorf("unexpected name %q", got)
	}
}
