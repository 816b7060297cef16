package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Strategy retrieves the raw content of a single page.
// Implementations return the page source on success, or an error.
// Returning ErrStrategyUnavailable (possibly wrapped) tells the chain the
// strategy is dead for the rest of the run.
type Strategy interface {
	// Name identifies the strategy in logs and per-link outcomes.
	Name() string

	// Fetch retrieves the content of link. An empty result with a nil
	// error is treated as a failed attempt.
	Fetch(ctx context.Context, link string) (string, error)
}

// Chain tries an ordered list of strategies until one yields content.
//
// The preferred strategy comes first (rendered browser fetch), with plain
// HTTP as the fallback. The whole ordered list is retried for a fixed
// number of rounds, pausing between rounds, so a transient failure on
// every strategy still gets a second chance.
//
// Design decision: the chain owns retry and disable logic so strategies
// stay single-attempt and trivially testable. A strategy that reports
// ErrStrategyUnavailable is skipped for the remainder of the run; this is
// how a missing browser install degrades the run to HTTP-only instead of
// paying a launch failure per link.
type Chain struct {
	strategies []Strategy
	disabled   map[string]bool
	rounds     int
	delay      time.Duration
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration)
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithRetryRounds sets how many passes over the strategy list are made
// before giving up on a link.
func WithRetryRounds(n int) ChainOption {
	return func(c *Chain) {
		c.rounds = n
	}
}

// WithRetryDelay sets the pause between retry rounds for the same link.
func WithRetryDelay(d time.Duration) ChainOption {
	return func(c *Chain) {
		c.delay = d
	}
}

// WithLogger sets the structured logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain creates a Chain over the given strategies, tried in order.
func NewChain(strategies []Strategy, opts ...ChainOption) *Chain {
	c := &Chain{
		strategies: strategies,
		disabled:   make(map[string]bool),
		rounds:     3,
		delay:      500 * time.Millisecond,
		logger:     slog.Default(),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves link content, returning the content and the name of the
// strategy that produced it. When every round fails it returns ErrNoContent
// wrapped with the link, so one dead page never aborts the run.
func (c *Chain) Fetch(ctx context.Context, link string) (string, string, error) {
	for round := 0; round < c.rounds; round++ {
		if round > 0 && c.delay > 0 {
			c.sleep(ctx, c.delay)
		}
		for _, s := range c.strategies {
			if c.disabled[s.Name()] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return "", "", err
			}

			content, err := s.Fetch(ctx, link)
			if err != nil {
				if errors.Is(err, ErrStrategyUnavailable) {
					c.disabled[s.Name()] = true
					c.logger.Warn("fetch strategy disabled for this run",
						"strategy", s.Name(), "error", err)
					continue
				}
				c.logger.Debug("fetch attempt failed",
					"strategy", s.Name(), "link", link, "round", round+1, "error", err)
				continue
			}
			if content == "" {
				c.logger.Debug("fetch attempt returned empty content",
					"strategy", s.Name(), "link", link, "round", round+1)
				continue
			}
			return content, s.Name(), nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrNoContent, link)
}

// sleepCtx pauses for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
