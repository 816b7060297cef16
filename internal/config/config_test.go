package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.HTTPTimeout != DefaultHTTPTimeout {
		t.Errorf("expected HTTPTimeout %v, got %v", DefaultHTTPTimeout, cfg.HTTPTimeout)
	}
	if cfg.RetryRounds != DefaultRetryRounds {
		t.Errorf("expected RetryRounds %d, got %d", DefaultRetryRounds, cfg.RetryRounds)
	}
	if cfg.MaxChars != DefaultMaxChars {
		t.Errorf("expected MaxChars %d, got %d", DefaultMaxChars, cfg.MaxChars)
	}
	if cfg.RecycleAfter != DefaultRecycleAfter {
		t.Errorf("expected RecycleAfter %d, got %d", DefaultRecycleAfter, cfg.RecycleAfter)
	}
	if cfg.OutputPath != DefaultOutputFile {
		t.Errorf("expected OutputPath %q, got %q", DefaultOutputFile, cfg.OutputPath)
	}
	if cfg.Publish.Configured() {
		t.Error("expected publish to be unconfigured by default")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// valid returns a config that passes Validate; each test case breaks
	// exactly one thing.
	valid := func() *Config {
		cfg := NewConfig()
		cfg.LinksURL = "https://example.com/links.txt"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "missing links URL",
			mutate:  func(c *Config) { c.LinksURL = "" },
			wantErr: ErrNoLinksURL,
		},
		{
			name:    "missing output path",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: ErrNoOutputPath,
		},
		{
			name:    "zero http timeout",
			mutate:  func(c *Config) { c.HTTPTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative page load timeout",
			mutate:  func(c *Config) { c.PageLoadTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero retry rounds",
			mutate:  func(c *Config) { c.RetryRounds = 0 },
			wantErr: ErrInvalidRetries,
		},
		{
			name:    "negative retry delay",
			mutate:  func(c *Config) { c.RetryDelay = -time.Millisecond },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "negative max chars",
			mutate:  func(c *Config) { c.MaxChars = -1 },
			wantErr: ErrInvalidMaxChars,
		},
		{
			name:    "zero max chars is unbounded not invalid",
			mutate:  func(c *Config) { c.MaxChars = 0 },
			wantErr: nil,
		},
		{
			name:    "negative max body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "zero recycle cadence",
			mutate:  func(c *Config) { c.RecycleAfter = 0 },
			wantErr: ErrInvalidRecycleAfter,
		},
		{
			name:    "negative reveal iterations",
			mutate:  func(c *Config) { c.RevealIterations = -1 },
			wantErr: ErrInvalidRevealIterations,
		},
		{
			name:    "zero reveal iterations disables reveal",
			mutate:  func(c *Config) { c.RevealIterations = 0 },
			wantErr: nil,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestErrNoLinksURLNamesRealFlag guards the error message against drifting
// from the flag the run command actually registers.
func TestErrNoLinksURLNamesRealFlag(t *testing.T) {
	t.Parallel()

	msg := ErrNoLinksURL.Error()
	if !strings.Contains(msg, "--url") {
		t.Errorf("expected message to mention --url, got %q", msg)
	}
	if strings.Contains(msg, "--links-url") {
		t.Errorf("message names a flag that does not exist: %q", msg)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if XDGDataDir() == "" {
		t.Error("expected non-empty data dir")
	}
	if XDGConfigDir() == "" {
		t.Error("expected non-empty config dir")
	}
}
