package publisher

import (
	"context"
	"testing"

	"github.com/trainfetch/trainfetch/internal/config"
)

func TestConfigured(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.PublishConfig
		want bool
	}{
		{
			name: "endpoint and bucket set",
			cfg:  config.PublishConfig{Endpoint: "storage.example:9000", Bucket: "datasets"},
			want: true,
		},
		{
			name: "missing bucket",
			cfg:  config.PublishConfig{Endpoint: "storage.example:9000"},
			want: false,
		},
		{
			name: "missing endpoint",
			cfg:  config.PublishConfig{Bucket: "datasets"},
			want: false,
		},
		{
			name: "empty",
			cfg:  config.PublishConfig{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := New(tt.cfg).Configured(); got != tt.want {
				t.Errorf("Configured(): expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPublishUnconfiguredIsNoOp(t *testing.T) {
	t.Parallel()

	p := New(config.PublishConfig{})
	key, err := p.Publish(context.Background(), "does-not-exist.json")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key, got %q", key)
	}
}

func TestSuppressed(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"false", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("env "+tt.value, func(t *testing.T) {
			t.Setenv(config.EnvCI, tt.value)

			p := New(config.PublishConfig{Endpoint: "e", Bucket: "b"})
			if got := p.Suppressed(); got != tt.want {
				t.Errorf("Suppressed() with %q: expected %v, got %v", tt.value, tt.want, got)
			}
		})
	}
}
