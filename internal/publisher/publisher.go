package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/trainfetch/trainfetch/internal/config"
)

// Publisher uploads the generated dataset to S3-compatible object storage.
//
// Publishing is strictly best-effort: the dataset file on disk is the
// source of truth, and an upload failure must never invalidate a completed
// run. Callers report the failure and tell the operator to upload manually.
type Publisher struct {
	cfg    config.PublishConfig
	logger *slog.Logger

	// client is created lazily so an unconfigured Publisher costs nothing.
	client *minio.Client
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New creates a Publisher for the given destination.
// No connection is made until Publish is called.
func New(cfg config.PublishConfig, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Configured reports whether this Publisher has a destination.
// An unconfigured Publisher's Publish is a no-op, so runs without storage
// settings behave identically to runs with publishing disabled.
func (p *Publisher) Configured() bool {
	return p.cfg.Configured()
}

// Suppressed reports whether the environment forbids publishing.
// In GitHub Actions the dataset is committed through the repository, so
// uploading it again would race the workflow's own artifact handling.
func (p *Publisher) Suppressed() bool {
	return config.RunningInCI()
}

// Publish uploads the dataset file at path and returns the object key.
// The bucket is created on first use if it does not exist.
func (p *Publisher) Publish(ctx context.Context, path string) (string, error) {
	if !p.Configured() {
		return "", nil
	}

	if err := p.connect(ctx); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return "", fmt.Errorf("failed to read dataset for upload: %w", err)
	}

	key := p.cfg.ObjectKey
	if key == "" {
		key = filepath.Base(path)
	}

	info, err := p.client.PutObject(ctx, p.cfg.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload dataset: %w", err)
	}

	p.logger.Info("dataset published",
		"bucket", p.cfg.Bucket, "key", key, "size", info.Size)
	return key, nil
}

// connect creates the client and ensures the bucket exists.
func (p *Publisher) connect(ctx context.Context) error {
	if p.client != nil {
		return nil
	}

	client, err := minio.New(p.cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(p.cfg.AccessKey, p.cfg.SecretKey, ""),
		Secure: p.cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, p.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, p.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	p.client = client
	return nil
}
