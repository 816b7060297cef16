package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by trainfetch.
// Credentials are environment-only so they never appear in a config file.
const (
	// EnvAccessKey and EnvSecretKey authenticate against the publish
	// endpoint.
	EnvAccessKey = "TRAINFETCH_ACCESS_KEY"
	EnvSecretKey = "TRAINFETCH_SECRET_KEY"

	// EnvEndpoint and EnvBucket override the publish destination.
	EnvEndpoint = "TRAINFETCH_ENDPOINT"
	EnvBucket   = "TRAINFETCH_BUCKET"

	// EnvCI is the continuous-integration signal. When it equals "true"
	// the publish step is suppressed, because CI runs commit the dataset
	// through the repository instead of uploading it.
	EnvCI = "GITHUB_ACTIONS"
)

// LoadDotenv loads a .env file from the current directory into the process
// environment, if one exists. Existing environment variables win over the
// file, matching the usual dotenv convention. A missing file is not an
// error; .env is a local development convenience.
func LoadDotenv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load()
}

// ApplyEnv overlays environment-provided publish settings onto cfg.
// Called after the config file is applied and before flags are parsed,
// so the precedence order is defaults < file < environment < flags.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Publish.Endpoint = v
	}
	if v := os.Getenv(EnvBucket); v != "" {
		cfg.Publish.Bucket = v
	}
	if v := os.Getenv(EnvAccessKey); v != "" {
		cfg.Publish.AccessKey = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		cfg.Publish.SecretKey = v
	}
}

// RunningInCI reports whether the CI suppression signal is set.
// Only the exact string "true" counts, matching the value GitHub Actions
// injects; "1" or "yes" do not suppress publishing.
func RunningInCI() bool {
	return os.Getenv(EnvCI) == "true"
}
