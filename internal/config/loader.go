package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".trainfetch"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// duration accepts "30s" style values in the YAML file, which yaml.v3
// does not parse into time.Duration on its own.
type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = duration(parsed)
	return nil
}

// File is the YAML shape of the .trainfetch configuration file.
// Every field is optional; absent fields leave the corresponding Config
// value untouched, so the file only needs to state what differs from the
// defaults. Numeric and boolean fields use pointers to distinguish "absent"
// from an explicit zero.
//
// Credentials have no place here. The access and secret keys are read from
// the environment only, so a .trainfetch committed to version control can
// never leak them.
type File struct {
	LinksURL         *string   `yaml:"links_url"`
	Output           *string   `yaml:"output"`
	HTTPTimeout      *duration `yaml:"http_timeout"`
	RetryRounds      *int      `yaml:"retry_rounds"`
	RetryDelay       *duration `yaml:"retry_delay"`
	PageLoadTimeout  *duration `yaml:"page_load_timeout"`
	RevealIterations *int      `yaml:"reveal_iterations"`
	SettleDelay      *duration `yaml:"settle_delay"`
	RecycleAfter     *int      `yaml:"recycle_after"`
	MaxChars         *int      `yaml:"max_chars"`
	UserAgent        *string   `yaml:"user_agent"`
	NoBrowser        *bool     `yaml:"no_browser"`

	Publish struct {
		Endpoint  *string `yaml:"endpoint"`
		Bucket    *string `yaml:"bucket"`
		ObjectKey *string `yaml:"object_key"`
		UseSSL    *bool   `yaml:"use_ssl"`
	} `yaml:"publish"`
}

// ApplyTo overlays the file's values onto cfg, leaving absent fields alone.
// Flags are parsed after this runs, so the precedence order is
// defaults < file < environment < flags.
func (f *File) ApplyTo(cfg *Config) {
	if f.LinksURL != nil {
		cfg.LinksURL = *f.LinksURL
	}
	if f.Output != nil {
		cfg.OutputPath = *f.Output
	}
	if f.HTTPTimeout != nil {
		cfg.HTTPTimeout = time.Duration(*f.HTTPTimeout)
	}
	if f.RetryRounds != nil {
		cfg.RetryRounds = *f.RetryRounds
	}
	if f.RetryDelay != nil {
		cfg.RetryDelay = time.Duration(*f.RetryDelay)
	}
	if f.PageLoadTimeout != nil {
		cfg.PageLoadTimeout = time.Duration(*f.PageLoadTimeout)
	}
	if f.RevealIterations != nil {
		cfg.RevealIterations = *f.RevealIterations
	}
	if f.SettleDelay != nil {
		cfg.SettleDelay = time.Duration(*f.SettleDelay)
	}
	if f.RecycleAfter != nil {
		cfg.RecycleAfter = *f.RecycleAfter
	}
	if f.MaxChars != nil {
		cfg.MaxChars = *f.MaxChars
	}
	if f.UserAgent != nil {
		cfg.UserAgent = *f.UserAgent
	}
	if f.NoBrowser != nil {
		cfg.NoBrowser = *f.NoBrowser
	}

	if f.Publish.Endpoint != nil {
		cfg.Publish.Endpoint = *f.Publish.Endpoint
	}
	if f.Publish.Bucket != nil {
		cfg.Publish.Bucket = *f.Publish.Bucket
	}
	if f.Publish.ObjectKey != nil {
		cfg.Publish.ObjectKey = *f.Publish.ObjectKey
	}
	if f.Publish.UseSSL != nil {
		cfg.Publish.UseSSL = *f.Publish.UseSSL
	}
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error based on whether the config file path
// was explicitly specified by the user: an explicit missing file is fatal,
// a missing default-location file is not.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .trainfetch in the current directory
// 3. Look for .trainfetch in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
