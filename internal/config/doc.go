// Package config defines the configuration for trainfetch.
//
// Configuration is merged from four layers, lowest precedence first:
// built-in defaults, the optional .trainfetch YAML file, environment
// variables (including a local .env file), and CLI flags. Validate runs
// once after merging and returns sentinel errors for programmatic checks.
//
// Credentials for the publish destination are read from the environment
// only; they are deliberately absent from the config file schema.
package config
