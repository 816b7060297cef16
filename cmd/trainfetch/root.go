// Package main provides the entry point for the trainfetch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for trainfetch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainfetch",
		Short: "Build chatbot training datasets from web page text",
		Long: `Trainfetch turns a list of web pages into a chatbot training dataset.

It downloads a newline-delimited list of page URLs, loads each page in a
headless browser so JavaScript-rendered and initially hidden content is
captured, extracts the visible text, and writes everything to a single
JSON dataset file. Pages the browser cannot serve fall back to plain
HTTP fetches through public CORS proxies.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
