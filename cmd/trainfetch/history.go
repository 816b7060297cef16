package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trainfetch/trainfetch/internal/config"
	"github.com/trainfetch/trainfetch/internal/database"
)

// NewHistoryCmd creates the history command.
// This command inspects past runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded preprocessing runs",
		Long: `History lists past preprocessing runs from the local database.

Each run records the links list URL, the output path, how many links
loaded or failed, and whether the dataset was published. Per-link
outcomes are stored as well, so flaky or dead links can be spotted
across runs.

Examples:
  # List the ten most recent runs
  trainfetch history

  # List more runs
  trainfetch history -n 50

  # Show per-link outcomes for a run
  trainfetch history --pages 3

  # Output run history as JSON
  trainfetch history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10,
		"Maximum number of runs to list")
	cmd.Flags().Int64P("pages", "p", 0,
		"Show per-link outcomes for the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the run history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Listing must never create an empty database
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no run history found (run 'trainfetch run' first): %w", err)
	}
	defer db.Close()

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetInt64("pages")
	if err != nil {
		return err
	}

	ctx := context.Background()

	if runID > 0 {
		return listRunPages(ctx, db, runID, jsonOutput)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	return listRecentRuns(ctx, db, limit, jsonOutput)
}

// historyRunJSON is the JSON shape of a run history row.
type historyRunJSON struct {
	ID           int64  `json:"id"`
	LinksURL     string `json:"links_url"`
	OutputPath   string `json:"output_path"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty"`
	TotalLinks   int    `json:"total_links"`
	LoadedLinks  int    `json:"loaded_links"`
	FailedLinks  int    `json:"failed_links"`
	PublishedKey string `json:"published_key,omitempty"`
	PublishError string `json:"publish_error,omitempty"`
	Error        string `json:"error,omitempty"`
}

// historyPageJSON is the JSON shape of a per-link outcome row.
type historyPageJSON struct {
	Link       string `json:"link"`
	Strategy   string `json:"strategy,omitempty"`
	Chars      int    `json:"chars"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// listRecentRuns lists the most recent runs, newest first.
func listRecentRuns(ctx context.Context, db *database.HistoryDB, limit int, jsonOutput bool) error {
	runs, err := db.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if jsonOutput {
		out := make([]historyRunJSON, 0, len(runs))
		for _, r := range runs {
			j := historyRunJSON{
				ID:           r.ID,
				LinksURL:     r.LinksURL,
				OutputPath:   r.OutputPath,
				StartedAt:    r.StartedAt.Format("2006-01-02 15:04:05"),
				TotalLinks:   r.TotalLinks,
				LoadedLinks:  r.LoadedLinks,
				FailedLinks:  r.FailedLinks,
				PublishedKey: r.PublishedKey,
				PublishError: r.PublishError,
				Error:        r.Error,
			}
			if !r.FinishedAt.IsZero() {
				j.FinishedAt = r.FinishedAt.Format("2006-01-02 15:04:05")
			}
			out = append(out, j)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs found in the database.")
		fmt.Println("\nUse 'trainfetch run <links-url>' to build a dataset.")
		return nil
	}

	fmt.Printf("Recorded runs (%d):\n\n", len(runs))
	fmt.Printf("  %-4s  %-20s  %-7s  %-7s  %-7s  %s\n",
		"ID", "Started", "Links", "Loaded", "Failed", "Status")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, r := range runs {
		fmt.Printf("  %-4d  %-20s  %-7d  %-7d  %-7d  %s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.TotalLinks,
			r.LoadedLinks,
			r.FailedLinks,
			runStatus(r),
		)
	}

	fmt.Println("\nUse 'trainfetch history --pages <id>' to see per-link outcomes for a run.")
	return nil
}

// runStatus summarizes one run history row for the table.
func runStatus(r database.RunRecord) string {
	switch {
	case r.Error != "":
		return "failed: " + r.Error
	case r.PublishError != "":
		return "publish failed"
	case r.PublishedKey != "":
		return "published as " + r.PublishedKey
	default:
		return "saved locally"
	}
}

// listRunPages lists the per-link outcomes stored for one run.
func listRunPages(ctx context.Context, db *database.HistoryDB, runID int64, jsonOutput bool) error {
	pages, err := db.PagesForRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(pages) == 0 {
		return fmt.Errorf("no pages recorded for run %d (use 'trainfetch history' to see run IDs)", runID)
	}

	if jsonOutput {
		out := make([]historyPageJSON, 0, len(pages))
		for _, p := range pages {
			out = append(out, historyPageJSON{
				Link:       p.Link,
				Strategy:   p.Strategy,
				Chars:      p.Chars,
				DurationMS: p.Duration.Milliseconds(),
				Error:      p.Error,
			})
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	fmt.Printf("Pages for run %d (%d links):\n\n", runID, len(pages))
	fmt.Printf("  %-9s  %-7s  %-9s  %s\n", "Strategy", "Chars", "Duration", "Link")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, p := range pages {
		strategy := p.Strategy
		if strategy == "" {
			strategy = "-"
		}
		fmt.Printf("  %-9s  %-7d  %-9s  %s\n",
			strategy, p.Chars, p.Duration.Round(time.Millisecond), p.Link)
		if p.Error != "" {
			fmt.Printf("  %-9s  error: %s\n", "", p.Error)
		}
	}

	return nil
}
