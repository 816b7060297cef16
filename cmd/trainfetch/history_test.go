package main

import (
	"context"
	"testing"
	"time"

	"github.com/trainfetch/trainfetch/internal/database"
	"github.com/trainfetch/trainfetch/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history" {
			t.Errorf("expected use 'history', got %q", cmd.Use)
		}
	})

	t.Run("has flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"limit", "pages", "json", "db-dir"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("limit defaults to 10", func(t *testing.T) {
		t.Parallel()
		if flag := cmd.Flags().Lookup("limit"); flag.DefValue != "10" {
			t.Errorf("expected default '10', got %q", flag.DefValue)
		}
	})
}

// TestRunHistoryCmdNoDatabase verifies the command fails cleanly when no
// history has ever been recorded, instead of creating an empty database.
func TestRunHistoryCmdNoDatabase(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cmd := NewHistoryCmd()
	cmd.SetArgs([]string{"--db-dir", dir})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing history database")
	}
}

func TestRunStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  database.RunRecord
		want string
	}{
		{
			name: "failed run",
			rec:  database.RunRecord{Error: "fetch failed"},
			want: "failed: fetch failed",
		},
		{
			name: "publish failure",
			rec:  database.RunRecord{PublishError: "connection refused"},
			want: "publish failed",
		},
		{
			name: "published",
			rec:  database.RunRecord{PublishedKey: "dataset.json"},
			want: "published as dataset.json",
		},
		{
			name: "local only",
			rec:  database.RunRecord{},
			want: "saved locally",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := runStatus(tt.rec); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestListRecentRuns exercises the listing path against a real database.
func TestListRecentRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	run := model.NewRun("https://lists.example/links.txt")
	run.Links = []string{"https://a.example/"}
	run.OutputPath = "dataset.json"
	run.RecordOutcome(model.Outcome{
		Link:     "https://a.example/",
		Strategy: "rendered",
		Chars:    42,
		Duration: 120 * time.Millisecond,
	})
	run.FinishedAt = time.Now()

	runID, err := db.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatalf("failed to save run: %v", err)
	}

	if err := listRecentRuns(context.Background(), db, 10, false); err != nil {
		t.Errorf("unexpected error listing runs: %v", err)
	}
	if err := listRunPages(context.Background(), db, runID, false); err != nil {
		t.Errorf("unexpected error listing pages: %v", err)
	}
	if err := listRunPages(context.Background(), db, runID+1, false); err == nil {
		t.Error("expected error for unknown run id")
	}
}
