package database

import (
	"context"
	"testing"
	"time"

	"github.com/trainfetch/trainfetch/internal/model"
)

// testRun builds a finished run with mixed outcomes.
func testRun() *model.Run {
	run := model.NewRun("https://lists.example/links.txt")
	run.OutputPath = "dataset.json"
	run.Links = []string{"https://a.example/", "https://b.example/"}
	run.RecordOutcome(model.Outcome{Link: "https://a.example/", Strategy: "rendered", Chars: 100, Duration: time.Second})
	run.RecordOutcome(model.Outcome{Link: "https://b.example/", Err: "no content retrieved"})
	run.FinishedAt = run.StartedAt.Add(10 * time.Second)
	return run
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and directory", func(t *testing.T) {
		t.Parallel()

		hdb, err := Open(t.TempDir()+"/nested", DefaultOptions())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer hdb.Close()
	})

	t.Run("refuses missing database without create", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveRunAndQuery(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer hdb.Close()

	ctx := context.Background()
	runID, err := hdb.SaveRun(ctx, testRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected non-zero run id")
	}

	t.Run("recent runs", func(t *testing.T) {
		runs, err := hdb.RecentRuns(ctx, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}

		rec := runs[0]
		if rec.LinksURL != "https://lists.example/links.txt" {
			t.Errorf("unexpected links URL %q", rec.LinksURL)
		}
		if rec.TotalLinks != 2 || rec.LoadedLinks != 1 || rec.FailedLinks != 1 {
			t.Errorf("unexpected counts: total=%d loaded=%d failed=%d",
				rec.TotalLinks, rec.LoadedLinks, rec.FailedLinks)
		}
		if rec.StartedAt.IsZero() {
			t.Error("expected parsed start time")
		}
	})

	t.Run("pages for run", func(t *testing.T) {
		pages, err := hdb.PagesForRun(ctx, runID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 2 {
			t.Fatalf("expected 2 pages, got %d", len(pages))
		}
		if pages[0].Link != "https://a.example/" || pages[0].Strategy != "rendered" {
			t.Errorf("unexpected first page %+v", pages[0])
		}
		if pages[0].Duration != time.Second {
			t.Errorf("expected 1s duration, got %v", pages[0].Duration)
		}
		if pages[1].Error != "no content retrieved" {
			t.Errorf("unexpected second page error %q", pages[1].Error)
		}
	})

	t.Run("link failure count", func(t *testing.T) {
		count, err := hdb.LinkFailureCount(ctx, "https://b.example/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 failure, got %d", count)
		}

		count, err = hdb.LinkFailureCount(ctx, "https://a.example/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 failures, got %d", count)
		}
	})
}

func TestSaveRunDuplicateLink(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer hdb.Close()

	run := model.NewRun("https://lists.example/links.txt")
	run.Links = []string{"https://a.example/", "https://a.example/"}
	run.RecordOutcome(model.Outcome{Link: "https://a.example/", Err: "first attempt failed"})
	run.RecordOutcome(model.Outcome{Link: "https://a.example/", Strategy: "direct", Chars: 50})

	ctx := context.Background()
	runID, err := hdb.SaveRun(ctx, run)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages, err := hdb.PagesForRun(ctx, runID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected upsert to keep one row, got %d", len(pages))
	}
	if pages[0].Chars != 50 || pages[0].Error != "" {
		t.Errorf("expected later attempt to win, got %+v", pages[0])
	}
}

func TestRecentRunsOrdering(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer hdb.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		run := testRun()
		run.StartedAt = time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)
		if _, err := hdb.SaveRun(ctx, run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	runs, err := hdb.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected limit to apply, got %d runs", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("expected newest first, got %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"sqlite default", "2025-06-01 12:30:00", false},
		{"iso with z", "2025-06-01T12:30:00Z", false},
		{"rfc3339", "2025-06-01T12:30:00+09:00", false},
		{"garbage", "not a time", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) zero=%v, expected zero=%v", tt.input, got.IsZero(), tt.zero)
			}
		})
	}
}
