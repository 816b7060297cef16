package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/trainfetch/trainfetch/internal/model"
)

// HistoryDB provides SQLite-based storage for run history.
// Each preprocessing run is recorded with its per-page outcomes, so
// successive runs can be compared and flaky links identified over time.
//
// Design decision: one database file for all runs rather than a file per
// run. Cross-run queries ("how often does this link fail") need a single
// database, and backup is a single file copy.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned instead of silently creating an empty history.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "trainfetch.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY churn without hurting this workload.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per preprocessing run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		links_url TEXT NOT NULL,
		output_path TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		total_links INTEGER NOT NULL,
		loaded_links INTEGER NOT NULL,
		failed_links INTEGER NOT NULL,
		published_key TEXT,
		publish_error TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per processed link within a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		link TEXT NOT NULL,
		strategy TEXT,
		chars INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT,
		UNIQUE(run_id, link)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_link ON pages(link);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run summary row.
type RunRecord struct {
	ID           int64
	LinksURL     string
	OutputPath   string
	StartedAt    time.Time
	FinishedAt   time.Time
	TotalLinks   int
	LoadedLinks  int
	FailedLinks  int
	PublishedKey string
	PublishError string
	Error        string
}

// PageRecord is a stored per-link outcome row.
type PageRecord struct {
	ID       int64
	RunID    int64
	Link     string
	Strategy string
	Chars    int
	Duration time.Duration
	Error    string
}

// SaveRun records a completed run and its per-link outcomes.
// The run row and its pages are written in one transaction so history
// never contains a run with half its pages.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	var finishedAt any
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt.Format(model.TimestampFormat)
	}

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (links_url, output_path, started_at, finished_at,
		total_links, loaded_links, failed_links, published_key, publish_error, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.LinksURL,
		run.OutputPath,
		run.StartedAt.Format(model.TimestampFormat),
		finishedAt,
		len(run.Links),
		run.LoadedCount(),
		run.FailedCount(),
		run.PublishedKey,
		run.PublishError,
		run.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	// UPSERT: duplicate list lines produce two outcomes for one link;
	// the later attempt wins, matching the dataset's overwrite behavior.
	const pageQuery = `
	INSERT INTO pages (run_id, link, strategy, chars, duration_ms, error)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, link) DO UPDATE SET
		strategy = excluded.strategy,
		chars = excluded.chars,
		duration_ms = excluded.duration_ms,
		error = excluded.error
	`
	for _, o := range run.Outcomes {
		if _, err := tx.ExecContext(ctx, pageQuery,
			runID, o.Link, o.Strategy, o.Chars, o.Duration.Milliseconds(), o.Err,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RecentRuns returns the most recent runs, newest first.
func (hdb *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, links_url, output_path, started_at, finished_at,
		total_links, loaded_links, failed_links,
		COALESCE(published_key, ''), COALESCE(publish_error, ''), COALESCE(error, '')
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var rec RunRecord
		var startedAt string
		var finishedAt sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.LinksURL, &rec.OutputPath, &startedAt, &finishedAt,
			&rec.TotalLinks, &rec.LoadedLinks, &rec.FailedLinks,
			&rec.PublishedKey, &rec.PublishError, &rec.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			rec.FinishedAt = parseTimestamp(finishedAt.String)
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

// PagesForRun returns the per-link outcomes for a run, in insertion order.
func (hdb *HistoryDB) PagesForRun(ctx context.Context, runID int64) ([]PageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT id, run_id, link, COALESCE(strategy, ''), chars, duration_ms, COALESCE(error, '')
	FROM pages
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var rec PageRecord
		var durationMs int64

		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Link, &rec.Strategy, &rec.Chars, &durationMs, &rec.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		rec.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, rec)
	}

	return results, rows.Err()
}

// LinkFailureCount returns how many recorded runs failed to load the link.
// Useful for spotting links that are dead rather than flaky.
func (hdb *HistoryDB) LinkFailureCount(ctx context.Context, link string) (int, error) {
	var count int
	err := hdb.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM pages WHERE link = ? AND chars = 0
	`, link).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to count link failures: %w", err)
	}
	return count, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
