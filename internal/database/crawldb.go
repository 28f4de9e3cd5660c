package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// HistoryDB provides SQLite-based storage for crawl runs.
// It manages connection pooling and provides methods for saving and
// listing past crawls.
//
// Design decision: We use a single database file for all domains rather
// than one file per site. This keeps the history browsable in one place
// and simplifies backup/restore operations.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "sitecrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
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
	-- Runs store one row per crawl invocation
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		started DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		requests INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		max_depth INTEGER NOT NULL,
		partial INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- Pages store every visited URL of a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlReport persists a finished crawl: one runs row plus one pages row
// per completed visit, in a single transaction. It returns the new run ID.
func (hdb *HistoryDB) SaveCrawlReport(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (base_url, domain, started, duration_ms, requests, pages, max_depth, partial)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.BaseURL,
		report.Domain,
		report.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		report.Duration.Milliseconds(),
		report.Ledger.Requests(),
		report.Ledger.Len(),
		report.Ledger.MaxDepth(),
		boolToInt(report.Partial),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, url, depth, status) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range report.Ledger.Visits() {
		if _, err := stmt.ExecContext(ctx, runID, v.URL, v.Depth, v.Outcome.Status); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", v.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary contains summary information about one stored crawl run.
// This is used for displaying history without loading every page row.
type RunSummary struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// BaseURL is the starting URL of the crawl.
	BaseURL string

	// Domain is the host the crawl was restricted to.
	Domain string

	// Started is when the crawl began.
	Started time.Time

	// Duration is the wall-clock time of the crawl.
	Duration time.Duration

	// Requests is the number of fetches issued.
	Requests int

	// Pages is the number of pages visited.
	Pages int

	// MaxDepth is the deepest level reached.
	MaxDepth int

	// Partial is true when the crawl was interrupted.
	Partial bool
}

// ListRuns returns the most recent runs, newest first. A limit of 0 or less
// returns every stored run. The optional domain filters to one host.
func (hdb *HistoryDB) ListRuns(ctx context.Context, domain string, limit int) ([]RunSummary, error) {
	query := `
	SELECT id, base_url, domain, started, duration_ms, requests, pages, max_depth, partial
	FROM runs
	`
	args := make([]interface{}, 0, 2)
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY started DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var run RunSummary
		var started string
		var durationMS int64
		var partial int

		if err := rows.Scan(
			&run.ID,
			&run.BaseURL,
			&run.Domain,
			&started,
			&durationMS,
			&run.Requests,
			&run.Pages,
			&run.MaxDepth,
			&partial,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Started = parseTimestamp(started)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		run.Partial = partial != 0
		results = append(results, run)
	}

	return results, rows.Err()
}

// PageRecord is one stored page visit of a run.
type PageRecord struct {
	// URL is the visited page.
	URL string

	// Depth is the traversal depth the page was reached at.
	Depth int

	// Status is the recorded status code (0 for transport failures).
	Status int
}

// GetRunPages returns every page row of one run in insertion order.
func (hdb *HistoryDB) GetRunPages(ctx context.Context, runID int64) ([]PageRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT url, depth, status FROM pages
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var page PageRecord
		if err := rows.Scan(&page.URL, &page.Depth, &page.Status); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		results = append(results, page)
	}

	return results, rows.Err()
}

// boolToInt maps a bool onto SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
