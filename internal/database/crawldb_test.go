package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// openTestDB opens a HistoryDB in a per-test temporary directory.
func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return hdb
}

// testReport builds a small crawl report for storage tests.
func testReport(t *testing.T) *model.CrawlReport {
	t.Helper()

	report := model.NewCrawlReport("https://example.com", "example.com")
	report.StartedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	report.Duration = 1500 * time.Millisecond

	visits := []struct {
		url     string
		depth   int
		outcome model.Outcome
	}{
		{"https://example.com", 0, model.Success(200)},
		{"https://example.com/a", 1, model.Success(200)},
		{"https://example.com/missing", 1, model.HTTPError(404)},
	}
	for _, v := range visits {
		report.Ledger.Record(v.url, v.depth)
		report.Ledger.CountRequest()
		report.Ledger.Complete(v.url, v.outcome)
	}
	return report
}

// TestOpenRequiresExistingDatabase tests the CreateIfNotExists option.
func TestOpenRequiresExistingDatabase(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nonexistent")
	opts := DefaultOptions()
	opts.CreateIfNotExists = false

	if _, err := Open(dir, opts); err == nil {
		t.Error("expected an error when the database file is missing")
	}
}

// TestSaveAndListRuns tests the full save/list round trip.
func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	runID, err := hdb.SaveCrawlReport(ctx, testReport(t))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	if runID == 0 {
		t.Error("expected a non-zero run ID")
	}

	runs, err := hdb.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.BaseURL != "https://example.com" || run.Domain != "example.com" {
		t.Errorf("unexpected run identity: %+v", run)
	}
	if run.Pages != 3 {
		t.Errorf("pages = %d, want 3", run.Pages)
	}
	if run.Requests != 3 {
		t.Errorf("requests = %d, want 3", run.Requests)
	}
	if run.MaxDepth != 1 {
		t.Errorf("max depth = %d, want 1", run.MaxDepth)
	}
	if run.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v, want 1.5s", run.Duration)
	}
	if run.Partial {
		t.Error("expected a complete run")
	}
	if run.Started.IsZero() {
		t.Error("expected a parsed start time")
	}
}

// TestSavePartialRun tests that interruption is persisted.
func TestSavePartialRun(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	report := testReport(t)
	report.Partial = true

	if _, err := hdb.SaveCrawlReport(ctx, report); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	runs, err := hdb.ListRuns(ctx, "", 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 || !runs[0].Partial {
		t.Errorf("expected the run to be marked partial, got %+v", runs)
	}
}

// TestListRunsFilters tests the domain filter and the limit.
func TestListRunsFilters(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	for i, domain := range []string{"a.com", "a.com", "b.com"} {
		report := model.NewCrawlReport("https://"+domain, domain)
		report.StartedAt = time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC)
		report.Ledger.Record(report.BaseURL, 0)
		report.Ledger.CountRequest()
		report.Ledger.Complete(report.BaseURL, model.Success(200))
		if _, err := hdb.SaveCrawlReport(ctx, report); err != nil {
			t.Fatalf("failed to save report: %v", err)
		}
	}

	byDomain, err := hdb.ListRuns(ctx, "a.com", 0)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(byDomain) != 2 {
		t.Errorf("expected 2 runs for a.com, got %d", len(byDomain))
	}

	limited, err := hdb.ListRuns(ctx, "", 1)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected the limit to apply, got %d runs", len(limited))
	}
	// Newest first.
	if limited[0].Domain != "b.com" {
		t.Errorf("expected the most recent run first, got %+v", limited[0])
	}
}

// TestGetRunPages tests the per-run page listing.
func TestGetRunPages(t *testing.T) {
	t.Parallel()

	hdb := openTestDB(t)
	ctx := context.Background()

	runID, err := hdb.SaveCrawlReport(ctx, testReport(t))
	if err != nil {
		t.Fatalf("failed to save report: %v", err)
	}

	pages, err := hdb.GetRunPages(ctx, runID)
	if err != nil {
		t.Fatalf("failed to get pages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if pages[0].URL != "https://example.com" || pages[0].Depth != 0 || pages[0].Status != 200 {
		t.Errorf("unexpected first page: %+v", pages[0])
	}
	if pages[2].Status != 404 {
		t.Errorf("expected the 404 page last, got %+v", pages[2])
	}

	// Unknown run IDs return no rows, not an error.
	empty, err := hdb.GetRunPages(ctx, runID+999)
	if err != nil {
		t.Fatalf("unexpected error for unknown run: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no pages for an unknown run, got %d", len(empty))
	}
}
