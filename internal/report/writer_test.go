package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// sampleReport builds a small finished crawl for the writer tests.
func sampleReport(t *testing.T) *model.CrawlReport {
	t.Helper()

	report := model.NewCrawlReport("https://example.com", "example.com")
	report.StartedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	report.Duration = 2500 * time.Millisecond

	visits := []struct {
		url     string
		depth   int
		outcome model.Outcome
	}{
		{"https://example.com", 0, model.Success(200)},
		{"https://example.com/about", 1, model.Success(200)},
		{"https://example.com/missing", 1, model.HTTPError(404)},
		{"https://example.com/down", 1, model.TransportFailure()},
		{"https://example.com/about/team", 2, model.Success(200)},
	}
	for _, v := range visits {
		report.Ledger.Record(v.url, v.depth)
		report.Ledger.CountRequest()
		report.Ledger.Complete(v.url, v.outcome)
	}
	return report
}

// TestMarkdownWriter tests the markdown report structure.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("contains every section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(sampleReport(t))
		if err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if n == 0 {
			t.Fatal("expected bytes to be written")
		}

		out := buf.String()
		for _, want := range []string{
			"# Site Crawl Report: https://example.com",
			"## Summary",
			"## Status Breakdown",
			"## Errors",
			"## Pages by Depth",
			"### HTTP 404",
			"### Connection Failures",
			"### Depth 0",
			"### Depth 2",
			"`https://example.com/missing`",
			"```mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown output missing %q", want)
			}
		}
	})

	t.Run("partial crawl carries a warning", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		report.Partial = true

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "interrupted") {
			t.Error("expected an interruption warning in partial reports")
		}
	})

	t.Run("writing twice produces identical output", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)

		var first, second bytes.Buffer
		if _, err := NewMarkdownWriter(&first).Write(report); err != nil {
			t.Fatalf("first write failed: %v", err)
		}
		if _, err := NewMarkdownWriter(&second).Write(report); err != nil {
			t.Fatalf("second write failed: %v", err)
		}
		if first.String() != second.String() {
			t.Error("expected report generation to be repeatable")
		}
	})

	t.Run("clean crawl omits the errors section", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport("https://example.com", "example.com")
		report.Ledger.Record("https://example.com", 0)
		report.Ledger.CountRequest()
		report.Ledger.Complete("https://example.com", model.Success(200))

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if strings.Contains(buf.String(), "## Errors") {
			t.Error("expected no errors section for an error-free crawl")
		}
	})

	t.Run("empty crawl is still well formed", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport("https://example.com", "example.com")

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "# Site Crawl Report") {
			t.Error("expected the title even with no visits")
		}
		if !strings.Contains(out, "No pages were visited.") {
			t.Error("expected an explicit empty-crawl note")
		}
	})
}

// TestJSONWriter tests the JSON report shape.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport(t)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var decoded struct {
		BaseURL      string `json:"base_url"`
		Domain       string `json:"domain"`
		TotalPages   int    `json:"total_pages"`
		MaxDepth     int    `json:"max_depth_reached"`
		ErrorClasses []struct {
			Code int      `json:"code"`
			URLs []string `json:"urls"`
		} `json:"error_classes"`
		Visits []struct {
			URL   string `json:"url"`
			Depth int    `json:"depth"`
		} `json:"visits"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.BaseURL != "https://example.com" || decoded.Domain != "example.com" {
		t.Errorf("unexpected identity fields: %+v", decoded)
	}
	if decoded.TotalPages != 5 {
		t.Errorf("total_pages = %d, want 5", decoded.TotalPages)
	}
	if decoded.MaxDepth != 2 {
		t.Errorf("max_depth_reached = %d, want 2", decoded.MaxDepth)
	}
	if len(decoded.ErrorClasses) != 2 {
		t.Fatalf("expected 2 error classes, got %d", len(decoded.ErrorClasses))
	}
	if decoded.ErrorClasses[0].Code != 0 || decoded.ErrorClasses[1].Code != 404 {
		t.Errorf("expected classes sorted by code, got %+v", decoded.ErrorClasses)
	}
	if len(decoded.Visits) != 5 {
		t.Errorf("expected 5 visits, got %d", len(decoded.Visits))
	}
}

// TestSimpleWriter tests the terminal report.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("default output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport(t)); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"SITE CRAWL REPORT",
			"Base URL:   https://example.com",
			"SUMMARY",
			"ERRORS",
			"HTTP 404:",
			"Connection failures:",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("simple output missing %q", want)
			}
		}
		if strings.Contains(out, "PAGES BY DEPTH") {
			t.Error("page listing should require verbose mode")
		}
	})

	t.Run("verbose lists pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(sampleReport(t)); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "PAGES BY DEPTH") {
			t.Error("expected the page listing in verbose mode")
		}
		if !strings.Contains(out, "https://example.com/about/team") {
			t.Error("expected deep pages in the listing")
		}
	})
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var md, js bytes.Buffer
	mw := NewMultiWriter(NewMarkdownWriter(&md), NewJSONWriter(&js))

	n, err := mw.Write(sampleReport(t))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != md.Len()+js.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, md.Len()+js.Len())
	}
	if md.Len() == 0 || js.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
