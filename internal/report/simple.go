package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full per-depth page listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the full page listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeErrors(&sb, report)
	if w.verbose {
		w.writePages(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SITE CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Base URL:   %s\n", report.BaseURL))
	sb.WriteString(fmt.Sprintf("Domain:     %s\n", report.Domain))
	sb.WriteString(fmt.Sprintf("Start Time: %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", report.Duration.Round(time.Millisecond)))

	if report.Partial {
		sb.WriteString("Status:     INTERRUPTED (partial results)\n")
	} else {
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the totals and the status histogram.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	ledger := report.Ledger
	sb.WriteString(fmt.Sprintf("  Requests:   %d\n", ledger.Requests()))
	sb.WriteString(fmt.Sprintf("  Pages:      %d\n", ledger.Len()))
	sb.WriteString(fmt.Sprintf("  Max Depth:  %d\n", ledger.MaxDepth()))
	sb.WriteString("\n")

	for _, sc := range report.StatusHistogram() {
		sb.WriteString(fmt.Sprintf("  [%s] %-6s %d page(s)\n", statusCell(sc.Status), sc.Label, sc.Count))
	}
	sb.WriteString("\n")
}

// writeErrors writes every error class with its URLs in discovery order.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.CrawlReport) {
	classes := report.Ledger.ErrorClasses()
	if len(classes) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ERRORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, class := range classes {
		if class.Code == model.TransportFailureCode {
			sb.WriteString("  Connection failures:\n")
		} else {
			sb.WriteString(fmt.Sprintf("  HTTP %d:\n", class.Code))
		}
		for _, u := range class.URLs {
			sb.WriteString(fmt.Sprintf("    * %s\n", u))
		}
	}
	sb.WriteString("\n")
}

// writePages writes the full visited-page listing grouped by depth.
func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES BY DEPTH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, group := range report.VisitsByDepth() {
		sb.WriteString(fmt.Sprintf("  Depth %d:\n", group.Depth))
		for _, rec := range group.Records {
			sb.WriteString(fmt.Sprintf("    [%s] %s\n", statusCell(rec.Outcome.Status), rec.URL))
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by sitecrawl\n")
	sb.WriteString("https://github.com/mmx-labs/sitecrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
