package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// MarkdownWriter outputs crawl reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format. The report is read-only
// input; calling Write twice with the same report produces the same bytes.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeStatusBreakdown(md, report)
	w.writeErrors(md, report)
	w.writePagesByDepth(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and the run-level metadata table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Site Crawl Report: " + report.BaseURL)
	md.PlainText("")

	if report.Partial {
		md.Warning("The crawl was interrupted before completion. This report reflects only the pages visited so far.")
		md.PlainText("")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + report.BaseURL + "`"},
			{"Domain", "`" + report.Domain + "`"},
			{"Start Time", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration.Round(time.Millisecond).String()},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the run status cell for the metadata table.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Partial {
		return "⚠️ Interrupted (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the crawl totals section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Summary")
	md.PlainText("")

	ledger := report.Ledger
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Total Requests", strconv.Itoa(ledger.Requests())},
			{"Total Pages Visited", strconv.Itoa(ledger.Len())},
			{"Max Depth Reached", strconv.Itoa(ledger.MaxDepth())},
			{"Error Pages", strconv.Itoa(w.errorTotal(report))},
		},
	})
	md.PlainText("")
}

// errorTotal counts visits across every error class.
func (w *MarkdownWriter) errorTotal(report *model.CrawlReport) int {
	total := 0
	for _, class := range report.Ledger.ErrorClasses() {
		total += len(class.URLs)
	}
	return total
}

// writeStatusBreakdown writes the status histogram table and pie chart.
func (w *MarkdownWriter) writeStatusBreakdown(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Status Breakdown")
	md.PlainText("")

	histogram := report.StatusHistogram()
	if len(histogram) == 0 {
		md.PlainText("No pages were visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(histogram))
	for i, sc := range histogram {
		rows[i] = []string{statusCell(sc.Status), sc.Label, strconv.Itoa(sc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Class", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, histogram)
}

// statusCell formats one status code for display. Code 0 means the request
// never produced an HTTP response.
func statusCell(status int) string {
	if status == model.TransportFailureCode {
		return "(no response)"
	}
	return strconv.Itoa(status)
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, histogram []model.StatusCount) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Status Distribution"),
		piechart.WithShowData(true),
	)

	for _, sc := range histogram {
		chart.LabelAndIntValue(
			fmt.Sprintf("%s (%s)", statusCell(sc.Status), sc.Label),
			uint64(sc.Count),
		)
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeErrors writes one section per error class, codes ascending, URLs in
// discovery order. A crawl with no errors gets no section at all.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.CrawlReport) {
	classes := report.Ledger.ErrorClasses()
	if len(classes) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")

	for _, class := range classes {
		if class.Code == model.TransportFailureCode {
			md.PlainText("### Connection Failures")
		} else {
			md.PlainTextf("### HTTP %d (%d page(s))", class.Code, len(class.URLs))
		}
		md.PlainText("")

		items := make([]string, len(class.URLs))
		for i, u := range class.URLs {
			items[i] = "`" + u + "`"
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writePagesByDepth writes every visited page grouped by traversal depth.
func (w *MarkdownWriter) writePagesByDepth(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Pages by Depth")
	md.PlainText("")

	groups := report.VisitsByDepth()
	if len(groups) == 0 {
		md.PlainText("No pages were visited.")
		md.PlainText("")
		return
	}

	for _, group := range groups {
		md.PlainTextf("### Depth %d (%d page(s))", group.Depth, len(group.Records))
		md.PlainText("")

		items := make([]string, len(group.Records))
		for i, rec := range group.Records {
			items[i] = fmt.Sprintf("`%s` [%s]", rec.URL, statusCell(rec.Outcome.Status))
		}
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [sitecrawl](https://github.com/mmx-labs/sitecrawl)*")
}
