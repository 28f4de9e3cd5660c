package model

import (
	"sort"
	"time"
)

// CrawlReport bundles a finished (or interrupted) crawl's ledger with the
// run-level metadata the report writers and the history database need.
type CrawlReport struct {
	// BaseURL is the normalized starting URL of the crawl.
	BaseURL string `json:"base_url"`

	// Domain is the host the crawl was restricted to.
	Domain string `json:"domain"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall-clock time of the crawl.
	Duration time.Duration `json:"duration"`

	// Partial is true when the crawl was interrupted before natural
	// completion; the ledger reflects only the work done so far.
	Partial bool `json:"partial"`

	// Ledger holds the per-URL results.
	Ledger *Ledger `json:"-"`
}

// NewCrawlReport creates a CrawlReport around an empty ledger.
func NewCrawlReport(baseURL, domain string) *CrawlReport {
	return &CrawlReport{
		BaseURL:   baseURL,
		Domain:    domain,
		StartedAt: time.Now(),
		Ledger:    NewLedger(),
	}
}

// StatusCount is one row of the status-code histogram.
type StatusCount struct {
	// Status is the recorded status code (0 for transport failures).
	Status int `json:"status"`

	// Label is the human-readable classification of the code.
	Label string `json:"label"`

	// Count is the number of visited URLs that recorded this code.
	Count int `json:"count"`
}

// StatusHistogram returns per-status counts over all completed visits,
// sorted by status code ascending.
func (r *CrawlReport) StatusHistogram() []StatusCount {
	counts := make(map[int]int)
	for _, v := range r.Ledger.Visits() {
		counts[v.Outcome.Status]++
	}

	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	histogram := make([]StatusCount, 0, len(codes))
	for _, code := range codes {
		histogram = append(histogram, StatusCount{
			Status: code,
			Label:  StatusLabel(code),
			Count:  counts[code],
		})
	}
	return histogram
}

// DepthGroup lists the visits recorded at one depth, sorted by URL.
type DepthGroup struct {
	// Depth is the traversal depth shared by all records in the group.
	Depth int `json:"depth"`

	// Records are the visits at this depth in lexicographic URL order.
	Records []VisitRecord `json:"records"`
}

// VisitsByDepth groups completed visits by depth ascending, URLs sorted
// lexicographically within each group.
func (r *CrawlReport) VisitsByDepth() []DepthGroup {
	byDepth := make(map[int][]VisitRecord)
	for _, v := range r.Ledger.Visits() {
		byDepth[v.Depth] = append(byDepth[v.Depth], v)
	}

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	groups := make([]DepthGroup, 0, len(depths))
	for _, d := range depths {
		records := byDepth[d]
		sort.Slice(records, func(i, j int) bool {
			return records[i].URL < records[j].URL
		})
		groups = append(groups, DepthGroup{Depth: d, Records: records})
	}
	return groups
}

// JSONReport is the shape serialized by the JSON report writer. It flattens
// the ledger into explicit sections so consumers do not need to understand
// ledger internals.
type JSONReport struct {
	BaseURL       string        `json:"base_url"`
	Domain        string        `json:"domain"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      string        `json:"duration"`
	Partial       bool          `json:"partial"`
	TotalRequests int           `json:"total_requests"`
	TotalPages    int           `json:"total_pages"`
	MaxDepth      int           `json:"max_depth_reached"`
	StatusCounts  []StatusCount `json:"status_counts"`
	ErrorClasses  []ErrorClass  `json:"error_classes,omitempty"`
	Visits        []VisitRecord `json:"visits"`
}

// NewJSONReport flattens a CrawlReport for JSON serialization.
func NewJSONReport(r *CrawlReport) *JSONReport {
	return &JSONReport{
		BaseURL:       r.BaseURL,
		Domain:        r.Domain,
		StartedAt:     r.StartedAt,
		Duration:      r.Duration.String(),
		Partial:       r.Partial,
		TotalRequests: r.Ledger.Requests(),
		TotalPages:    r.Ledger.Len(),
		MaxDepth:      r.Ledger.MaxDepth(),
		StatusCounts:  r.StatusHistogram(),
		ErrorClasses:  r.Ledger.ErrorClasses(),
		Visits:        r.Ledger.Visits(),
	}
}
