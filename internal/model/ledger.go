package model

import (
	"sort"
	"sync"
)

// VisitRecord is one ledger entry: a canonical URL, the depth at which it was
// first reached, and its fetch outcome. Pending is true until the fetch for
// the URL completes.
type VisitRecord struct {
	// URL is the canonical crawl target (scheme+host+path, no fragment/query).
	URL string `json:"url"`

	// Depth is the traversal depth at which the URL was first discovered.
	// The first recorded depth is permanent even if a shorter path to the
	// same URL is found later.
	Depth int `json:"depth"`

	// Outcome is the fetch result. Only meaningful once Pending is false.
	Outcome Outcome `json:"outcome"`

	// Pending is true while the fetch for this URL is still in flight.
	Pending bool `json:"pending,omitempty"`
}

// Ledger is the authoritative record of all URLs visited during one crawl.
//
// The ledger owns the visited set: Record is the single atomic
// check-and-insert used for deduplication, so concurrent workers racing to
// visit the same URL resolve consistently (exactly one wins). Status is
// written exactly once per URL via Complete, and error-classified URLs are
// appended to their class bucket in completion order.
//
// Design decision: The ledger is an explicit object owned by the crawl
// invocation, never ambient package state. Its lifetime equals one crawl
// call, which keeps repeated or concurrent crawls in the same process safe.
type Ledger struct {
	mu sync.Mutex

	// records maps canonical URL to its visit record.
	records map[string]*VisitRecord

	// errorClasses maps an error class code (0 for transport failures,
	// the HTTP status for server errors) to URLs in discovery order.
	errorClasses map[int][]string

	// order preserves insertion order of visited URLs.
	order []string

	// requests counts fetches actually issued.
	requests int
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records:      make(map[string]*VisitRecord),
		errorClasses: make(map[int][]string),
	}
}

// Record inserts url at the given depth if it has not been seen before.
// It returns true if the URL was inserted, false if it was already present.
// Check and insert happen under one lock acquisition, so under concurrency
// at most one caller wins and the first recorded depth is final.
func (l *Ledger) Record(url string, depth int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[url]; ok {
		return false
	}
	l.records[url] = &VisitRecord{URL: url, Depth: depth, Pending: true}
	l.order = append(l.order, url)
	return true
}

// Complete finalizes the record for url with the fetch outcome. The status
// is written exactly once: completing an unknown or already-completed URL is
// a no-op. Error outcomes are appended to their error class bucket.
func (l *Ledger) Complete(url string, outcome Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[url]
	if !ok || !rec.Pending {
		return
	}
	rec.Outcome = outcome
	rec.Pending = false

	if class, isErr := outcome.ErrorClass(); isErr {
		l.errorClasses[class] = append(l.errorClasses[class], url)
	}
}

// Drop removes a still-pending record for url. It is used when a crawl is
// cancelled between recording a URL and issuing its fetch, so an interrupted
// run never reports a visit that has no status.
func (l *Ledger) Drop(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[url]
	if !ok || !rec.Pending {
		return
	}
	delete(l.records, url)
	for i, u := range l.order {
		if u == url {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// CountRequest increments the issued-request counter.
func (l *Ledger) CountRequest() {
	l.mu.Lock()
	l.requests++
	l.mu.Unlock()
}

// Seen reports whether url is already recorded.
func (l *Ledger) Seen(url string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.records[url]
	return ok
}

// Len returns the number of recorded URLs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Requests returns the number of fetches issued.
func (l *Ledger) Requests() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.requests
}

// Lookup returns a copy of the visit record for url, if present.
func (l *Ledger) Lookup(url string) (VisitRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[url]
	if !ok {
		return VisitRecord{}, false
	}
	return *rec, true
}

// Visits returns copies of all completed visit records in discovery order.
// Still-pending records are excluded so an interrupted crawl never exposes
// a record without a status.
func (l *Ledger) Visits() []VisitRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	visits := make([]VisitRecord, 0, len(l.order))
	for _, url := range l.order {
		rec := l.records[url]
		if rec.Pending {
			continue
		}
		visits = append(visits, *rec)
	}
	return visits
}

// ErrorClasses returns the error class codes in ascending order together
// with their URLs in discovery order.
func (l *Ledger) ErrorClasses() []ErrorClass {
	l.mu.Lock()
	defer l.mu.Unlock()

	codes := make([]int, 0, len(l.errorClasses))
	for code := range l.errorClasses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	classes := make([]ErrorClass, 0, len(codes))
	for _, code := range codes {
		urls := make([]string, len(l.errorClasses[code]))
		copy(urls, l.errorClasses[code])
		classes = append(classes, ErrorClass{Code: code, URLs: urls})
	}
	return classes
}

// MaxDepth returns the deepest depth among completed records, or 0 for an
// empty ledger.
func (l *Ledger) MaxDepth() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	max := 0
	for _, rec := range l.records {
		if !rec.Pending && rec.Depth > max {
			max = rec.Depth
		}
	}
	return max
}

// ErrorClass groups the URLs that share one error class code.
type ErrorClass struct {
	// Code is the error class: TransportFailureCode for transport failures,
	// the HTTP status code otherwise.
	Code int `json:"code"`

	// URLs lists the failing URLs in discovery order.
	URLs []string `json:"urls"`
}
