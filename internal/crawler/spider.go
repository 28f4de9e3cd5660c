package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmx-labs/sitecrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// Spider drives the depth-bounded traversal of one site. It consumes the
// admission rules, link extractor, and a Fetcher, and owns the population
// of the crawl ledger.
//
// Design decision: Traversal uses an explicit work list rather than
// recursion, so crawl depth never translates into call-stack depth. With a
// single worker the walk is depth-first with deterministic order; with
// multiple workers each depth level is processed as a concurrent wave and
// the at-most-once-visit invariant is carried by the ledger's atomic
// check-and-insert.
type Spider struct {
	// fetcher retrieves pages and classifies outcomes.
	fetcher Fetcher

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page.
	maxDepth int

	// maxPages caps the total number of pages visited. 0 means no cap.
	maxPages int

	// delay is the minimum spacing between requests (politeness).
	delay time.Duration

	// workers is the number of concurrent fetchers. 1 selects the
	// sequential depth-first walk.
	workers int

	// extraExtensions and extraPaths extend the default admission
	// exclusion sets.
	extraExtensions []string
	extraPaths      []string

	// logger receives per-page progress.
	logger *slog.Logger
}

// Option configures a Spider.
type Option func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) Option {
	return func(s *Spider) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithMaxPages caps the total number of pages to visit. 0 disables the cap.
func WithMaxPages(n int) Option {
	return func(s *Spider) {
		if n >= 0 {
			s.maxPages = n
		}
	}
}

// WithDelay sets the minimum spacing between requests.
func WithDelay(d time.Duration) Option {
	return func(s *Spider) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithWorkers sets the number of concurrent fetch workers. Values below 2
// select the sequential depth-first walk.
func WithWorkers(n int) Option {
	return func(s *Spider) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Spider) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithExtraExclusions extends the default excluded-extension and
// excluded-path sets used by the admission filter.
func WithExtraExclusions(extensions, paths []string) Option {
	return func(s *Spider) {
		s.extraExtensions = extensions
		s.extraPaths = paths
	}
}

// WithLogger sets the logger used for per-page progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider with the given options. Defaults: depth 3,
// one-second delay, single worker, HTTP fetcher with a 30-second timeout.
func NewSpider(opts ...Option) *Spider {
	s := &Spider{
		fetcher:  NewHTTPFetcher(),
		maxDepth: 3,
		delay:    time.Second,
		workers:  1,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// workItem is one pending page visit.
type workItem struct {
	url   string
	depth int
}

// Crawl traverses the site rooted at baseURL and returns the populated
// crawl report. The report is always usable: on cancellation it is marked
// partial and reflects exactly the visits completed before the interrupt,
// with no half-written records. The returned error is non-nil only when the
// context ended the crawl early.
//
// The root URL is visited at depth 0 regardless of its own admission
// eligibility; only discovered links pass through the filter.
func (s *Spider) Crawl(ctx context.Context, baseURL string) (*model.CrawlReport, error) {
	base, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	report := model.NewCrawlReport(base.String(), base.Host)
	rules := NewRules(base.Host, s.extraExtensions, s.extraPaths)
	pace := newPacer(s.delay)

	root := Canonicalize(base.String(), nil)
	if root == "" {
		root = base.String()
	}

	s.logger.Info("starting crawl",
		"baseURL", report.BaseURL,
		"domain", report.Domain,
		"maxDepth", s.maxDepth,
		"delay", s.delay,
		"workers", s.workers,
	)

	start := time.Now()
	if s.workers > 1 {
		err = s.crawlConcurrent(ctx, report, rules, pace, root)
	} else {
		err = s.crawlSequential(ctx, report, rules, pace, root)
	}
	report.Duration = time.Since(start)

	if err != nil {
		report.Partial = true
		s.logger.Warn("crawl interrupted",
			"pagesVisited", report.Ledger.Len(),
			"reason", err,
		)
		return report, err
	}

	s.logger.Info("crawl complete",
		"pagesVisited", report.Ledger.Len(),
		"requests", report.Ledger.Requests(),
		"duration", report.Duration,
	)
	return report, nil
}

// crawlSequential is the single-worker depth-first walk over an explicit
// LIFO stack.
func (s *Spider) crawlSequential(ctx context.Context, report *model.CrawlReport, rules Rules, pace *pacer, root string) error {
	ledger := report.Ledger
	stack := []workItem{{url: root, depth: 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if item.depth > s.maxDepth {
			continue
		}
		if s.maxPages > 0 && ledger.Len() >= s.maxPages {
			s.logger.Debug("page cap reached", "maxPages", s.maxPages)
			break
		}
		if !ledger.Record(item.url, item.depth) {
			continue
		}

		links, err := s.visit(ctx, ledger, rules, pace, item)
		if err != nil {
			return err
		}

		// Reverse push so the first link on the page is visited first.
		for i := len(links) - 1; i >= 0; i-- {
			if !ledger.Seen(links[i]) {
				stack = append(stack, workItem{url: links[i], depth: item.depth + 1})
			}
		}
	}

	return nil
}

// crawlConcurrent processes each depth level as a wave of fetches bounded
// by the worker count. The ledger's atomic check-and-insert resolves dedup
// races; the pacer keeps the global minimum request spacing.
func (s *Spider) crawlConcurrent(ctx context.Context, report *model.CrawlReport, rules Rules, pace *pacer, root string) error {
	ledger := report.Ledger
	frontier := []workItem{{url: root, depth: 0}}

	for depth := 0; depth <= s.maxDepth && len(frontier) > 0; depth++ {
		g, waveCtx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)

		var mu sync.Mutex
		var next []workItem

		for _, item := range frontier {
			g.Go(func() error {
				if s.maxPages > 0 && ledger.Len() >= s.maxPages {
					return nil
				}
				if !ledger.Record(item.url, item.depth) {
					return nil
				}

				links, err := s.visit(waveCtx, ledger, rules, pace, item)
				if err != nil {
					return err
				}

				mu.Lock()
				for _, link := range links {
					if !ledger.Seen(link) {
						next = append(next, workItem{url: link, depth: item.depth + 1})
					}
				}
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		frontier = next
	}

	return nil
}

// visit fetches one page, records its outcome, and returns the admitted
// links to follow. It returns an error only for context cancellation; every
// per-URL failure is folded into the ledger.
func (s *Spider) visit(ctx context.Context, ledger *model.Ledger, rules Rules, pace *pacer, item workItem) ([]string, error) {
	if !pace.wait(ctx) {
		// Cancelled between recording and fetching: forget the record so
		// the report never contains a visit without a status.
		ledger.Drop(item.url)
		return nil, ctx.Err()
	}

	s.logger.Debug("crawling", "url", item.url, "depth", item.depth)

	ledger.CountRequest()
	result := s.fetcher.Fetch(ctx, item.url)

	if ctx.Err() != nil && result.Outcome.Kind == model.OutcomeTransportFailure {
		// The fetch was aborted by cancellation, not by the network.
		ledger.Drop(item.url)
		return nil, ctx.Err()
	}

	ledger.Complete(item.url, result.Outcome)

	if result.Outcome.IsError() {
		s.logger.Warn("fetch failed",
			"url", item.url,
			"status", result.Outcome.Status,
			"label", model.StatusLabel(result.Outcome.Status),
		)
		return nil, nil
	}

	// Descend only through pages that answered 200 and are still below
	// the depth limit.
	if result.Outcome.Status != 200 || item.depth >= s.maxDepth {
		return nil, nil
	}

	return ExtractLinks(result.Body, item.url, rules), nil
}
