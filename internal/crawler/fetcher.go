package crawler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// DefaultFetchTimeout bounds each request, including redirect hops.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMaxBodySize limits how much of a response body is read for link
// extraction. Larger bodies are truncated, which can only lose links, never
// fail the crawl.
const DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

// FetchResult couples the typed outcome of a fetch with the body needed for
// link extraction. Body is non-nil only for successful responses.
type FetchResult struct {
	// Outcome classifies the fetch: success, HTTP error, or transport failure.
	Outcome model.Outcome

	// Body is the (possibly truncated) response body for successful fetches.
	Body []byte
}

// Fetcher retrieves one URL and classifies the result. Implementations must
// follow redirects and report the final status, honor their configured
// timeout, and fold every network-layer failure into a TransportFailure
// outcome rather than returning an error: the spider interprets outcomes,
// it never catches fetch-level faults.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// HTTPFetcher is the standard Fetcher backed by net/http.
//
// Redirect responses are resolved transparently by the client; the final
// status after redirect resolution is attributed to the originally
// requested URL, and the landing URL is not re-validated or separately
// recorded.
type HTTPFetcher struct {
	// client performs the requests. Its Timeout covers the full exchange.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how many body bytes are read.
	maxBodySize int64
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithClient replaces the underlying HTTP client. Useful for tests and for
// callers that need custom transports.
func WithClient(client *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(timeout time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.client.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize caps the number of response body bytes read per page.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with the default timeout, body cap,
// and user agent.
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{Timeout: DefaultFetchTimeout},
		userAgent:   "sitecrawl/1.0 (+https://github.com/mmx-labs/sitecrawl)",
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves url and classifies the result. It never returns an error:
// request construction failures, DNS errors, connection failures, timeouts,
// and body read failures all become TransportFailure outcomes.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{Outcome: model.TransportFailure()}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{Outcome: model.TransportFailure()}
	}
	defer resp.Body.Close()

	outcome := model.ClassifyStatus(resp.StatusCode)
	if outcome.IsError() {
		return FetchResult{Outcome: outcome}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		// The status arrived but the body did not; the page cannot be
		// trusted for link extraction.
		return FetchResult{Outcome: model.TransportFailure()}
	}

	return FetchResult{Outcome: outcome, Body: body}
}
