package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/mmx-labs/sitecrawl/internal/model"
)

// stubResponse describes one canned HTTP exchange.
type stubResponse struct {
	status   int
	body     string
	location string
	err      error
}

// stubTransport answers requests from a fixed URL map and records every
// request it sees, including redirect hops the client performs.
type stubTransport struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	requests  []string
	headers   []http.Header
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Real transports fail a request whose context is already done; the
	// stub must do the same or cancellation tests race the client's watcher.
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.requests = append(t.requests, req.URL.String())
	t.headers = append(t.headers, req.Header.Clone())
	resp, ok := t.responses[req.URL.String()]
	t.mu.Unlock()

	if !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
			Request:    req,
		}, nil
	}
	if resp.err != nil {
		return nil, resp.err
	}

	header := http.Header{}
	if resp.location != "" {
		header.Set("Location", resp.location)
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Header:     header,
		Request:    req,
	}, nil
}

func newStubClient(responses map[string]stubResponse) *http.Client {
	return &http.Client{Transport: &stubTransport{responses: responses}}
}

// TestHTTPFetcherFetch tests outcome classification at the transport edge.
func TestHTTPFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("success returns body", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(map[string]stubResponse{
			"https://site.test/page": {status: 200, body: "<html>hello</html>"},
		})))

		result := fetcher.Fetch(context.Background(), "https://site.test/page")
		if result.Outcome.Kind != model.OutcomeSuccess {
			t.Fatalf("kind = %v, want success", result.Outcome.Kind)
		}
		if result.Outcome.Status != 200 {
			t.Errorf("status = %d, want 200", result.Outcome.Status)
		}
		if string(result.Body) != "<html>hello</html>" {
			t.Errorf("unexpected body %q", result.Body)
		}
	})

	t.Run("4xx and 5xx are HTTP errors without body", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(map[string]stubResponse{
			"https://site.test/missing": {status: 404, body: "not found"},
			"https://site.test/broken":  {status: 503, body: "oops"},
		})))

		for url, want := range map[string]int{
			"https://site.test/missing": 404,
			"https://site.test/broken":  503,
		} {
			result := fetcher.Fetch(context.Background(), url)
			if result.Outcome.Kind != model.OutcomeHTTPError {
				t.Errorf("kind(%s) = %v, want HTTP error", url, result.Outcome.Kind)
			}
			if result.Outcome.Status != want {
				t.Errorf("status(%s) = %d, want %d", url, result.Outcome.Status, want)
			}
			if result.Body != nil {
				t.Errorf("expected no body for %s", url)
			}
		}
	})

	t.Run("network error is a transport failure", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(map[string]stubResponse{
			"https://site.test/dead": {err: errors.New("connection refused")},
		})))

		result := fetcher.Fetch(context.Background(), "https://site.test/dead")
		if result.Outcome.Kind != model.OutcomeTransportFailure {
			t.Errorf("kind = %v, want transport failure", result.Outcome.Kind)
		}
		if result.Outcome.Status != model.TransportFailureCode {
			t.Errorf("status = %d, want %d", result.Outcome.Status, model.TransportFailureCode)
		}
	})

	t.Run("unparseable URL is a transport failure", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(nil)))

		result := fetcher.Fetch(context.Background(), "https://site.test/\x00")
		if result.Outcome.Kind != model.OutcomeTransportFailure {
			t.Errorf("kind = %v, want transport failure", result.Outcome.Kind)
		}
	})

	t.Run("redirects resolve to the final status", func(t *testing.T) {
		t.Parallel()

		transport := &stubTransport{responses: map[string]stubResponse{
			"https://site.test/old":   {status: 301, location: "https://site.test/new"},
			"https://site.test/new":   {status: 302, location: "https://site.test/final"},
			"https://site.test/final": {status: 200, body: "landed"},
		}}
		fetcher := NewHTTPFetcher(WithClient(&http.Client{Transport: transport}))

		result := fetcher.Fetch(context.Background(), "https://site.test/old")
		if result.Outcome.Kind != model.OutcomeSuccess || result.Outcome.Status != 200 {
			t.Errorf("outcome = %+v, want 200 success", result.Outcome)
		}
		if string(result.Body) != "landed" {
			t.Errorf("body = %q, want landing page body", result.Body)
		}
		if len(transport.requests) != 3 {
			t.Errorf("expected 3 hops, got %v", transport.requests)
		}
	})

	t.Run("redirect to an error surfaces the final status", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(map[string]stubResponse{
			"https://site.test/moved": {status: 301, location: "https://site.test/gone"},
			"https://site.test/gone":  {status: 410, body: ""},
		})))

		result := fetcher.Fetch(context.Background(), "https://site.test/moved")
		if result.Outcome.Kind != model.OutcomeHTTPError || result.Outcome.Status != 410 {
			t.Errorf("outcome = %+v, want 410 HTTP error", result.Outcome)
		}
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(
			WithClient(newStubClient(map[string]stubResponse{
				"https://site.test/huge": {status: 200, body: strings.Repeat("x", 100)},
			})),
			WithMaxBodySize(10),
		)

		result := fetcher.Fetch(context.Background(), "https://site.test/huge")
		if result.Outcome.Kind != model.OutcomeSuccess {
			t.Fatalf("kind = %v, want success", result.Outcome.Kind)
		}
		if len(result.Body) != 10 {
			t.Errorf("body length = %d, want 10", len(result.Body))
		}
	})

	t.Run("cancelled context is a transport failure", func(t *testing.T) {
		t.Parallel()

		fetcher := NewHTTPFetcher(WithClient(newStubClient(map[string]stubResponse{
			"https://site.test/page": {status: 200, body: "ok"},
		})))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := fetcher.Fetch(ctx, "https://site.test/page")
		if result.Outcome.Kind != model.OutcomeTransportFailure {
			t.Errorf("kind = %v, want transport failure", result.Outcome.Kind)
		}
	})
}

// TestHTTPFetcherHeaders tests that the identifying headers are sent.
func TestHTTPFetcherHeaders(t *testing.T) {
	t.Parallel()

	transport := &stubTransport{responses: map[string]stubResponse{
		"https://site.test": {status: 200, body: ""},
	}}
	fetcher := NewHTTPFetcher(
		WithClient(&http.Client{Transport: transport}),
		WithUserAgent("custom-agent/2.0"),
	)

	fetcher.Fetch(context.Background(), "https://site.test")

	if len(transport.headers) != 1 {
		t.Fatalf("expected one request, got %d", len(transport.headers))
	}
	if got := transport.headers[0].Get("User-Agent"); got != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want custom-agent/2.0", got)
	}
	if got := transport.headers[0].Get("Accept"); !strings.Contains(got, "text/html") {
		t.Errorf("Accept = %q, want a text/html preference", got)
	}
}
