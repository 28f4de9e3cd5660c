package model

import "fmt"

// OutcomeKind discriminates the variants of an Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess indicates the request completed with a status below 400.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeHTTPError indicates the server answered with a status of 400 or above.
	OutcomeHTTPError

	// OutcomeTransportFailure indicates the request never produced an HTTP
	// status: DNS failure, connection refused, timeout, malformed response,
	// or any other fetch-level fault.
	OutcomeTransportFailure
)

// TransportFailureCode is the status code recorded for transport failures.
// Requests that never reached the HTTP layer have no real status, so they
// are bucketed under 0 for classification and reporting.
const TransportFailureCode = 0

// Outcome is the typed result of fetching one URL.
//
// Design decision: We represent fetch results as a tagged value rather than
// an error return so the orchestrator's handling is total: every fetch yields
// exactly one of Success, HTTPError, or TransportFailure, and nothing at the
// fetch level is ever signalled through raised errors.
type Outcome struct {
	// Kind is the variant tag.
	Kind OutcomeKind `json:"kind"`

	// Status is the final HTTP status code after redirect resolution.
	// It is TransportFailureCode (0) for transport failures.
	Status int `json:"status"`
}

// Success creates an Outcome for a completed request with a status below 400.
func Success(status int) Outcome {
	return Outcome{Kind: OutcomeSuccess, Status: status}
}

// HTTPError creates an Outcome for a server error response (status >= 400).
func HTTPError(status int) Outcome {
	return Outcome{Kind: OutcomeHTTPError, Status: status}
}

// TransportFailure creates an Outcome for a request that failed below the
// HTTP layer.
func TransportFailure() Outcome {
	return Outcome{Kind: OutcomeTransportFailure, Status: TransportFailureCode}
}

// ClassifyStatus builds the Outcome for a response that produced an HTTP
// status code.
func ClassifyStatus(status int) Outcome {
	if status >= 400 {
		return HTTPError(status)
	}
	return Success(status)
}

// IsError reports whether the outcome belongs in an error class bucket.
func (o Outcome) IsError() bool {
	return o.Kind == OutcomeHTTPError || o.Kind == OutcomeTransportFailure
}

// ErrorClass returns the error class code for this outcome and whether the
// outcome is classified as an error at all. Transport failures map to
// TransportFailureCode, HTTP errors map to their status code.
func (o Outcome) ErrorClass() (int, bool) {
	if !o.IsError() {
		return 0, false
	}
	return o.Status, true
}

// String returns a short human-readable form, e.g. "200 OK" or "FAILED".
func (o Outcome) String() string {
	return fmt.Sprintf("%d %s", o.Status, StatusLabel(o.Status))
}

// StatusLabel returns the report label for a recorded status code.
func StatusLabel(status int) string {
	switch {
	case status == TransportFailureCode:
		return "FAILED"
	case status == 200:
		return "OK"
	case status >= 400:
		return "ERROR"
	default:
		return "OTHER"
	}
}
