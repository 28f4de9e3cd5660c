package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoBaseURL is returned when no starting URL is specified.
	ErrNoBaseURL = errors.New("no base URL specified: provide a starting URL as the first argument")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	// Use 0 to crawl only the starting page.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Use 0 to disable the cap.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	// Zero workers would mean no fetching at all.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidDelay is returned when the request delay is negative.
	// A negative delay is invalid; use 0 for no spacing between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
