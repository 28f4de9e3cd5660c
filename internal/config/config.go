package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values favor polite crawling over speed: a small depth, a one-second
// spacing between requests, and a single worker.
const (
	// DefaultTimeout is the per-request timeout including redirect hops.
	// 30 seconds is generous for ordinary sites while still bounding how
	// long one slow page can stall the crawl.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth limits how far the crawl descends from the starting
	// URL. Depth 0 means only fetch the starting page. Three levels cover
	// most site structures without exploding the page count.
	DefaultMaxDepth = 3

	// DefaultMaxPages is the maximum number of pages to visit in one run.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 500

	// DefaultWorkers is the number of concurrent fetch workers. A single
	// worker gives a deterministic depth-first walk; raising it trades
	// determinism for throughput.
	DefaultWorkers = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "sitecrawl"

	// DefaultDelay is the minimum spacing between requests.
	// This is a politeness setting to avoid overwhelming the target site.
	// 1 second is conservative and respectful of server resources.
	// Can be adjusted via the --delay CLI flag.
	DefaultDelay = 1 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify crawler traffic in their logs.
	DefaultUserAgent = "sitecrawl/1.0 (+https://github.com/mmx-labs/sitecrawl)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for a crawl run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// BaseURL is the starting URL of the crawl. A bare hostname is
	// accepted and upgraded to https.
	BaseURL string

	// Timeout is the per-request timeout, including redirect hops.
	Timeout time.Duration

	// MaxDepth is the maximum traversal depth from the starting URL.
	// Depth 0 means only fetch the starting page.
	MaxDepth int

	// MaxPages is the maximum number of pages to visit in one run.
	// A value of 0 disables the cap.
	MaxPages int

	// Workers is the number of concurrent fetch workers. 1 selects the
	// deterministic sequential depth-first walk.
	Workers int

	// Delay is the minimum spacing between requests (politeness).
	Delay time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sitecrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. Populated by LoadConfigFile and consulted per domain.
	SiteConfigs *File

	// JSONReport enables JSON report output instead of Markdown.
	JSONReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to the XDG data directory (~/.local/share/sitecrawl on Linux).
	DBDir string

	// SaveToDB indicates whether to save the crawl to the history database.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify crawler traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delay).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxDepth:    DefaultMaxDepth,
		MaxPages:    DefaultMaxPages,
		Workers:     DefaultWorkers,
		Delay:       DefaultDelay,
		SaveToDB:    true,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for sitecrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sitecrawl
// On macOS: ~/Library/Application Support/sitecrawl
// On Windows: %LOCALAPPDATA%\sitecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitecrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/sitecrawl
// On macOS: ~/Library/Application Support/sitecrawl
// On Windows: %APPDATA%\sitecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before the crawl begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	// Workers must be positive; zero would mean no fetching at all
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	// Delay must be non-negative
	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	// MaxBodySize must be non-negative; 0 selects the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
