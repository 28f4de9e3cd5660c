package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmx-labs/sitecrawl/internal/config"
	"github.com/mmx-labs/sitecrawl/internal/crawler"
	"github.com/mmx-labs/sitecrawl/internal/database"
	"github.com/mmx-labs/sitecrawl/internal/log"
	"github.com/mmx-labs/sitecrawl/internal/model"
	"github.com/mmx-labs/sitecrawl/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a website and generate a report",
		Long: `Crawl walks the same-domain links of a website to a bounded depth.

Starting from the given URL, it follows links discovered in each page,
skipping other domains, asset files (images, stylesheets, archives), and
administrative paths. Every visited page is recorded with the depth it
was reached at and its final HTTP status; the result is written as a
Markdown report by default.

A bare hostname is accepted and upgraded to https. Interrupting the
crawl (Ctrl-C) stops fetching but still writes a report over the pages
visited so far.

Examples:
  # Crawl with the defaults (depth 3, one request per second)
  sitecrawl crawl https://example.com

  # Deeper crawl with four concurrent workers
  sitecrawl crawl -d 5 -w 4 https://example.com

  # Write a JSON report to a file
  sitecrawl crawl --json -o report.json example.com

  # Use a custom configuration file
  sitecrawl crawl -c myconfig.yaml https://example.com

Configuration file (.sitecrawl) example:
  defaults:
    delaySeconds: 2
  sites:
    example.com:
      depth: 5
      excludePaths:
        - /calendar/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth to follow from the starting URL")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Minimum spacing between requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request, including redirects")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent fetch workers (1 = deterministic depth-first)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to visit (0 = unlimited)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with each request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output a JSON report instead of Markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with credential redaction
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing with partial results...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth")
	if err != nil {
		return nil, err
	}

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	if len(args) > 0 {
		cfg.BaseURL = args[0]
	}

	return cfg, nil
}

// runCrawl executes the crawl and writes the report. A cancelled crawl still
// produces a report over the pages visited so far and exits successfully;
// only a failure to produce the report yields a non-zero exit.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	base, err := crawler.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", cfg.BaseURL, err)
	}

	// Apply per-site overrides from the config file.
	site := cfg.SiteConfigs.GetSiteConfig(base.Host)
	maxDepth := cfg.MaxDepth
	if site.Depth > 0 {
		maxDepth = site.Depth
	}
	delay := cfg.Delay
	if site.DelaySeconds > 0 {
		delay = time.Duration(site.DelaySeconds) * time.Second
	}

	fetcher := crawler.NewHTTPFetcher(
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	)

	spider := crawler.NewSpider(
		crawler.WithFetcher(fetcher),
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithDelay(delay),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithExtraExclusions(site.ExcludeExtensions, site.ExcludePaths),
		crawler.WithLogger(logger),
	)

	fmt.Printf("Crawling %s (depth %d)...\n", base.String(), maxDepth)
	crawlReport, crawlErr := spider.Crawl(ctx, cfg.BaseURL)
	if crawlErr != nil {
		if crawlReport == nil {
			// The base URL never produced a crawl at all.
			return crawlErr
		}
		// Interrupted: report over the partial ledger and exit cleanly.
		fmt.Fprintf(os.Stderr, "Crawl interrupted: %v\n", crawlErr)
	}
	fmt.Printf("Visited %d page(s) in %s\n\n",
		crawlReport.Ledger.Len(), crawlReport.Duration.Round(time.Millisecond))

	if err := outputReport(cfg, crawlReport); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	saveCrawlReport(ctx, cfg, crawlReport, logger)
	return nil
}

// outputReport writes the crawl report in the requested format. When writing
// to the requested file fails, the report falls back to stdout so the crawl's
// results are never silently lost. When the full report goes to a file, a
// short summary is printed to the terminal as well.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	output := os.Stdout
	toFile := false
	if cfg.ReportFile != "" {
		if f, err := openReportFile(cfg.ReportFile); err != nil {
			fmt.Fprintf(os.Stderr, "cannot write to %s (%v); writing report to stdout\n", cfg.ReportFile, err)
		} else {
			defer f.Close()
			output = f
			toFile = true
		}
	}

	var terminal io.Writer
	if toFile {
		terminal = os.Stdout
	}

	_, err := buildReportWriter(cfg, output, terminal).Write(crawlReport)
	return err
}

// buildReportWriter assembles the writer set: the full report in the
// requested format on output, plus a terminal summary when terminal is
// non-nil.
func buildReportWriter(cfg *config.Config, output, terminal io.Writer) report.Writer {
	var w report.Writer
	if cfg.JSONReport {
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	} else {
		w = report.NewMarkdownWriter(output)
	}

	if terminal != nil {
		w = report.NewMultiWriter(w, report.NewSimpleWriter(terminal, report.WithVerbose(cfg.Verbose)))
	}
	return w
}

// openReportFile creates the report file, making parent directories as needed.
func openReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
}

// saveCrawlReport records the crawl in the history database. History is a
// convenience: failures are logged and never fail the run.
func saveCrawlReport(ctx context.Context, cfg *config.Config, crawlReport *model.CrawlReport, logger *slog.Logger) {
	if !cfg.SaveToDB {
		return
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	// The crawl itself is done; saving should not hang on a cancelled context.
	if errors.Is(ctx.Err(), context.Canceled) {
		ctx = context.Background()
	}

	runID, err := db.SaveCrawlReport(ctx, crawlReport)
	if err != nil {
		logger.Warn("failed to save crawl to history", "error", err)
		return
	}
	logger.Info("crawl saved to history", "runID", runID)
}
