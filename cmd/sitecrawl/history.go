package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmx-labs/sitecrawl/internal/config"
	"github.com/mmx-labs/sitecrawl/internal/database"
)

// NewHistoryCmd creates the history command.
// This command lists crawl runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs",
		Long: `History lists the crawl runs recorded in the local database.

Every crawl is saved automatically unless --no-save was used. The listing
shows when each run happened, how many pages it visited, the deepest level
it reached, and whether it was interrupted.

Examples:
  # Show the 20 most recent runs
  sitecrawl history

  # Show all runs for one domain
  sitecrawl history --domain example.com --limit 0`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("domain", "D", "",
		"Only show runs for this domain")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to show (0 = all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	domain, err := cmd.Flags().GetString("domain")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(config.XDGDataDir(), opts)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl history yet. Run 'sitecrawl crawl <url>' first.")
		return nil
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context(), domain, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching runs found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tBASE URL\tPAGES\tDEPTH\tDURATION\tSTATUS")
	for _, run := range runs {
		status := "complete"
		if run.Partial {
			status = "interrupted"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Started.Format("2006-01-02 15:04"),
			run.BaseURL,
			run.Pages,
			run.MaxDepth,
			run.Duration.Round(time.Millisecond),
			status,
		)
	}
	return w.Flush()
}
