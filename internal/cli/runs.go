package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/history"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the history index",
		Long: `List recent runs recorded in the SQLite history index. Recording
is enabled by setting APPCTL_HISTORY_DB to a database path; without it
this command has nothing to read.

Example:
  APPCTL_HISTORY_DB=~/.appctl/history.db appctl runs --limit 10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return NewExitError(ExitCommandError, "history index not configured (set APPCTL_HISTORY_DB)")
	}
	if opts.Limit <= 0 {
		return NewExitError(ExitCommandError, "--limit must be positive")
	}

	st, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history index", err)
	}
	defer st.Close()

	entries, err := st.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history index", err)
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCOMMAND\tTARGET\tSTATUS\tMS\tSTARTED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.RunID, e.Command, e.Target, e.Status, e.TotalMS,
			e.StartedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
