package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	JSON    bool
}

// NewRootCommand creates the root command for the appctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "appctl",
		Short: "Headless capability-testing harness",
		Long: `appctl exercises the backend command surface of a desktop app
without a window server: targeted capability probes, environment
diagnosis, scripted scenarios, and a daemon mode over a unix socket.

Every invocation emits a single structured result; pass --json for the
machine-readable envelope.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts.Verbose)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging to stderr")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "output the result as JSON")

	// Add subcommands
	cmd.AddCommand(NewDoctorCommand(opts))
	cmd.AddCommand(NewCallCommand(opts))
	cmd.AddCommand(NewProbeCommand(opts))
	cmd.AddCommand(NewRunScenarioCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewEmitCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// setupLogging routes structured logs to stderr so stdout stays
// reserved for results.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
