package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/engine"
	"github.com/probekit/appctl/internal/result"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Args      string
	Timeout   time.Duration
	Artifacts string
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <command>",
		Short: "Invoke a backend command by name with JSON args",
		Long: `Invoke a registered backend command and report its result.

Example:
  appctl call ping
  appctl call read_file --args '{"path":"/etc/hostname"}' --json
  appctl call write_file --args '{"path":"/tmp/x","content":"hi"}' --artifacts ./out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Args, "args", "{}", "JSON arguments for the command")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "overall time budget (default from config)")
	cmd.Flags().StringVar(&opts.Artifacts, "artifacts", "", "directory for per-run artifacts")

	return cmd
}

func runCall(opts *CallOptions, name string, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec, w, err := newRunEnv(cfg, opts.Artifacts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare artifacts directory", err)
	}

	args, err := parseArgs(opts.Args)
	if err != nil {
		b := result.NewBuilder(ec.NewRunID(), "call", ec.Env())
		res := b.Error(name, result.CodeInvalidInput, err.Error())
		return finishRun(cmd, opts.RootOptions, cfg, w, res)
	}

	timeout := cfg.StepTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if w != nil {
		w.Event("start", map[string]any{"command": "call", "target": name})
	}
	res := engine.NewRegistry().Execute(ctx, name, args, ec)
	if w != nil {
		w.Event("complete", map[string]any{"status": res.Status})
	}

	return finishRun(cmd, opts.RootOptions, cfg, w, res)
}

// parseArgs decodes the --args JSON object.
func parseArgs(raw string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("--args is not a JSON object: %v", err)
	}
	return args, nil
}
