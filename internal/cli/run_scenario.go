package cli

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/engine"
	"github.com/probekit/appctl/internal/result"
	"github.com/probekit/appctl/internal/scenario"
)

// RunScenarioOptions holds flags for the run-scenario command.
type RunScenarioOptions struct {
	*RootOptions
	Artifacts string
}

// NewRunScenarioCommand creates the run-scenario command.
func NewRunScenarioCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunScenarioOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run-scenario <file>",
		Short: "Run a scripted scenario from a YAML file",
		Long: `Run a sequence of calls and probes declared in a YAML scenario
file. Steps run strictly in order and the run stops at the first step
whose status does not match its expectation.

Example:
  appctl run-scenario smoke.yaml
  appctl run-scenario smoke.yaml --json --artifacts ./out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Artifacts, "artifacts", "", "directory for per-run artifacts")

	return cmd
}

func runScenario(opts *RunScenarioOptions, path string, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec, w, err := newRunEnv(cfg, opts.Artifacts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare artifacts directory", err)
	}

	target := filepath.Base(path)

	sc, err := scenario.LoadFile(path)
	if err != nil {
		code := result.CodeInvalidInput
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			code = result.CodeIOError
		}
		b := result.NewBuilder(ec.NewRunID(), "run-scenario", ec.Env())
		res := b.Error(target, code, err.Error())
		return finishRun(cmd, opts.RootOptions, cfg, w, res)
	}

	var sink scenario.EventSink
	if w != nil {
		sink = w
	}
	res := scenario.Run(cmd.Context(), sc, ec, engine.NewRegistry(), sink)

	return finishRun(cmd, opts.RootOptions, cfg, w, res)
}
