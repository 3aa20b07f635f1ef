package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/engine"
)

// ProbeOptions holds flags for the probe command.
type ProbeOptions struct {
	*RootOptions
	Artifacts string
}

// NewProbeCommand creates the probe command.
func NewProbeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProbeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "probe <target>",
		Short: "Run a targeted capability check",
		Long: `Run a self-contained capability check against one subsystem.
Probes create their own disposable state and clean it up regardless of
outcome. Targets: ` + strings.Join(engine.ProbeNames, ", ") + `.

Example:
  appctl probe filesystem
  appctl probe network --json
  appctl probe clipboard --artifacts ./out`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Artifacts, "artifacts", "", "directory for per-run artifacts")

	return cmd
}

func runProbe(opts *ProbeOptions, target string, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec, w, err := newRunEnv(cfg, opts.Artifacts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare artifacts directory", err)
	}

	if w != nil {
		w.Event("start", map[string]any{"command": "probe", "target": target})
	}
	res := engine.RunProbe(cmd.Context(), target, ec)
	if w != nil {
		w.Event("complete", map[string]any{"status": res.Status})
	}

	return finishRun(cmd, opts.RootOptions, cfg, w, res)
}
