package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/engine"
)

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emit <event>",
		Short: "Emit a desktop event (not yet implemented)",
		Long: `Dispatch a desktop integration event. Event delivery is not
implemented yet: in a desktop session the result is an UNIMPLEMENTED
error, and in a headless environment it is an UNSUPPORTED skip.
Events: ` + strings.Join(engine.EmitEvents, ", ") + `.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runEmit(opts *RootOptions, event string, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec := engine.NewPlatformContext(cfg)

	res := engine.Emit(event, ec)
	return finishRun(cmd, opts, cfg, nil, res)
}
