package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/engine"
)

// DoctorOptions holds flags for the doctor command.
type DoctorOptions struct {
	*RootOptions
	Out string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DoctorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Collect environment facts and emit an env summary",
		Long: `Collect facts about the host environment: OS and kernel versions,
architecture, user identity, headless detection, session and display
server, and proxy configuration. Doctor always reports status pass;
facts it cannot determine are reported as "unknown".

Example:
  appctl doctor
  appctl doctor --json --out /tmp/doctor.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "also write the result JSON to this path")

	return cmd
}

func runDoctor(opts *DoctorOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec := engine.NewPlatformContext(cfg)

	res := engine.RunDoctor(ec)

	if opts.Out != "" {
		raw, err := json.MarshalIndent(&res, "", "  ")
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
		if err := os.WriteFile(opts.Out, append(raw, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write result file", err)
		}
	}

	return finishRun(cmd, opts.RootOptions, cfg, nil, res)
}
