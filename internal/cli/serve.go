package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/daemon"
	"github.com/probekit/appctl/internal/engine"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Socket string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start daemon mode over a unix socket",
		Long: `Serve the command surface over a unix domain socket using
newline-delimited JSON. Each request line {"id", "method", "params"} is
answered with a {"id", "result"} line carrying a full result envelope.

Example:
  appctl serve --socket /tmp/appctl.sock`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Socket, "socket", "", "path for the unix domain socket (required)")
	_ = cmd.MarkFlagRequired("socket")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ec := engine.NewPlatformContext(cfg)
	srv := daemon.NewServer(opts.Socket, engine.NewRegistry(), ec, slog.Default())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := srv.ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitCommandError, "daemon error", err)
	}
	return nil
}
