package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/probekit/appctl/internal/artifact"
	"github.com/probekit/appctl/internal/config"
	"github.com/probekit/appctl/internal/engine"
	"github.com/probekit/appctl/internal/history"
	"github.com/probekit/appctl/internal/result"
)

// newRunEnv builds the execution context for one invocation, plus an
// artifact writer when a directory was requested. The writer needs the
// run id before anything executes, so the context's id generator is
// pinned to a pre-generated id; nested results still draw fresh ids.
func newRunEnv(cfg config.Config, artifactsDir string) (*engine.Context, *artifact.Writer, error) {
	if artifactsDir == "" {
		return engine.NewPlatformContext(cfg), nil, nil
	}

	runID := result.UUIDv7Generator{}.Generate()
	w, err := artifact.NewWriter(artifactsDir, runID)
	if err != nil {
		return nil, nil, err
	}
	ec := engine.NewPlatformContext(cfg, engine.WithRunIDs(result.NewPinnedGenerator(runID)))
	return ec, w, nil
}

// finishRun completes a result-producing command: persist the artifact,
// record history, print the result, and map its status to the process
// exit contract. Artifact and history writes are best-effort; only a
// rendering failure changes the outcome.
func finishRun(cmd *cobra.Command, opts *RootOptions, cfg config.Config, w *artifact.Writer, res result.CommandResult) error {
	if w != nil {
		if err := w.WriteResult(&res); err != nil {
			slog.Warn("failed to write result artifact", "run_id", res.RunID, "error", err)
		}
	}
	recordHistory(cfg, &res)

	if err := PrintResult(cmd.OutOrStdout(), &res, opts.JSON); err != nil {
		return WrapExitError(ExitCommandError, "failed to render result", err)
	}
	return statusExit(&res)
}

// recordHistory appends the run to the history index when one is
// configured. Never changes the run's outcome.
func recordHistory(cfg config.Config, res *result.CommandResult) {
	if cfg.HistoryDB == "" {
		return
	}
	st, err := history.Open(cfg.HistoryDB)
	if err != nil {
		slog.Warn("failed to open history index", "path", cfg.HistoryDB, "error", err)
		return
	}
	defer st.Close()
	if err := st.Record(context.Background(), res); err != nil {
		slog.Warn("failed to record run", "run_id", res.RunID, "error", err)
	}
}

// loadConfig wraps config errors with the command-error exit code.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}
