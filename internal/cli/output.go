package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/probekit/appctl/internal/result"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // pass or skip
	ExitFailure      = 1 // capability check failed
	ExitCommandError = 2 // harness/runtime error, invalid invocation
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message; empty when the result was already printed
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that carry no code map to ExitCommandError: an invocation the
// harness could not even start counts as a harness error, not a
// capability failure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// PrintResult writes a command result to w in the requested format.
// JSON mode emits the full envelope, indented; text mode renders the
// compact human summary.
func PrintResult(w io.Writer, res *result.CommandResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printHuman(w, res)
	return nil
}

func printHuman(w io.Writer, r *result.CommandResult) {
	fmt.Fprintf(w, "[%s] %s %s\n", statusLabel(r.Status), r.Command, r.Target)
	fmt.Fprintf(w, "  run_id: %s\n", r.RunID)
	fmt.Fprintf(w, "  timing: %dms\n", r.Timing.Total)

	if len(r.Timing.Steps) > 0 {
		names := make([]string, 0, len(r.Timing.Steps))
		for name := range r.Timing.Steps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "    %s: %dms\n", name, r.Timing.Steps[name])
		}
	}

	if r.Error != nil {
		fmt.Fprintf(w, "  error:  %s - %s\n", r.Error.Code, r.Error.Message)
	}

	if len(r.Data) > 0 {
		var pretty []byte
		var buf any
		if err := json.Unmarshal(r.Data, &buf); err == nil {
			pretty, _ = json.MarshalIndent(buf, "  ", "  ")
		}
		if len(pretty) > 0 {
			fmt.Fprintf(w, "  %s\n", pretty)
		}
	}

	fmt.Fprintf(w, "  env: os=%s arch=%s headless=%t\n",
		r.EnvSummary.OS, r.EnvSummary.Arch, r.EnvSummary.Headless)
}

func statusLabel(s result.Status) string {
	switch s {
	case result.StatusPass:
		return "PASS"
	case result.StatusFail:
		return "FAIL"
	case result.StatusSkip:
		return "SKIP"
	default:
		return "ERROR"
	}
}

// statusExit maps a printed result's status to the process exit
// contract. The result has already been written, so fail and error
// return a bare coded error with no message to re-print.
func statusExit(res *result.CommandResult) error {
	if code := res.Status.ExitCode(); code != ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}
