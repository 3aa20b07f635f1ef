// Package result defines the universal output envelope shared by every
// appctl operation: single-shot commands, probes, doctor, scenario runs,
// and daemon responses all produce a CommandResult.
package result

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status classifies the outcome of one operation.
//
// Severity order for exit-code mapping: pass < skip < fail < error.
// Skip means the environment cannot support the operation and that is
// expected; fail means the operation ran but its check failed; error
// means the operation could not run at all.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusSkip  Status = "skip"
	StatusError Status = "error"
)

// ValidStatuses lists the allowed status values in severity order.
var ValidStatuses = []Status{StatusPass, StatusSkip, StatusFail, StatusError}

// IsValid reports whether s is one of the four defined statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusFail, StatusSkip, StatusError:
		return true
	}
	return false
}

// ExitCode maps a status to the process exit code contract:
// 0 for pass/skip, 1 for fail, 2 for error.
func (s Status) ExitCode() int {
	switch s {
	case StatusFail:
		return 1
	case StatusError:
		return 2
	default:
		return 0
	}
}

// ErrorCode is the closed error taxonomy. Every capability-level error
// maps to exactly one code; INTERNAL_ERROR is reserved for defects in
// the harness itself.
type ErrorCode string

const (
	CodeInvalidInput         ErrorCode = "INVALID_INPUT"
	CodeUnsupported          ErrorCode = "UNSUPPORTED"
	CodeUnimplemented        ErrorCode = "UNIMPLEMENTED"
	CodeDependencyMissing    ErrorCode = "DEPENDENCY_MISSING"
	CodePermissionDenied     ErrorCode = "PERMISSION_DENIED"
	CodeNetworkError         ErrorCode = "NETWORK_ERROR"
	CodeIOError              ErrorCode = "IO_ERROR"
	CodeTimeout              ErrorCode = "TIMEOUT"
	CodeExternalInterference ErrorCode = "EXTERNAL_INTERFERENCE"
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
)

// ErrorInfo carries the machine-readable code plus a human message.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Timing records the total duration of an operation and named
// sub-step durations, all in milliseconds.
type Timing struct {
	Total int64            `json:"total"`
	Steps map[string]int64 `json:"steps,omitempty"`
}

// EnvSummary is the per-process environment snapshot attached to every
// result. Derived once and immutable for the life of a run.
type EnvSummary struct {
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	Headless bool   `json:"headless"`
}

// CommandResult is the stable output contract. The field set is
// identical across all commands; Data is an opaque handler-specific
// payload.
//
// Invariant: Status == pass implies Error is nil; Status in
// {fail, error} implies Error is non-nil.
type CommandResult struct {
	RunID      string          `json:"run_id"`
	Command    string          `json:"command"`
	Target     string          `json:"target"`
	Status     Status          `json:"status"`
	Error      *ErrorInfo      `json:"error"`
	Timing     Timing          `json:"timing_ms"`
	Artifacts  []string        `json:"artifacts"`
	EnvSummary EnvSummary      `json:"env_summary"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Validate checks the status/error invariant. A violation is a harness
// defect, never a caller error.
func (r *CommandResult) Validate() error {
	if !r.Status.IsValid() {
		return fmt.Errorf("invalid status %q", r.Status)
	}
	if r.Status == StatusPass && r.Error != nil {
		return fmt.Errorf("status pass with non-nil error (%s)", r.Error.Code)
	}
	if (r.Status == StatusFail || r.Status == StatusError) && r.Error == nil {
		return fmt.Errorf("status %s with nil error", r.Status)
	}
	return nil
}

// SetData marshals v into the opaque Data payload. Marshal failures are
// harness defects; the payload is replaced by an error note so the
// envelope itself always serializes.
func (r *CommandResult) SetData(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(map[string]string{"data_error": err.Error()})
	}
	r.Data = b
}

// Builder assembles CommandResults for one invocation. It pins the
// run ID and environment summary so every result produced during the
// invocation correlates.
type Builder struct {
	runID   string
	command string
	env     EnvSummary
	started time.Time
	steps   map[string]int64
}

// NewBuilder starts a result for the given top-level verb
// (call/probe/doctor/run-scenario/emit/serve).
func NewBuilder(runID, command string, env EnvSummary) *Builder {
	return &Builder{
		runID:   runID,
		command: command,
		env:     env,
		started: time.Now(),
	}
}

// RunID returns the invocation's run ID.
func (b *Builder) RunID() string { return b.runID }

// Step records a named sub-step duration.
func (b *Builder) Step(name string, d time.Duration) {
	if b.steps == nil {
		b.steps = make(map[string]int64)
	}
	b.steps[name] = d.Milliseconds()
}

func (b *Builder) finish(target string, status Status, errInfo *ErrorInfo) CommandResult {
	return CommandResult{
		RunID:      b.runID,
		Command:    b.command,
		Target:     target,
		Status:     status,
		Error:      errInfo,
		Timing:     Timing{Total: time.Since(b.started).Milliseconds(), Steps: b.steps},
		Artifacts:  []string{},
		EnvSummary: b.env,
	}
}

// Pass finalizes a passing result.
func (b *Builder) Pass(target string) CommandResult {
	return b.finish(target, StatusPass, nil)
}

// Fail finalizes a failing result (the operation ran, its check failed).
func (b *Builder) Fail(target string, code ErrorCode, msg string) CommandResult {
	return b.finish(target, StatusFail, &ErrorInfo{Code: code, Message: msg})
}

// Skip finalizes a skipped result. Skips still carry an ErrorInfo so
// callers can see why the operation was inapplicable.
func (b *Builder) Skip(target string, code ErrorCode, msg string) CommandResult {
	return b.finish(target, StatusSkip, &ErrorInfo{Code: code, Message: msg})
}

// Error finalizes an error result (the operation could not run).
func (b *Builder) Error(target string, code ErrorCode, msg string) CommandResult {
	return b.finish(target, StatusError, &ErrorInfo{Code: code, Message: msg})
}
