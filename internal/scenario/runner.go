package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/probekit/appctl/internal/engine"
	"github.com/probekit/appctl/internal/result"
)

// EventSink receives lifecycle events during a scenario run. Implemented
// by the artifact writer; a nil sink discards events.
type EventSink interface {
	Event(typ string, fields map[string]any)
}

// StepOutcome pairs a step with its full result, recorded in the
// aggregate data payload.
type StepOutcome struct {
	Index    int                  `json:"index"`
	Target   string               `json:"target"`
	Expected result.Status        `json:"expected"`
	Result   result.CommandResult `json:"result"`
}

// RunData is the aggregate data payload of a scenario run.
type RunData struct {
	Name       string        `json:"name"`
	StepsTotal int           `json:"steps_total"`
	StepsRun   int           `json:"steps_run"`
	Steps      []StepOutcome `json:"steps"`

	// FailedStep is the 1-based index of the first step whose status
	// did not satisfy its expectation; zero when all steps matched.
	FailedStep int `json:"failed_step,omitempty"`
}

// Run executes the scenario fail-fast: steps run strictly in order and
// execution stops at the first step whose status does not satisfy its
// expectation. The aggregate status is then that step's effective
// severity, and the data payload records the failing index plus the
// results of every step that ran. Steps after the divergence are never
// executed; a scenario run answers "which step first diverged", not
// "how many steps diverged".
func Run(ctx context.Context, sc *Scenario, ec *engine.Context, reg *engine.Registry, sink EventSink) result.CommandResult {
	b := result.NewBuilder(ec.NewRunID(), "run-scenario", ec.Env())
	emit(sink, "start", map[string]any{"scenario": sc.Name, "steps_total": len(sc.Steps)})

	data := RunData{Name: sc.Name, StepsTotal: len(sc.Steps)}

	for i, step := range sc.Steps {
		stepStart := time.Now()
		stepRes := runStep(ctx, step, ec, reg)
		b.Step(fmt.Sprintf("%d:%s", i+1, step.Target()), time.Since(stepStart))

		data.StepsRun++
		data.Steps = append(data.Steps, StepOutcome{
			Index:    i + 1,
			Target:   step.Target(),
			Expected: step.Expected(),
			Result:   stepRes,
		})
		emit(sink, "step", map[string]any{
			"index":    i + 1,
			"target":   step.Target(),
			"status":   stepRes.Status,
			"expected": step.Expected(),
		})

		if stepRes.Status != step.Expected() {
			data.FailedStep = i + 1
			res := aggregateMismatch(b, sc.Name, step, stepRes, i+1)
			res.SetData(data)
			emit(sink, "complete", map[string]any{"scenario": sc.Name, "status": res.Status})
			return res
		}
	}

	res := b.Pass(sc.Name)
	res.SetData(data)
	emit(sink, "complete", map[string]any{"scenario": sc.Name, "status": res.Status})
	return res
}

// runStep dispatches one step. Call steps are bounded by their timeout
// budget; probe steps carry their own capability-level timeouts.
func runStep(ctx context.Context, step Step, ec *engine.Context, reg *engine.Registry) result.CommandResult {
	if step.Probe != "" {
		return engine.RunProbe(ctx, step.Probe, ec)
	}

	timeout := ec.Config().StepTimeout
	if step.TimeoutMS > 0 {
		timeout = time.Duration(step.TimeoutMS) * time.Millisecond
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return reg.Execute(stepCtx, step.Call, step.Args, ec)
}

// aggregateMismatch finalizes the aggregate result for the first
// diverging step. The failing step's severity and error code carry
// through; the one case without a step error code (the step passed but
// a non-pass status was expected) is a declared-expectation violation,
// reported as fail with INVALID_INPUT naming the divergence.
func aggregateMismatch(b *result.Builder, name string, step Step, stepRes result.CommandResult, index int) result.CommandResult {
	msg := fmt.Sprintf("step %d (%s) expected status %s, got %s",
		index, step.Target(), step.Expected(), stepRes.Status)

	switch stepRes.Status {
	case result.StatusError:
		return b.Error(name, stepRes.Error.Code, msg+": "+stepRes.Error.Message)
	case result.StatusFail:
		return b.Fail(name, stepRes.Error.Code, msg+": "+stepRes.Error.Message)
	case result.StatusSkip:
		code := result.CodeUnsupported
		if stepRes.Error != nil {
			code = stepRes.Error.Code
		}
		return b.Skip(name, code, msg)
	}
	return b.Fail(name, result.CodeInvalidInput, msg)
}

func emit(sink EventSink, typ string, fields map[string]any) {
	if sink != nil {
		sink.Event(typ, fields)
	}
}
