package engine

import (
	"runtime"

	"github.com/probekit/appctl/internal/platform"
	"github.com/probekit/appctl/internal/result"
)

// DoctorReport is the data payload of a doctor run. Facts that cannot
// be determined are explicit "unknown" (or null), never omitted and
// never a failure: doctor's job is reporting, not judging.
type DoctorReport struct {
	OSName          string            `json:"os_name"`
	OSVersion       string            `json:"os_version"`
	Kernel          string            `json:"kernel"`
	Arch            string            `json:"arch"`
	UserID          *int              `json:"user_id"`
	EffectiveUserID *int              `json:"effective_user_id"`
	IsAdmin         bool              `json:"is_admin"`
	Headless        bool              `json:"headless"`
	SessionType     string            `json:"session_type"`
	DisplayServer   string            `json:"display_server"`
	ProxyEnv        map[string]string `json:"proxy_env"`
}

// RunDoctor gathers environment facts. Read-only introspection; it
// never mutates environment state and always returns status pass.
func RunDoctor(ec *Context) result.CommandResult {
	b := result.NewBuilder(ec.NewRunID(), "doctor", ec.Env())

	report := DoctorReport{
		OSName:        runtime.GOOS,
		OSVersion:     platform.OSVersion(),
		Kernel:        platform.KernelVersion(),
		Arch:          runtime.GOARCH,
		IsAdmin:       platform.IsAdmin(),
		Headless:      ec.Env().Headless,
		SessionType:   platform.SessionType(),
		DisplayServer: platform.DisplayServer(),
		ProxyEnv:      platform.ProxyEnv(),
	}
	if uid, ok := platform.UserID(); ok {
		report.UserID = &uid
	}
	if euid, ok := platform.EffectiveUserID(); ok {
		report.EffectiveUserID = &euid
	}

	res := b.Pass("env")
	res.SetData(report)
	return res
}
