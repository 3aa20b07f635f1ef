package result

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_ExitCode(t *testing.T) {
	assert.Equal(t, 0, StatusPass.ExitCode())
	assert.Equal(t, 0, StatusSkip.ExitCode())
	assert.Equal(t, 1, StatusFail.ExitCode())
	assert.Equal(t, 2, StatusError.ExitCode())
}

func TestStatus_IsValid(t *testing.T) {
	for _, s := range ValidStatuses {
		assert.True(t, s.IsValid(), "status %q should be valid", s)
	}
	assert.False(t, Status("passed").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestCommandResult_Validate(t *testing.T) {
	env := EnvSummary{OS: "linux", Arch: "amd64", Headless: true}

	tests := []struct {
		name    string
		result  CommandResult
		wantErr bool
	}{
		{
			name:   "pass without error",
			result: CommandResult{RunID: "r1", Status: StatusPass, EnvSummary: env},
		},
		{
			name: "pass with error is invalid",
			result: CommandResult{
				RunID:  "r1",
				Status: StatusPass,
				Error:  &ErrorInfo{Code: CodeIOError, Message: "boom"},
			},
			wantErr: true,
		},
		{
			name:    "fail without error is invalid",
			result:  CommandResult{RunID: "r1", Status: StatusFail},
			wantErr: true,
		},
		{
			name:    "error without error info is invalid",
			result:  CommandResult{RunID: "r1", Status: StatusError},
			wantErr: true,
		},
		{
			name: "skip may carry error info",
			result: CommandResult{
				RunID:  "r1",
				Status: StatusSkip,
				Error:  &ErrorInfo{Code: CodeUnsupported, Message: "headless"},
			},
		},
		{
			name:    "unknown status is invalid",
			result:  CommandResult{RunID: "r1", Status: Status("maybe")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuilder_PassAndError(t *testing.T) {
	env := EnvSummary{OS: "linux", Arch: "arm64", Headless: true}
	b := NewBuilder("run-123", "call", env)
	b.Step("write", 5*time.Millisecond)

	r := b.Pass("ping")
	require.NoError(t, r.Validate())
	assert.Equal(t, "run-123", r.RunID)
	assert.Equal(t, "call", r.Command)
	assert.Equal(t, "ping", r.Target)
	assert.Equal(t, StatusPass, r.Status)
	assert.Nil(t, r.Error)
	assert.Equal(t, env, r.EnvSummary)
	assert.NotNil(t, r.Artifacts, "artifacts must serialize as [], not null")
	assert.Contains(t, r.Timing.Steps, "write")

	e := b.Error("read_file", CodeIOError, "no such file")
	require.NoError(t, e.Validate())
	assert.Equal(t, StatusError, e.Status)
	require.NotNil(t, e.Error)
	assert.Equal(t, CodeIOError, e.Error.Code)
}

func TestCommandResult_JSONShape(t *testing.T) {
	b := NewBuilder("run-9", "probe", EnvSummary{OS: "linux", Arch: "amd64", Headless: false})
	r := b.Pass("filesystem")
	r.SetData(map[string]any{"temp_dir_used": "/tmp/x"})

	raw, err := json.Marshal(&r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{"run_id", "command", "target", "status", "error", "timing_ms", "artifacts", "env_summary", "data"} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["error"], "pass result serializes error as null")
	assert.Equal(t, "pass", m["status"])
}

func TestUUIDv7Generator_SortableAndUnique(t *testing.T) {
	g := UUIDv7Generator{}

	seen := make(map[string]bool)
	var prev string
	for i := 0; i < 100; i++ {
		id := g.Generate()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "run id generated twice")
		seen[id] = true
		if prev != "" {
			assert.LessOrEqual(t, prev, id, "UUIDv7 ids should be time-ordered")
		}
		prev = id
	}
}

func TestFixedGenerator_Sequence(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Equal(t, "b", g.Generate(), "exhausted generator repeats last id")

	empty := NewFixedGenerator()
	assert.Equal(t, "fixed-run-id", empty.Generate())
}

func TestPinnedGenerator_FirstIDThenFresh(t *testing.T) {
	g := NewPinnedGenerator("pinned")
	assert.Equal(t, "pinned", g.Generate())

	next := g.Generate()
	assert.NotEqual(t, "pinned", next)
	assert.NotEmpty(t, next)
	assert.NotEqual(t, next, g.Generate(), "subsequent ids are fresh")
}
