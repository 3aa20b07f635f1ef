package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probekit/appctl/internal/result"
)

func TestLoad_Minimal(t *testing.T) {
	doc := `
name: basic
steps:
  - call: ping
  - probe: filesystem
`
	sc, err := Load([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "basic", sc.Name)
	require.Len(t, sc.Steps, 2)

	assert.Equal(t, "ping", sc.Steps[0].Target())
	assert.Equal(t, result.StatusPass, sc.Steps[0].Expected(), "default expectation is pass")
	assert.Equal(t, "filesystem", sc.Steps[1].Target())
}

func TestLoad_FullStep(t *testing.T) {
	doc := `
name: rich
steps:
  - call: write_file
    args:
      path: /tmp/x
      content: hello
    expect_status: pass
    timeout_ms: 5000
  - probe: clipboard
    expect_status: skip
`
	sc, err := Load([]byte(doc))
	require.NoError(t, err)

	step := sc.Steps[0]
	assert.Equal(t, "write_file", step.Call)
	assert.Equal(t, "hello", step.Args["content"])
	assert.EqualValues(t, 5000, step.TimeoutMS)
	assert.Equal(t, result.StatusSkip, sc.Steps[1].Expected())
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing name",
			doc:  "steps:\n  - call: ping\n",
			want: "name is required",
		},
		{
			name: "no steps",
			doc:  "name: empty\n",
			want: "steps list is required",
		},
		{
			name: "step with neither variant",
			doc:  "name: x\nsteps:\n  - expect_status: pass\n",
			want: "exactly one of call or probe",
		},
		{
			name: "step with both variants",
			doc:  "name: x\nsteps:\n  - call: ping\n    probe: filesystem\n",
			want: "mutually exclusive",
		},
		{
			name: "args on probe step",
			doc:  "name: x\nsteps:\n  - probe: network\n    args: {a: 1}\n",
			want: "only valid on call steps",
		},
		{
			name: "bad expect_status",
			doc:  "name: x\nsteps:\n  - call: ping\n    expect_status: passed\n",
			want: "invalid expect_status",
		},
		{
			name: "unknown field",
			doc:  "name: x\nsteps:\n  - call: ping\n    expect_staus: pass\n",
			want: "",
		},
		{
			name: "negative timeout",
			doc:  "name: x\nsteps:\n  - call: ping\n    timeout_ms: -1\n",
			want: "timeout_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nsteps:\n  - call: ping\n"), 0o644))

	sc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", sc.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
