package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probekit/appctl/internal/config"
	"github.com/probekit/appctl/internal/result"
)

func testContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	return NewHeadlessContext(config.Default(), opts...)
}

func TestRegistry_Ping(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()

	res := reg.Execute(context.Background(), "ping", nil, ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusPass, res.Status)
	assert.Equal(t, "call", res.Command)
	assert.Equal(t, "ping", res.Target)

	var data map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &data))
	assert.Equal(t, true, data["pong"])
}

func TestRegistry_UnknownCommand(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()

	res := reg.Execute(context.Background(), "nonexistent", nil, ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, result.CodeInvalidInput, res.Error.Code)
	assert.Contains(t, res.Error.Message, "nonexistent")
}

func TestRegistry_ReadWriteFile(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "rw.txt")

	w := reg.Execute(context.Background(), "write_file",
		map[string]any{"path": path, "content": "hello engine"}, ec)
	require.NoError(t, w.Validate())
	require.Equal(t, result.StatusPass, w.Status)

	var wData map[string]any
	require.NoError(t, json.Unmarshal(w.Data, &wData))
	assert.EqualValues(t, 12, wData["bytes_written"])

	r := reg.Execute(context.Background(), "read_file", map[string]any{"path": path}, ec)
	require.Equal(t, result.StatusPass, r.Status)

	var rData map[string]any
	require.NoError(t, json.Unmarshal(r.Data, &rData))
	assert.Equal(t, "hello engine", rData["content"])
	assert.EqualValues(t, 12, rData["size_bytes"])
}

func TestRegistry_ReadFileMissingPath(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()

	res := reg.Execute(context.Background(), "read_file",
		map[string]any{"path": filepath.Join(t.TempDir(), "absent.txt")}, ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, result.CodeIOError, res.Error.Code)
}

func TestRegistry_MissingArgumentNamesField(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()

	tests := []struct {
		name  string
		cmd   string
		args  map[string]any
		field string
	}{
		{"read_file no path", "read_file", map[string]any{}, "path"},
		{"write_file no content", "write_file", map[string]any{"path": "/tmp/x"}, "content"},
		{"path wrong type", "read_file", map[string]any{"path": 42}, "path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := reg.Execute(context.Background(), tt.cmd, tt.args, ec)
			assert.Equal(t, result.StatusError, res.Status)
			require.NotNil(t, res.Error)
			assert.Equal(t, result.CodeInvalidInput, res.Error.Code)
			assert.Contains(t, res.Error.Message, tt.field)
		})
	}
}

func TestRegistry_PanicBecomesInternalError(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()
	reg.Register("explode", func(context.Context, map[string]any, *Context) (any, error) {
		panic("kaboom")
	})

	res := reg.Execute(context.Background(), "explode", nil, ec)
	require.NoError(t, res.Validate(), "a panicking handler must still yield a well-formed result")
	assert.Equal(t, result.StatusError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, result.CodeInternalError, res.Error.Code)
	assert.Contains(t, res.Error.Message, "kaboom")
}

func TestRegistry_DuplicateRegisterPanics(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() {
		reg.Register("ping", cmdPing)
	})
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"ping", "read_file", "write_file"}, reg.Names())
}

func TestRegistry_WriteFileCreatesParents(t *testing.T) {
	ec := testContext(t)
	reg := NewRegistry()
	path := filepath.Join(t.TempDir(), "a", "b", "deep.txt")

	res := reg.Execute(context.Background(), "write_file",
		map[string]any{"path": path, "content": "x"}, ec)
	require.Equal(t, result.StatusPass, res.Status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
