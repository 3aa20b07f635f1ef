package capability

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probekit/appctl/internal/result"
)

func TestCodeOf_Mapping(t *testing.T) {
	tests := []struct {
		kind Kind
		code result.ErrorCode
	}{
		{KindUnsupported, result.CodeUnsupported},
		{KindDependencyMissing, result.CodeDependencyMissing},
		{KindPermissionDenied, result.CodePermissionDenied},
		{KindNotFound, result.CodeIOError},
		{KindIO, result.CodeIOError},
		{KindNetwork, result.CodeNetworkError},
		{KindTimeout, result.CodeTimeout},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(NewError(tt.kind, "x")))
		})
	}
}

func TestCodeOf_UntypedErrorDefaultsToIO(t *testing.T) {
	assert.Equal(t, result.CodeIOError, CodeOf(fmt.Errorf("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("cause")
	err := WrapError(KindNetwork, cause, "wrapped")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "cause")
}

func TestOSFilesystem_RoundTrip(t *testing.T) {
	fsys := OSFilesystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "probe.txt")

	// WriteFile creates missing parents.
	require.NoError(t, fsys.WriteFile(path, []byte("hello")))
	assert.True(t, fsys.Exists(path))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, fsys.RemoveFile(path))
	assert.False(t, fsys.Exists(path))
}

func TestOSFilesystem_ReadMissingIsNotFound(t *testing.T) {
	fsys := OSFilesystem{}
	_, err := fsys.ReadFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, result.CodeIOError, CodeOf(err))
}

func TestOSFilesystem_RemoveAll(t *testing.T) {
	fsys := OSFilesystem{}
	dir := filepath.Join(t.TempDir(), "scratch")
	require.NoError(t, fsys.MkdirAll(dir))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "a.txt"), []byte("a")))
	require.NoError(t, fsys.RemoveAll(dir))
	assert.False(t, fsys.Exists(dir))
}

func TestHeadlessClipboard_AlwaysUnsupported(t *testing.T) {
	cb := HeadlessClipboard{}

	_, err := cb.ReadText()
	require.Error(t, err)
	assert.Equal(t, KindUnsupported, KindOf(err))

	err = cb.WriteText("anything")
	require.Error(t, err)
	assert.Equal(t, KindUnsupported, KindOf(err))
}
