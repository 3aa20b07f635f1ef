package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_MatchesRuntime(t *testing.T) {
	s := Summary()
	assert.Equal(t, runtime.GOOS, s.OS)
	assert.Equal(t, runtime.GOARCH, s.Arch)
}

func TestDetectHeadless_Linux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux-only heuristic")
	}

	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	os.Unsetenv("DISPLAY")
	os.Unsetenv("WAYLAND_DISPLAY")
	assert.True(t, DetectHeadless())

	t.Setenv("DISPLAY", ":0")
	assert.False(t, DetectHeadless())
}

func TestProxyEnv(t *testing.T) {
	t.Setenv("HTTPS_PROXY", "http://proxy.internal:3128")
	t.Setenv("NO_PROXY", "localhost")

	env := ProxyEnv()
	assert.Equal(t, "http://proxy.internal:3128", env["HTTPS_PROXY"])
	assert.Equal(t, "localhost", env["NO_PROXY"])
	assert.NotContains(t, env, "HTTP_PROXY")
}

func TestParseOSRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	content := `# comment
NAME="Debian GNU/Linux"
PRETTY_NAME="Debian GNU/Linux 13 (trixie)"
ID=debian
malformed line
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fields, err := parseOSRelease(path)
	require.NoError(t, err)
	assert.Equal(t, "Debian GNU/Linux 13 (trixie)", fields["PRETTY_NAME"])
	assert.Equal(t, "debian", fields["ID"])
	assert.NotContains(t, fields, "malformed line")
}

func TestKernelVersion_NonEmpty(t *testing.T) {
	v := KernelVersion()
	assert.NotEmpty(t, v)
}

func TestDisplayServer_Wayland(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "wayland-1")
	assert.Equal(t, "wayland (wayland-1)", DisplayServer())
}
