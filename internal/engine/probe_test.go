package engine

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probekit/appctl/internal/capability"
	"github.com/probekit/appctl/internal/result"
)

// faultyFS wraps the real filesystem but fails a chosen operation,
// while recording the temp directory so tests can assert cleanup.
type faultyFS struct {
	capability.OSFilesystem
	tempDir  string
	failRead bool
}

func (f *faultyFS) TempDir() string { return f.tempDir }

func (f *faultyFS) ReadFile(path string) ([]byte, error) {
	if f.failRead {
		return nil, capability.NewError(capability.KindPermissionDenied, "injected read failure")
	}
	return f.OSFilesystem.ReadFile(path)
}

// memClipboard is an in-memory clipboard for non-headless probe tests.
type memClipboard struct {
	text    string
	readErr error
}

func (c *memClipboard) ReadText() (string, error) {
	if c.readErr != nil {
		return "", c.readErr
	}
	return c.text, nil
}

func (c *memClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

// fakeNetwork returns canned DNS and HTTP results.
type fakeNetwork struct {
	addrs      []string
	status     int
	resolveErr error
	getErr     error
}

func (n *fakeNetwork) Resolve(context.Context, string) ([]string, error) {
	if n.resolveErr != nil {
		return nil, n.resolveErr
	}
	return n.addrs, nil
}

func (n *fakeNetwork) Get(context.Context, string) (int, string, error) {
	if n.getErr != nil {
		return 0, "", n.getErr
	}
	return n.status, "ok", nil
}

func TestRunProbe_UnknownProbe(t *testing.T) {
	ec := testContext(t)

	res := RunProbe(context.Background(), "bluetooth", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodeInvalidInput, res.Error.Code)
	assert.Contains(t, res.Error.Message, "filesystem, network, clipboard")
}

func TestProbeFilesystem_PassAndNoResidue(t *testing.T) {
	scratch := t.TempDir()
	fs := &faultyFS{tempDir: scratch}
	ec := testContext(t, WithFilesystem(fs))

	res := RunProbe(context.Background(), "filesystem", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusPass, res.Status)
	assert.Contains(t, res.Timing.Steps, "create_dir")
	assert.Contains(t, res.Timing.Steps, "write_file")
	assert.Contains(t, res.Timing.Steps, "read_verify")
	assert.Contains(t, res.Timing.Steps, "cleanup")

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe must leave no residue on success")
}

func TestProbeFilesystem_FailureStillCleansUp(t *testing.T) {
	scratch := t.TempDir()
	fs := &faultyFS{tempDir: scratch, failRead: true}
	ec := testContext(t, WithFilesystem(fs))

	res := RunProbe(context.Background(), "filesystem", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodePermissionDenied, res.Error.Code)
	assert.Contains(t, res.Error.Message, "read_file")

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe must leave no residue on failure")
}

func TestProbeFilesystem_Idempotent(t *testing.T) {
	ec := testContext(t)

	first := RunProbe(context.Background(), "filesystem", ec)
	second := RunProbe(context.Background(), "filesystem", ec)
	assert.Equal(t, first.Status, second.Status)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestProbeClipboard_HeadlessSkips(t *testing.T) {
	ec := testContext(t)
	require.True(t, ec.Env().Headless)

	res := RunProbe(context.Background(), "clipboard", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusSkip, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, result.CodeUnsupported, res.Error.Code)
}

func TestProbeClipboard_RoundTrip(t *testing.T) {
	ec := testContext(t, WithClipboard(&memClipboard{}))
	ec.env.Headless = false

	res := RunProbe(context.Background(), "clipboard", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusPass, res.Status)
	assert.Contains(t, res.Timing.Steps, "write")
	assert.Contains(t, res.Timing.Steps, "read")
}

func TestProbeClipboard_MissingToolSkips(t *testing.T) {
	cb := &memClipboard{readErr: capability.NewError(capability.KindDependencyMissing, "xclip not found")}
	ec := testContext(t, WithClipboard(cb))
	ec.env.Headless = false

	res := RunProbe(context.Background(), "clipboard", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusSkip, res.Status)
	assert.Equal(t, result.CodeDependencyMissing, res.Error.Code)
}

func TestProbeClipboard_InterferenceIsError(t *testing.T) {
	// Reads back something other than what the probe wrote, as if
	// another process changed the clipboard mid-probe.
	ec := testContext(t, WithClipboard(&staleClipboard{stale: "someone else"}))
	ec.env.Headless = false

	res := RunProbe(context.Background(), "clipboard", ec)
	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodeExternalInterference, res.Error.Code)
}

// staleClipboard accepts writes but always reads back something else.
type staleClipboard struct{ stale string }

func (c *staleClipboard) ReadText() (string, error) { return c.stale, nil }
func (c *staleClipboard) WriteText(string) error    { return nil }

func TestProbeNetwork_Pass(t *testing.T) {
	net := &fakeNetwork{addrs: []string{"203.0.113.7"}, status: 200}
	ec := testContext(t, WithNetwork(net))

	res := RunProbe(context.Background(), "network", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusPass, res.Status)

	var data map[string]any
	require.NoError(t, json.Unmarshal(res.Data, &data))
	assert.EqualValues(t, 200, data["http_status"])
	assert.Equal(t, ec.Config().ProbeURL, data["target_url"])
}

func TestProbeNetwork_TimeoutCode(t *testing.T) {
	net := &fakeNetwork{
		addrs:  []string{"203.0.113.7"},
		getErr: capability.NewError(capability.KindTimeout, "deadline exceeded"),
	}
	ec := testContext(t, WithNetwork(net))

	res := RunProbe(context.Background(), "network", ec)
	require.NoError(t, res.Validate())
	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodeTimeout, res.Error.Code)
}

func TestProbeNetwork_DNSFailure(t *testing.T) {
	net := &fakeNetwork{resolveErr: capability.NewError(capability.KindNetwork, "no such host")}
	ec := testContext(t, WithNetwork(net))

	res := RunProbe(context.Background(), "network", ec)
	assert.Equal(t, result.StatusError, res.Status)
	assert.Equal(t, result.CodeNetworkError, res.Error.Code)
	assert.Contains(t, res.Error.Message, "DNS resolution failed")
}

func TestHostFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://httpbin.org/get", "httpbin.org"},
		{"http://example.com", "example.com"},
		{"https://example.com:8443/health", "example.com"},
		{"plainhost", "plainhost"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hostFromURL(tt.url), tt.url)
	}
}
