package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/probekit/appctl/internal/capability"
	"github.com/probekit/appctl/internal/platform"
	"github.com/probekit/appctl/internal/result"
)

// ProbeNames lists the available probes.
var ProbeNames = []string{"filesystem", "network", "clipboard"}

// RunProbe runs one capability probe by name and always returns a
// well-formed CommandResult. Probes are narrowly scoped, self-cleaning
// checks: they leave no residue regardless of outcome.
func RunProbe(ctx context.Context, name string, ec *Context) (res result.CommandResult) {
	b := result.NewBuilder(ec.NewRunID(), "probe", ec.Env())

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("probe panicked", "probe", name, "panic", rec)
			res = b.Error(name, result.CodeInternalError, fmt.Sprintf("probe %s panicked: %v", name, rec))
		}
	}()

	switch name {
	case "filesystem":
		return probeFilesystem(b, ec)
	case "network":
		return probeNetwork(ctx, b, ec)
	case "clipboard":
		return probeClipboard(b, ec)
	}
	return b.Error(name, result.CodeInvalidInput,
		fmt.Sprintf("unknown probe: %s (available: %s)", name, strings.Join(ProbeNames, ", ")))
}

// probeFilesystem creates, writes, reads back, and deletes a file in a
// private temp directory. Cleanup runs on every exit path.
func probeFilesystem(b *result.Builder, ec *Context) result.CommandResult {
	fs := ec.FS()
	payload := []byte("appctl filesystem probe")

	runID := b.RunID()
	if len(runID) > 8 {
		runID = runID[:8]
	}
	tmpDir := filepath.Join(fs.TempDir(), "appctl_probe_"+runID)

	// Residue-free on every path, including defects caught upstream.
	defer func() {
		if err := fs.RemoveAll(tmpDir); err != nil {
			slog.Warn("filesystem probe cleanup failed", "dir", tmpDir, "error", err)
		}
	}()

	t0 := time.Now()
	if err := fs.MkdirAll(tmpDir); err != nil {
		return b.Error("filesystem", capability.CodeOf(err), fmt.Sprintf("create_dir: %v", err))
	}
	b.Step("create_dir", time.Since(t0))

	testFile := filepath.Join(tmpDir, "probe_test.txt")
	t1 := time.Now()
	if err := fs.WriteFile(testFile, payload); err != nil {
		return b.Error("filesystem", capability.CodeOf(err), fmt.Sprintf("write_file: %v", err))
	}
	b.Step("write_file", time.Since(t1))

	t2 := time.Now()
	data, err := fs.ReadFile(testFile)
	if err != nil {
		return b.Error("filesystem", capability.CodeOf(err), fmt.Sprintf("read_file: %v", err))
	}
	if !bytes.Equal(data, payload) {
		return b.Error("filesystem", result.CodeExternalInterference,
			"read-back data does not match written data")
	}
	b.Step("read_verify", time.Since(t2))

	t3 := time.Now()
	if err := fs.RemoveAll(tmpDir); err != nil {
		return b.Error("filesystem", capability.CodeOf(err), fmt.Sprintf("cleanup: %v", err))
	}
	b.Step("cleanup", time.Since(t3))

	res := b.Pass("filesystem")
	res.SetData(map[string]any{"temp_dir_used": tmpDir})
	return res
}

// probeNetwork resolves the probe host and performs one HTTPS GET,
// both bounded by the configured network timeout.
func probeNetwork(ctx context.Context, b *result.Builder, ec *Context) result.CommandResult {
	probeURL := ec.Config().ProbeURL
	host := hostFromURL(probeURL)

	ctx, cancel := context.WithTimeout(ctx, ec.Config().NetworkTimeout)
	defer cancel()

	t0 := time.Now()
	addrs, err := ec.Network().Resolve(ctx, host)
	b.Step("dns_resolve", time.Since(t0))
	if err != nil {
		return b.Error("network", capability.CodeOf(err), fmt.Sprintf("DNS resolution failed: %v", err))
	}

	t1 := time.Now()
	status, _, err := ec.Network().Get(ctx, probeURL)
	b.Step("https_get", time.Since(t1))
	if err != nil {
		return b.Error("network", capability.CodeOf(err), fmt.Sprintf("HTTPS GET failed: %v", err))
	}

	res := b.Pass("network")
	res.SetData(map[string]any{
		"dns_addresses": addrs,
		"http_status":   status,
		"target_url":    probeURL,
		"proxy_env":     platform.ProxyEnv(),
	})
	return res
}

// hostFromURL strips the scheme and path from a URL, leaving the
// hostname for DNS resolution.
func hostFromURL(url string) string {
	host := strings.TrimPrefix(url, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexAny(host, "/:"); i >= 0 {
		host = host[:i]
	}
	return host
}

// probeClipboard attempts a write/read round trip. Headless contexts
// skip immediately; a missing clipboard service or tool is also a skip,
// never a failure.
func probeClipboard(b *result.Builder, ec *Context) result.CommandResult {
	if ec.Env().Headless {
		return b.Skip("clipboard", result.CodeUnsupported,
			"headless environment: no clipboard access")
	}

	cb := ec.Clipboard()
	testText := "appctl_clipboard_probe_" + b.RunID()

	t0 := time.Now()
	err := cb.WriteText(testText)
	b.Step("write", time.Since(t0))
	if err != nil {
		return clipboardOutcome(b, "write", err)
	}

	t1 := time.Now()
	got, err := cb.ReadText()
	b.Step("read", time.Since(t1))
	if err != nil {
		return clipboardOutcome(b, "read", err)
	}

	if strings.TrimSpace(got) != testText {
		return b.Error("clipboard", result.CodeExternalInterference,
			"clipboard read-back does not match written text")
	}
	return b.Pass("clipboard")
}

// clipboardOutcome classifies a clipboard capability error: absent
// capability or missing tool means the environment cannot support the
// probe (skip); anything else is an error.
func clipboardOutcome(b *result.Builder, step string, err error) result.CommandResult {
	code := capability.CodeOf(err)
	msg := fmt.Sprintf("clipboard probe failed at %s: %v", step, err)

	switch code {
	case result.CodeUnsupported, result.CodeDependencyMissing:
		return b.Skip("clipboard", code, msg)
	}
	return b.Error("clipboard", code, msg)
}
