// Package platform gathers facts about the execution environment:
// OS family, kernel, headless-session detection, proxy configuration.
// All introspection is read-only and best-effort; facts that cannot be
// determined are reported as "unknown" rather than failing.
package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"

	"github.com/probekit/appctl/internal/result"
)

// Unknown is the placeholder for facts that cannot be determined.
const Unknown = "unknown"

// proxyKeys are the environment variables inspected for proxy signals.
var proxyKeys = []string{
	"HTTP_PROXY", "http_proxy",
	"HTTPS_PROXY", "https_proxy",
	"NO_PROXY", "no_proxy",
}

// DetectHeadless reports whether the process appears to be running
// without an interactive display session.
//
//   - linux: no DISPLAY and no WAYLAND_DISPLAY
//   - darwin: SSH session without a forwarded display
//   - anything else: assumed not headless
func DetectHeadless() bool {
	switch runtime.GOOS {
	case "linux":
		return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
	case "darwin":
		return os.Getenv("SSH_TTY") != "" && os.Getenv("DISPLAY") == ""
	}
	return false
}

// Summary builds the EnvSummary attached to every result. Called once
// per process; the snapshot is immutable for the life of a run.
func Summary() result.EnvSummary {
	return result.EnvSummary{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Headless: DetectHeadless(),
	}
}

// OSVersion returns a human-readable OS version string. On linux it is
// PRETTY_NAME from /etc/os-release; elsewhere Unknown.
func OSVersion() string {
	if runtime.GOOS != "linux" {
		return Unknown
	}
	release, err := parseOSRelease("/etc/os-release")
	if err != nil {
		return Unknown
	}
	if pretty := release["PRETTY_NAME"]; pretty != "" {
		return pretty
	}
	return Unknown
}

// parseOSRelease reads KEY=VALUE pairs from an os-release style file.
func parseOSRelease(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fields := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		fields[parts[0]] = strings.Trim(parts[1], `"'`)
	}
	return fields, scanner.Err()
}

// SessionType returns the XDG session type, if set.
func SessionType() string {
	return os.Getenv("XDG_SESSION_TYPE")
}

// DisplayServer identifies the active display server, empty when none
// is detectable.
func DisplayServer() string {
	if d := os.Getenv("WAYLAND_DISPLAY"); d != "" {
		return "wayland (" + d + ")"
	}
	if d := os.Getenv("DISPLAY"); d != "" {
		return "x11 (" + d + ")"
	}
	if runtime.GOOS == "darwin" {
		return "quartz"
	}
	return ""
}

// ProxyEnv collects the proxy-related environment variables that are
// set, preserving their original casing.
func ProxyEnv() map[string]string {
	out := make(map[string]string)
	for _, key := range proxyKeys {
		if v, ok := os.LookupEnv(key); ok {
			out[key] = v
		}
	}
	return out
}
