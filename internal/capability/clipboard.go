package capability

import (
	"bytes"
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// SystemClipboard reads and writes the platform clipboard through the
// platform's CLI tools: pbcopy/pbpaste on darwin, xclip/xsel/wl-clipboard
// on linux. A missing tool surfaces as KindDependencyMissing so probes
// can classify it instead of erroring.
type SystemClipboard struct{}

// clipboardTool names one external clipboard command and its arguments.
type clipboardTool struct {
	cmd  string
	args []string
}

func readTools() []clipboardTool {
	switch runtime.GOOS {
	case "darwin":
		return []clipboardTool{{cmd: "pbpaste"}}
	case "linux":
		return []clipboardTool{
			{cmd: "xclip", args: []string{"-selection", "clipboard", "-o"}},
			{cmd: "xsel", args: []string{"--clipboard", "--output"}},
			{cmd: "wl-paste"},
		}
	}
	return nil
}

func writeTools() []clipboardTool {
	switch runtime.GOOS {
	case "darwin":
		return []clipboardTool{{cmd: "pbcopy"}}
	case "linux":
		return []clipboardTool{
			{cmd: "xclip", args: []string{"-selection", "clipboard"}},
			{cmd: "xsel", args: []string{"--clipboard", "--input"}},
			{cmd: "wl-copy"},
		}
	}
	return nil
}

func (SystemClipboard) ReadText() (string, error) {
	tools := readTools()
	if tools == nil {
		return "", NewError(KindUnsupported, "clipboard not implemented on %s", runtime.GOOS)
	}

	var lastErr error
	for _, tool := range tools {
		out, err := runClipboardRead(tool)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (SystemClipboard) WriteText(text string) error {
	tools := writeTools()
	if tools == nil {
		return NewError(KindUnsupported, "clipboard not implemented on %s", runtime.GOOS)
	}

	var lastErr error
	for _, tool := range tools {
		err := runClipboardWrite(tool, text)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func runClipboardRead(tool clipboardTool) (string, error) {
	out, err := exec.Command(tool.cmd, tool.args...).Output()
	if err != nil {
		return "", classifyExecError(tool.cmd, err)
	}
	return string(out), nil
}

func runClipboardWrite(tool clipboardTool, text string) error {
	cmd := exec.Command(tool.cmd, tool.args...)
	cmd.Stdin = bytes.NewBufferString(text)
	if err := cmd.Run(); err != nil {
		return classifyExecError(tool.cmd, err)
	}
	return nil
}

func classifyExecError(name string, err error) *Error {
	if errors.Is(err, exec.ErrNotFound) {
		return WrapError(KindDependencyMissing, err, "%s not found", name)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(string(exitErr.Stderr))
		if msg == "" {
			msg = exitErr.String()
		}
		return WrapError(KindIO, err, "%s failed: %s", name, msg)
	}
	return WrapError(KindIO, err, "%s failed", name)
}

// HeadlessClipboard is the stub provider wired in headless contexts.
// Every operation reports KindUnsupported; it never attempts I/O and
// never panics.
type HeadlessClipboard struct{}

func (HeadlessClipboard) ReadText() (string, error) {
	return "", NewError(KindUnsupported, "clipboard unavailable in headless environment")
}

func (HeadlessClipboard) WriteText(string) error {
	return NewError(KindUnsupported, "clipboard unavailable in headless environment")
}
