// Package artifact writes the per-run artifact set: a directory keyed
// by run ID holding result.json (the full CommandResult) and
// events.jsonl (append-only lifecycle events). The directory is never
// reused across runs.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/probekit/appctl/internal/result"
)

// Writer owns one run's artifact directory.
type Writer struct {
	dir   string
	runID string
	paths []string
}

// NewWriter creates <root>/<runID>/ and returns a writer bound to it.
// Refuses to reuse an existing run directory: artifact sets are
// append-only within a run and never shared across runs.
func NewWriter(root, runID string) (*Writer, error) {
	dir := filepath.Join(root, runID)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("artifact directory %s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory %s: %w", dir, err)
	}
	return &Writer{dir: dir, runID: runID}, nil
}

// Dir returns the run's artifact directory.
func (w *Writer) Dir() string { return w.dir }

// Paths lists the artifact files written so far.
func (w *Writer) Paths() []string {
	out := make([]string, len(w.paths))
	copy(out, w.paths)
	return out
}

// Event appends one lifecycle event to events.jsonl. Artifact events
// are best-effort: a write failure is logged, never allowed to change
// the run's outcome.
func (w *Writer) Event(typ string, fields map[string]any) {
	entry := map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"run_id": w.runID,
		"event":  typ,
	}
	for k, v := range fields {
		entry[k] = v
	}

	path := filepath.Join(w.dir, "events.jsonl")
	if err := appendJSONL(path, entry); err != nil {
		slog.Warn("failed to append artifact event", "path", path, "error", err)
		return
	}
	w.track(path)
}

// WriteResult writes the finalized CommandResult as result.json. The
// result's artifact list is populated first so the file records its own
// location.
func (w *Writer) WriteResult(res *result.CommandResult) error {
	path := filepath.Join(w.dir, "result.json")
	w.track(path)
	res.Artifacts = w.Paths()

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// track registers a path once, preserving first-write order.
func (w *Writer) track(path string) {
	for _, p := range w.paths {
		if p == path {
			return
		}
	}
	w.paths = append(w.paths, path)
}

func appendJSONL(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(buf.Bytes())
	return err
}
