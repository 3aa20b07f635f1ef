package capability

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFilesystem is the real filesystem provider backed by the os package.
// Safe for concurrent use; it holds no state.
type OSFilesystem struct{}

func (OSFilesystem) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyFSError(err, "cannot read %s", path)
	}
	return data, nil
}

// WriteFile writes data to path, creating missing parent directories.
func (OSFilesystem) WriteFile(path string, data []byte) error {
	if parent := filepath.Dir(path); parent != "." {
		if _, err := os.Stat(parent); errors.Is(err, fs.ErrNotExist) {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return classifyFSError(err, "cannot create parent of %s", path)
			}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return classifyFSError(err, "cannot write %s", path)
	}
	return nil
}

func (OSFilesystem) RemoveFile(path string) error {
	if err := os.Remove(path); err != nil {
		return classifyFSError(err, "cannot remove %s", path)
	}
	return nil
}

func (OSFilesystem) MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return classifyFSError(err, "cannot create %s", path)
	}
	return nil
}

func (OSFilesystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return classifyFSError(err, "cannot remove %s", path)
	}
	return nil
}

func (OSFilesystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFilesystem) TempDir() string {
	return os.TempDir()
}

// classifyFSError maps an os error to the matching capability kind.
func classifyFSError(err error, format string, args ...any) *Error {
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindPermissionDenied
	}
	return WrapError(kind, err, format, args...)
}
