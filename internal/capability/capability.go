// Package capability defines the abstract contracts for the OS-adjacent
// services the engine may need (filesystem, network, clipboard) and the
// provider implementations behind them.
//
// Every method returns a success value or a *Error with a fixed Kind.
// Conditions that are a normal consequence of running headless or
// sandboxed (no clipboard service, no display) are reported as
// KindUnsupported, never as a panic or process-ending failure.
package capability

import (
	"context"
	"errors"
	"fmt"

	"github.com/probekit/appctl/internal/result"
)

// Kind categorizes capability errors. The set is closed; each kind maps
// to exactly one result.ErrorCode.
type Kind string

const (
	KindUnsupported       Kind = "unsupported"
	KindDependencyMissing Kind = "dependency_missing"
	KindPermissionDenied  Kind = "permission_denied"
	KindNotFound          Kind = "not_found"
	KindNetwork           Kind = "network"
	KindTimeout           Kind = "timeout"
	KindIO                Kind = "io"
)

// Error is the typed error returned by all capability providers.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, optional
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a capability error with the given kind and message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches an underlying cause.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error. Unknown errors are treated as
// KindIO so callers never see an unclassified capability failure.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindIO
}

// CodeOf maps a capability error to its result.ErrorCode. The mapping
// is 1:1 and total: capability errors surface verbatim, never re-wrapped
// as INTERNAL_ERROR.
func CodeOf(err error) result.ErrorCode {
	switch KindOf(err) {
	case KindUnsupported:
		return result.CodeUnsupported
	case KindDependencyMissing:
		return result.CodeDependencyMissing
	case KindPermissionDenied:
		return result.CodePermissionDenied
	case KindNotFound, KindIO:
		return result.CodeIOError
	case KindNetwork:
		return result.CodeNetworkError
	case KindTimeout:
		return result.CodeTimeout
	}
	return result.CodeInternalError
}

// Filesystem is the file capability contract. Side effects are confined
// to the path named in each call.
type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	RemoveFile(path string) error
	MkdirAll(path string) error
	RemoveAll(path string) error
	Exists(path string) bool
	TempDir() string
}

// Network is the network capability contract. Both operations must be
// bounded by the context deadline; an unbounded call is a design defect.
type Network interface {
	// Resolve resolves a hostname to at least one IP address.
	Resolve(ctx context.Context, host string) ([]string, error)

	// Get performs one HTTPS GET and returns the status code plus a
	// bounded body snippet.
	Get(ctx context.Context, url string) (status int, snippet string, err error)
}

// Clipboard is the clipboard capability contract.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
