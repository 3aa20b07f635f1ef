package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/probekit/appctl/internal/capability"
	"github.com/probekit/appctl/internal/result"
)

// Handler is the signature for registry commands. Handlers are pure
// functions of (args, execution context) plus whatever the injected
// capability providers do; they must not read global mutable state.
//
// A handler returns its data payload, or an error: an *InputError for
// malformed arguments, a *capability.Error surfaced verbatim, or any
// other error which is classified as a harness defect.
type Handler func(ctx context.Context, args map[string]any, ec *Context) (any, error)

// InputError marks caller-supplied arguments as malformed or missing
// required fields. Always detectable before any capability call.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

// NewInputError builds an InputError naming the offending field.
func NewInputError(format string, args ...any) *InputError {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}

// Registry maps command names to handlers and dispatches them with the
// uniform result contract. The built-in commands are registered by
// NewRegistry; callers may add more before first use.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates a registry with the built-in commands.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register("ping", cmdPing)
	r.Register("read_file", cmdReadFile)
	r.Register("write_file", cmdWriteFile)
	return r
}

// Register adds a handler. Panics on a duplicate name: command names
// are a fixed namespace, and a silent overwrite would hide the defect.
func (r *Registry) Register(name string, h Handler) {
	if _, exists := r.handlers[name]; exists {
		panic(fmt.Sprintf("engine: duplicate command handler %q", name))
	}
	r.handlers[name] = h
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute dispatches a named command and always returns a well-formed
// CommandResult. Unknown names yield INVALID_INPUT. A panicking handler
// degrades to an INTERNAL_ERROR result; this is the single
// fault-recovery boundary, so a command's defect never terminates the
// process.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any, ec *Context) (res result.CommandResult) {
	b := result.NewBuilder(ec.NewRunID(), "call", ec.Env())

	handler, ok := r.handlers[name]
	if !ok {
		return b.Error(name, result.CodeInvalidInput, fmt.Sprintf("unknown command: %s", name))
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("command handler panicked", "command", name, "panic", rec)
			res = b.Error(name, result.CodeInternalError, fmt.Sprintf("handler %s panicked: %v", name, rec))
		}
	}()

	data, err := handler(ctx, args, ec)
	if err != nil {
		return b.Error(name, classifyHandlerError(err), err.Error())
	}

	res = b.Pass(name)
	if data != nil {
		res.SetData(data)
	}
	return res
}

// classifyHandlerError maps a handler error to its result code.
// Capability errors surface verbatim; anything untyped is a defect in
// the harness itself.
func classifyHandlerError(err error) result.ErrorCode {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return result.CodeInvalidInput
	}
	var capErr *capability.Error
	if errors.As(err, &capErr) {
		return capability.CodeOf(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return result.CodeTimeout
	}
	return result.CodeInternalError
}

// stringArg extracts a required string field from the argument payload.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", NewInputError("missing %q string field", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", NewInputError("field %q must be a string", key)
	}
	return s, nil
}

// cmdPing proves wiring works. No side effects, no arguments.
func cmdPing(_ context.Context, _ map[string]any, _ *Context) (any, error) {
	return map[string]any{"pong": true}, nil
}

// cmdReadFile reads a file through the filesystem capability.
//
// Args: {"path": "/absolute/path"}
// Data: {"content": "...", "size_bytes": 123}
func cmdReadFile(_ context.Context, args map[string]any, ec *Context) (any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}

	data, err := ec.FS().ReadFile(path)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content":    string(data),
		"size_bytes": len(data),
	}, nil
}

// cmdWriteFile writes string content through the filesystem capability.
//
// Args: {"path": "/absolute/path", "content": "hello"}
// Data: {"bytes_written": 5}
func cmdWriteFile(_ context.Context, args map[string]any, ec *Context) (any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}

	if err := ec.FS().WriteFile(path, []byte(content)); err != nil {
		return nil, err
	}
	return map[string]any{"bytes_written": len(content)}, nil
}
