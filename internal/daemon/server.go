// Package daemon exposes the command registry over a unix domain socket.
//
// The wire protocol is newline-delimited JSON. Each request line is an
// object {"id": ..., "method": ..., "params": ...} and each response line
// is {"id": ..., "result": ...} where result is a full command result
// envelope. Connections are served concurrently; requests on a single
// connection are answered in the order they arrive.
package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/probekit/appctl/internal/engine"
	"github.com/probekit/appctl/internal/result"
)

// maxLineBytes bounds a single request line. Anything larger is treated
// as malformed input rather than buffered indefinitely.
const maxLineBytes = 1 << 20

// Request is one NDJSON request line.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Response is one NDJSON response line.
type Response struct {
	ID     string               `json:"id"`
	Result result.CommandResult `json:"result"`
}

type callParams struct {
	Cmd  string         `json:"cmd"`
	Args map[string]any `json:"args"`
}

type probeParams struct {
	Target string `json:"target"`
}

// Server serves registry commands over a unix socket.
type Server struct {
	path string
	reg  *engine.Registry
	ec   *engine.Context
	log  *slog.Logger
}

// NewServer returns a server that will listen on the given socket path.
func NewServer(path string, reg *engine.Registry, ec *engine.Context, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{path: path, reg: reg, ec: ec, log: log}
}

// ListenAndServe binds the socket and serves connections until ctx is
// cancelled. A stale socket file from a previous run is removed before
// binding. The socket file is removed again on shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	s.log.Info("daemon listening", "socket", s.path)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.Warn("accept failed", "error", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(ctx, conn)
		}()
	}

	wg.Wait()
	s.log.Info("daemon stopped", "socket", s.path)
	return nil
}

// serveConn handles one connection. Requests are read and answered one
// at a time, which preserves response order per connection.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	// Unblock the read on shutdown; released when the connection ends
	// so completed connections hold no resources for the daemon's
	// lifetime.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	enc := json.NewEncoder(conn)
	r := bufio.NewReaderSize(conn, 4096)

	for {
		line, tooLong, err := readLine(r)
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				s.log.Warn("read request failed", "error", err)
			}
			return
		}

		var resp Response
		switch {
		case tooLong:
			resp = Response{
				ID:     "unknown",
				Result: s.errorResult("daemon", "", result.CodeInvalidInput, fmt.Sprintf("request line exceeds %d bytes", maxLineBytes)),
			}
		case len(bytes.TrimSpace(line)) == 0:
			continue
		default:
			resp = s.handleLine(ctx, line)
		}
		if err := enc.Encode(resp); err != nil {
			s.log.Warn("write response failed", "error", err)
			return
		}
	}
}

// readLine returns the next newline-terminated request line. A line
// exceeding maxLineBytes is drained to its newline and reported as
// tooLong so the caller can answer it instead of dropping the
// connection. A final unterminated line before EOF is returned as-is.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	var buf []byte
	for {
		frag, err := r.ReadSlice('\n')
		switch {
		case err == nil:
			if buf == nil {
				return frag, false, nil
			}
			return append(buf, frag...), false, nil
		case err == bufio.ErrBufferFull:
			buf = append(buf, frag...)
			if len(buf) > maxLineBytes {
				if derr := drainLine(r); derr != nil {
					return nil, false, derr
				}
				return nil, true, nil
			}
		case err == io.EOF:
			buf = append(buf, frag...)
			if len(bytes.TrimSpace(buf)) == 0 {
				return nil, false, io.EOF
			}
			return buf, false, nil
		default:
			return nil, false, err
		}
	}
}

// drainLine discards input up to and including the next newline.
func drainLine(r *bufio.Reader) error {
	for {
		_, err := r.ReadSlice('\n')
		if err == nil {
			return nil
		}
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}

// handleLine parses and dispatches a single request line. A line that
// cannot be parsed at all is answered with id "unknown" so the client
// still gets a well-formed error envelope.
func (s *Server) handleLine(ctx context.Context, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Response{
			ID:     "unknown",
			Result: s.errorResult("daemon", "", result.CodeInvalidInput, fmt.Sprintf("malformed request: %v", err)),
		}
	}
	if req.ID == "" {
		req.ID = "unknown"
	}
	return Response{ID: req.ID, Result: s.dispatch(ctx, req)}
}

func (s *Server) dispatch(ctx context.Context, req Request) result.CommandResult {
	switch req.Method {
	case "call":
		var p callParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return s.errorResult("call", "", result.CodeInvalidInput, err.Error())
		}
		if p.Cmd == "" {
			return s.errorResult("call", "", result.CodeInvalidInput, "missing required parameter: cmd")
		}
		return s.reg.Execute(ctx, p.Cmd, p.Args, s.ec)
	case "probe":
		var p probeParams
		if err := unmarshalParams(req.Params, &p); err != nil {
			return s.errorResult("probe", "", result.CodeInvalidInput, err.Error())
		}
		if p.Target == "" {
			return s.errorResult("probe", "", result.CodeInvalidInput, "missing required parameter: target")
		}
		return engine.RunProbe(ctx, p.Target, s.ec)
	case "doctor":
		return engine.RunDoctor(s.ec)
	default:
		return s.errorResult("daemon", req.Method, result.CodeInvalidInput,
			fmt.Sprintf("unknown method: %q", req.Method))
	}
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("malformed params: %v", err)
	}
	return nil
}

func (s *Server) errorResult(command, target string, code result.ErrorCode, msg string) result.CommandResult {
	b := result.NewBuilder(s.ec.NewRunID(), command, s.ec.Env())
	return b.Error(target, code, msg)
}
