// Package engine hosts the execution context, the command registry,
// the capability probes, and the doctor diagnostics. It is the same
// backend a desktop shell would embed, exercised here without one.
package engine

import (
	"github.com/probekit/appctl/internal/capability"
	"github.com/probekit/appctl/internal/config"
	"github.com/probekit/appctl/internal/platform"
	"github.com/probekit/appctl/internal/result"
)

// Context bundles the chosen capability providers and process-wide
// configuration. Constructed once per run (or once per daemon lifetime)
// and passed explicitly to every operation; there is no global fallback.
//
// Read-only after construction. The providers themselves are safe for
// concurrent use, so one Context may serve all daemon connections.
type Context struct {
	fs        capability.Filesystem
	network   capability.Network
	clipboard capability.Clipboard
	cfg       config.Config
	env       result.EnvSummary
	runIDs    result.RunIDGenerator
}

// Option adjusts a fully-constructed Context. Options exist so tests
// can swap a provider with a failure-injecting fake; production code
// uses the bare factories.
type Option func(*Context)

// WithFilesystem replaces the filesystem provider.
func WithFilesystem(fs capability.Filesystem) Option {
	return func(c *Context) { c.fs = fs }
}

// WithNetwork replaces the network provider.
func WithNetwork(n capability.Network) Option {
	return func(c *Context) { c.network = n }
}

// WithClipboard replaces the clipboard provider.
func WithClipboard(cb capability.Clipboard) Option {
	return func(c *Context) { c.clipboard = cb }
}

// WithRunIDs replaces the run-ID generator, for deterministic tests.
func WithRunIDs(g result.RunIDGenerator) Option {
	return func(c *Context) { c.runIDs = g }
}

// NewPlatformContext wires the real providers, choosing the clipboard
// implementation based on headless detection.
func NewPlatformContext(cfg config.Config, opts ...Option) *Context {
	env := platform.Summary()

	var clipboard capability.Clipboard = capability.SystemClipboard{}
	if env.Headless {
		clipboard = capability.HeadlessClipboard{}
	}

	c := &Context{
		fs:        capability.OSFilesystem{},
		network:   capability.NewHTTPNetwork(cfg.NetworkTimeout),
		clipboard: clipboard,
		cfg:       cfg,
		env:       env,
		runIDs:    result.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHeadlessContext wires the stub providers for capabilities that
// need a display, regardless of what the environment reports. Intended
// for CI and tests.
func NewHeadlessContext(cfg config.Config, opts ...Option) *Context {
	env := platform.Summary()
	env.Headless = true

	c := &Context{
		fs:        capability.OSFilesystem{},
		network:   capability.NewHTTPNetwork(cfg.NetworkTimeout),
		clipboard: capability.HeadlessClipboard{},
		cfg:       cfg,
		env:       env,
		runIDs:    result.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FS returns the filesystem provider.
func (c *Context) FS() capability.Filesystem { return c.fs }

// Network returns the network provider.
func (c *Context) Network() capability.Network { return c.network }

// Clipboard returns the clipboard provider.
func (c *Context) Clipboard() capability.Clipboard { return c.clipboard }

// Config returns the static configuration.
func (c *Context) Config() config.Config { return c.cfg }

// Env returns the environment summary snapshot.
func (c *Context) Env() result.EnvSummary { return c.env }

// NewRunID mints the run identifier for one invocation.
func (c *Context) NewRunID() string { return c.runIDs.Generate() }
