// Package config loads process-wide configuration from APPCTL_*
// environment variables. Loaded once per process and carried read-only
// by the execution context.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the static configuration for one harness process.
type Config struct {
	// ProbeURL is the HTTPS endpoint the network probe targets.
	ProbeURL string `env:"APPCTL_PROBE_URL" envDefault:"https://httpbin.org/get"`

	// NetworkTimeout bounds each network capability call (DNS lookup,
	// HTTPS round trip). An unbounded call is a design defect.
	NetworkTimeout time.Duration `env:"APPCTL_NETWORK_TIMEOUT" envDefault:"10s"`

	// StepTimeout is the default per-step budget for scenario call
	// steps without an explicit timeout_ms.
	StepTimeout time.Duration `env:"APPCTL_STEP_TIMEOUT" envDefault:"30s"`

	// HistoryDB is the path of the SQLite run-history index. Empty
	// disables history recording, keeping single-shot runs free of
	// side effects.
	HistoryDB string `env:"APPCTL_HISTORY_DB"`
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration with every field at its default,
// ignoring the environment. Used by tests for hermetic contexts.
func Default() Config {
	return Config{
		ProbeURL:       "https://httpbin.org/get",
		NetworkTimeout: 10 * time.Second,
		StepTimeout:    30 * time.Second,
	}
}

func (c Config) validate() error {
	if c.ProbeURL == "" {
		return fmt.Errorf("APPCTL_PROBE_URL must not be empty")
	}
	if c.NetworkTimeout <= 0 {
		return fmt.Errorf("APPCTL_NETWORK_TIMEOUT must be positive, got %s", c.NetworkTimeout)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("APPCTL_STEP_TIMEOUT must be positive, got %s", c.StepTimeout)
	}
	return nil
}
