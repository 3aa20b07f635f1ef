// Package scenario loads declarative step lists and drives the command
// registry and probes in sequence, fail-fast.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/probekit/appctl/internal/result"
)

// Scenario is a named, ordered list of call/probe steps with expected
// statuses.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is the closed two-variant union: exactly one of Call or Probe is
// set. The distinction is fixed, not an open hierarchy.
type Step struct {
	// Call names a registry command to dispatch.
	Call string `yaml:"call,omitempty"`

	// Probe names a capability probe to run.
	Probe string `yaml:"probe,omitempty"`

	// Args is the argument payload for call steps.
	Args map[string]any `yaml:"args,omitempty"`

	// ExpectStatus is the status the step must produce. Empty means
	// "pass".
	ExpectStatus result.Status `yaml:"expect_status,omitempty"`

	// TimeoutMS bounds a call step. Zero means the configured default.
	TimeoutMS int64 `yaml:"timeout_ms,omitempty"`
}

// Target returns the command or probe name the step dispatches to.
func (s Step) Target() string {
	if s.Call != "" {
		return s.Call
	}
	return s.Probe
}

// Expected returns the step's expectation with the pass default applied.
func (s Step) Expected() result.Status {
	if s.ExpectStatus == "" {
		return result.StatusPass
	}
	return s.ExpectStatus
}

// Load parses a scenario document. Unknown fields are rejected so typos
// like "expect_staus" surface as parse errors instead of silently
// defaulting.
func Load(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := validate(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// LoadFile reads and parses a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Load(data)
}

func validate(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range sc.Steps {
		if step.Call == "" && step.Probe == "" {
			return fmt.Errorf("steps[%d]: exactly one of call or probe is required", i)
		}
		if step.Call != "" && step.Probe != "" {
			return fmt.Errorf("steps[%d]: call and probe are mutually exclusive", i)
		}
		if step.Probe != "" && step.Args != nil {
			return fmt.Errorf("steps[%d]: args is only valid on call steps", i)
		}
		if step.ExpectStatus != "" && !step.ExpectStatus.IsValid() {
			return fmt.Errorf("steps[%d]: invalid expect_status %q (one of pass, fail, skip, error)",
				i, step.ExpectStatus)
		}
		if step.TimeoutMS < 0 {
			return fmt.Errorf("steps[%d]: timeout_ms must be non-negative", i)
		}
	}
	return nil
}
