// Package scenario loads and runs scripted effect lifecycles.
//
// A scenario declares components, each binding one coroutine made of
// scripted steps, and a script of host actions that drives them through a
// real owner and frame scheduler. The run produces a trace of lifecycle
// events and resource releases that can be printed or compared against a
// golden file.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
)

// Scenario is one scripted run.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// RunID fixes the run id for deterministic output. If empty, a UUIDv7
	// is generated.
	RunID string `yaml:"run_id,omitempty"`

	// Headless runs without a display: the frame clock never advances and
	// debouncing is effectively off.
	Headless bool `yaml:"headless,omitempty"`

	// Strict overrides the configured strict mode of the owner.
	Strict *bool `yaml:"strict,omitempty"`

	// Components declares the components the script refers to by name.
	Components []ComponentSpec `yaml:"components"`

	// Script is the sequence of host actions.
	Script []Action `yaml:"script"`

	// Expect, if present, is checked against the result.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ComponentSpec declares a component with one coroutine binding.
type ComponentSpec struct {
	Name           string `yaml:"name"`
	Moment         string `yaml:"moment,omitempty"`
	Debounce       *bool  `yaml:"debounce,omitempty"`
	UseDigestProps *bool  `yaml:"use_digest_props,omitempty"`

	// Always restarts the coroutine on every render. Otherwise Deps is the
	// initial dependency list.
	Always bool  `yaml:"always,omitempty"`
	Deps   []any `yaml:"deps,omitempty"`

	Steps []StepSpec `yaml:"steps"`
}

// StepSpec is one coroutine step. Exactly one field must be set.
type StepSpec struct {
	// Yield acquires the named resources.
	Yield []string `yaml:"yield,omitempty"`
	// Async acquires the named resources from an asynchronous step.
	Async []string `yaml:"async,omitempty"`
	// Pass yields nothing.
	Pass bool `yaml:"pass,omitempty"`
	// Fail ends the coroutine with an error carrying this message.
	Fail string `yaml:"fail,omitempty"`
	// Panic panics inside the coroutine with this value.
	Panic string `yaml:"panic,omitempty"`
}

// Action is one host action. Exactly one of Mount, Unmount, Remount,
// Render, Flush, Frame and Settle must be set; Deps only accompanies Render.
type Action struct {
	Mount   string `yaml:"mount,omitempty"`
	Unmount string `yaml:"unmount,omitempty"`
	// Remount cleans up and sets up the component's effects again within
	// the current frame, as strict mode does after a first commit.
	Remount string `yaml:"remount,omitempty"`
	Render  string `yaml:"render,omitempty"`
	Deps    []any  `yaml:"deps,omitempty"`
	Flush   bool   `yaml:"flush,omitempty"`
	Frame   int    `yaml:"frame,omitempty"`
	Settle  bool   `yaml:"settle,omitempty"`
}

// Expect lists the outcomes a scenario asserts.
type Expect struct {
	// Released is the exact order of resource releases, as
	// "component/resource" labels.
	Released []string `yaml:"released,omitempty"`
	// Live is the set of resources still held at the end, in acquisition
	// order. An empty list is not checked; use LiveNone for that.
	Live []string `yaml:"live,omitempty"`
	// LiveNone asserts that nothing is held at the end.
	LiveNone bool `yaml:"live_none,omitempty"`
	// Fatal asserts that the run aborts with an invalid-state error.
	Fatal bool `yaml:"fatal,omitempty"`
}

// Load reads and parses a scenario YAML file. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks that required fields are present and that every action
// refers to a declared component.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Components) == 0 {
		return fmt.Errorf("components list is required and must be non-empty")
	}
	if len(s.Script) == 0 {
		return fmt.Errorf("script is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Components))
	for i, c := range s.Components {
		if c.Name == "" {
			return fmt.Errorf("components[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("components[%d]: duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
		if c.Always && len(c.Deps) > 0 {
			return fmt.Errorf("component %q: always and deps are mutually exclusive", c.Name)
		}
		for j, st := range c.Steps {
			if n := st.kinds(); n != 1 {
				return fmt.Errorf("component %q: steps[%d] must set exactly one of yield, async, pass, fail, panic (got %d)", c.Name, j, n)
			}
		}
	}

	for i, a := range s.Script {
		if n := a.kinds(); n != 1 {
			return fmt.Errorf("script[%d]: must set exactly one action (got %d)", i, n)
		}
		if a.Deps != nil && a.Render == "" {
			return fmt.Errorf("script[%d]: deps is only valid with render", i)
		}
		if a.Frame < 0 {
			return fmt.Errorf("script[%d]: frame count must be positive", i)
		}
		if name := a.target(); name != "" && !names[name] {
			return fmt.Errorf("script[%d]: %w", i, lcerrors.Unknown("scenario.Validate", "component", name))
		}
	}
	return nil
}

func (st StepSpec) kinds() int {
	n := 0
	for _, set := range []bool{st.Yield != nil, st.Async != nil, st.Pass, st.Fail != "", st.Panic != ""} {
		if set {
			n++
		}
	}
	return n
}

func (a Action) kinds() int {
	n := 0
	for _, set := range []bool{a.Mount != "", a.Unmount != "", a.Remount != "", a.Render != "", a.Flush, a.Frame > 0, a.Settle} {
		if set {
			n++
		}
	}
	return n
}

// target returns the component an action refers to, if any.
func (a Action) target() string {
	switch {
	case a.Mount != "":
		return a.Mount
	case a.Unmount != "":
		return a.Unmount
	case a.Remount != "":
		return a.Remount
	default:
		return a.Render
	}
}
