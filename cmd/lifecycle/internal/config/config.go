// Package config loads the optional lifecycle.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/effect"
	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

// FileName is the configuration file looked up in the project root.
const FileName = "lifecycle.yaml"

// Config represents the optional lifecycle.yaml configuration.
type Config struct {
	Effects EffectsConfig `yaml:"effects"`
	Display DisplayConfig `yaml:"display"`
}

// EffectsConfig holds the default controller options for scenario effects.
type EffectsConfig struct {
	Moment         string `yaml:"moment,omitempty"`
	UseDigestProps *bool  `yaml:"use_digest_props,omitempty"`
	Debounce       *bool  `yaml:"debounce,omitempty"`
}

// DisplayConfig describes the simulated display.
type DisplayConfig struct {
	RefreshHz int   `yaml:"refresh_hz,omitempty"`
	Strict    *bool `yaml:"strict,omitempty"`
	Headless  bool  `yaml:"headless,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root        string
	ModulePath  string
	ProjectName string
	Effects     effect.Options
	RefreshHz   int
	Strict      bool
	Headless    bool
}

// LoadOptional reads lifecycle.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// Resolve loads lifecycle.yaml from dir (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve fills in defaults for every unset field. dir is the project root;
// its go.mod, if any, names the project.
func (c *Config) Resolve(dir string) (*Resolved, error) {
	r := &Resolved{
		Root:        dir,
		ProjectName: "lifecycle",
		Effects:     effect.DefaultOptions(),
		RefreshHz:   frame.DefaultRefreshRate,
		Headless:    c.Display.Headless,
	}

	if dir != "" {
		modulePath, err := modulePath(dir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if modulePath != "" {
			r.ModulePath = modulePath
			r.ProjectName = projectName(modulePath)
		}
	}

	moment, err := core.ParseMoment(strings.TrimSpace(c.Effects.Moment))
	if err != nil {
		return nil, configError("effects.moment", err)
	}
	r.Effects.Moment = moment
	if c.Effects.UseDigestProps != nil {
		r.Effects.UseDigestProps = *c.Effects.UseDigestProps
	}
	if c.Effects.Debounce != nil {
		r.Effects.Debounce = *c.Effects.Debounce
	}

	if c.Display.RefreshHz < 0 {
		return nil, configError("display.refresh_hz", fmt.Errorf("must be positive, got %d", c.Display.RefreshHz))
	}
	if c.Display.RefreshHz > 0 {
		r.RefreshHz = c.Display.RefreshHz
	}
	if c.Display.Strict != nil {
		r.Strict = *c.Display.Strict
	}
	return r, nil
}

// FindProjectRoot walks up from the current directory to find go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Go module (no go.mod found)")
		}
		dir = parent
	}
}

func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	if err := module.CheckImportPath(path); err != nil {
		return "", fmt.Errorf("invalid module path in go.mod: %w", err)
	}
	return path, nil
}

// projectName is the last element of the module path, without any major
// version suffix.
func projectName(modulePath string) string {
	prefix, _, ok := module.SplitPathVersion(modulePath)
	if !ok {
		prefix = modulePath
	}
	parts := strings.Split(prefix, "/")
	return parts[len(parts)-1]
}

func configError(field string, err error) error {
	return &lcerrors.LifecycleError{
		Op:   "config." + field,
		Kind: lcerrors.KindConfig,
		Err:  err,
	}
}
