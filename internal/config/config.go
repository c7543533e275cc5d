// Package config loads phpsniff.toml, the per-project settings file found
// by walking up from the working directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"phpsniff/internal/diag"
	"phpsniff/internal/driver"
	"phpsniff/internal/lint"
	"phpsniff/internal/sniff/finalclass"
	"phpsniff/internal/token"
)

// FileName is the name looked up in the working directory and its parents.
const FileName = "phpsniff.toml"

// Manifest is a loaded config file and the directory it governs.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Check  CheckConfig  `toml:"check"`
	Sniffs SniffsConfig `toml:"sniffs"`
}

type CheckConfig struct {
	Extensions     []string `toml:"extensions"`
	Exclude        []string `toml:"exclude"`
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Cache          bool     `toml:"cache"`
}

type SniffsConfig struct {
	FinalClasses FinalClassesConfig `toml:"final_classes"`
}

type FinalClassesConfig struct {
	// Enabled defaults to true when the key is absent.
	Enabled   *bool    `toml:"enabled"`
	Severity  string   `toml:"severity"`
	Scope     string   `toml:"scope"`
	Modifiers []string `toml:"modifiers"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Check: CheckConfig{
			Extensions:     append([]string(nil), driver.DefaultExtensions...),
			MaxDiagnostics: 1000,
		},
	}
}

// Find returns the path of the nearest phpsniff.toml at or above startDir.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest config file. When none exists the
// manifest carries Default() rooted at startDir and ok is false.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			root = startDir
		}
		return &Manifest{Root: root, Config: Default()}, false, nil
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load reads and validates the config file at path. Keys it does not know
// are errors, so typos do not silently fall back to defaults.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Validate checks value ranges and names without building anything.
func (c Config) Validate() error {
	if c.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must be >= 0, got %d", c.Check.Jobs)
	}
	if c.Check.MaxDiagnostics < 0 {
		return fmt.Errorf("[check].max_diagnostics must be >= 0, got %d", c.Check.MaxDiagnostics)
	}
	for _, pattern := range c.Check.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("[check].exclude: invalid pattern %q: %w", pattern, err)
		}
	}
	_, err := c.Sniffs.FinalClasses.options()
	return err
}

// IsEnabled reports whether the final-classes rule runs.
func (f FinalClassesConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

// finalClassSetup is the validated form of FinalClassesConfig.
type finalClassSetup struct {
	opts finalclass.Options
	// severity applies only when hasSeverity is set.
	severity    diag.Severity
	hasSeverity bool
}

func (f FinalClassesConfig) options() (finalClassSetup, error) {
	scope, err := finalclass.ParseScope(f.Scope)
	if err != nil {
		return finalClassSetup{}, fmt.Errorf("[sniffs.final_classes].scope: %w", err)
	}
	setup := finalClassSetup{opts: finalclass.Options{Scope: scope}}
	if sevName := strings.TrimSpace(f.Severity); sevName != "" {
		if setup.severity, err = diag.ParseSeverity(sevName); err != nil {
			return finalClassSetup{}, fmt.Errorf("[sniffs.final_classes].severity: %w", err)
		}
		setup.hasSeverity = true
	}
	for _, name := range f.Modifiers {
		k, ok := token.KindByName(strings.TrimSpace(name))
		if !ok {
			return finalClassSetup{}, fmt.Errorf("[sniffs.final_classes].modifiers: unknown token %q", name)
		}
		setup.opts.Modifiers = append(setup.opts.Modifiers, k)
	}
	return setup, nil
}

// Ruleset builds a ruleset for the config. Every call returns fresh sniff
// instances, so it can serve as a driver.RulesetFactory.
func (c Config) Ruleset() (*lint.Ruleset, error) {
	rs := lint.NewRuleset()
	fc := c.Sniffs.FinalClasses
	if !fc.IsEnabled() {
		return rs, nil
	}
	setup, err := fc.options()
	if err != nil {
		return nil, err
	}
	s := finalclass.New(setup.opts)
	rs.Register(s)
	if setup.hasSeverity {
		rs.SetSeverity(s.Source(), setup.severity)
	}
	rs.Describe("final_classes.scope=" + s.Scope().String())
	for _, k := range s.Qualifying() {
		rs.Describe("final_classes.modifier=" + k.String())
	}
	return rs, nil
}

// CheckOptions maps the [check] table onto driver options. The ruleset
// factory comes from the [sniffs] tables.
func (c Config) CheckOptions(baseDir string) driver.CheckOptions {
	return driver.CheckOptions{
		MaxDiagnostics: c.Check.MaxDiagnostics,
		Jobs:           c.Check.Jobs,
		Discover: driver.DiscoverOptions{
			Extensions: c.Check.Extensions,
			Exclude:    c.Check.Exclude,
		},
		NewRuleset: c.Ruleset,
		BaseDir:    baseDir,
	}
}
