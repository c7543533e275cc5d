package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"phpsniff/internal/config"
	"phpsniff/internal/driver"
)

// settings is the merged view of phpsniff.toml and the command line.
type settings struct {
	manifest *config.Manifest
	check    driver.CheckOptions
	useCache bool
	color    bool
	quiet    bool
	timings  bool
}

// loadSettings reads the config named by --config, or the nearest
// phpsniff.toml, and applies the persistent flag overrides.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	var manifest *config.Manifest
	if configPath != "" {
		manifest, err = config.Load(configPath)
	} else {
		manifest, _, err = config.Discover(".")
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	s := &settings{
		manifest: manifest,
		check:    manifest.Config.CheckOptions(manifest.Root),
		useCache: manifest.Config.Check.Cache,
	}

	if flags.Changed("max-diagnostics") {
		if s.check.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, err
		}
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, err
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, err
	}
	s.check.Timings = s.timings

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, err
	}
	if s.color, err = resolveColor(colorFlag, os.Stdout); err != nil {
		return nil, err
	}
	return s, nil
}

func resolveColor(value string, out *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return isTerminal(out) && os.Getenv("NO_COLOR") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// openCache opens the result cache when enabled by config or flag.
func (s *settings) openCache(enabled bool) error {
	if !enabled {
		return nil
	}
	cache, err := driver.OpenDiskCache("phpsniff")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	s.check.Cache = cache
	return nil
}

// targets defaults to the config root, or the working directory.
func (s *settings) targets(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if s.manifest != nil && s.manifest.Path != "" {
		return []string{s.manifest.Root}
	}
	return []string{"."}
}
